// Package types holds the error taxonomy shared by the converter, the
// evaluator and every surface that reports their failures.
package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an expression failure.
type ErrorKind string

// Error kinds reported by conversion and evaluation.
const (
	KindMismatchedParentheses    ErrorKind = "MismatchedParentheses"
	KindInvalidToken             ErrorKind = "InvalidToken"
	KindInsufficientOperands     ErrorKind = "InsufficientOperands"
	KindDivisionByZero           ErrorKind = "DivisionByZero"
	KindInvalidPostfixExpression ErrorKind = "InvalidPostfixExpression"
)

// Kinds lists every known kind in declaration order.
var Kinds = []ErrorKind{
	KindMismatchedParentheses,
	KindInvalidToken,
	KindInsufficientOperands,
	KindDivisionByZero,
	KindInvalidPostfixExpression,
}

// ParseKind returns the kind named s.
func ParseKind(s string) (ErrorKind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ExpressionError is a failure scoped to a single expression.
type ExpressionError struct {
	Kind    ErrorKind
	Message string
	Token   string // offending token, if any
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	return e.Message
}

// ToMap converts the error to the JSON shape used by the HTTP API and the
// JSON-lines driver output.
func (e *ExpressionError) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"kind":    string(e.Kind),
		"message": e.Message,
	}
	if e.Token != "" {
		m["token"] = e.Token
	}
	return m
}

// AsExpressionError unwraps err to an *ExpressionError.
// Returns nil if err does not carry one.
func AsExpressionError(err error) *ExpressionError {
	var ee *ExpressionError
	if errors.As(err, &ee) {
		return ee
	}
	return nil
}

// IsKind reports whether err is an expression error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ee := AsExpressionError(err)
	return ee != nil && ee.Kind == kind
}

// Common error constructors.

// NewMismatchedParentheses creates a MismatchedParentheses error.
func NewMismatchedParentheses() *ExpressionError {
	return &ExpressionError{Kind: KindMismatchedParentheses, Message: "Mismatched parentheses"}
}

// NewInvalidToken creates an InvalidToken error raised during conversion.
func NewInvalidToken(token string) *ExpressionError {
	return &ExpressionError{
		Kind:    KindInvalidToken,
		Message: fmt.Sprintf("Invalid token: %s", token),
		Token:   token,
	}
}

// NewInvalidPostfixToken creates an InvalidToken error raised during evaluation.
func NewInvalidPostfixToken(token string) *ExpressionError {
	return &ExpressionError{
		Kind:    KindInvalidToken,
		Message: fmt.Sprintf("Invalid token in postfix: %s", token),
		Token:   token,
	}
}

// NewInsufficientOperands creates an InsufficientOperands error for op.
func NewInsufficientOperands(op string) *ExpressionError {
	return &ExpressionError{
		Kind:    KindInsufficientOperands,
		Message: fmt.Sprintf("Insufficient operands for operator: %s", op),
		Token:   op,
	}
}

// NewDivisionByZero creates a DivisionByZero error.
func NewDivisionByZero() *ExpressionError {
	return &ExpressionError{Kind: KindDivisionByZero, Message: "Division by zero", Token: "/"}
}

// NewInvalidPostfixExpression creates an InvalidPostfixExpression error.
func NewInvalidPostfixExpression() *ExpressionError {
	return &ExpressionError{Kind: KindInvalidPostfixExpression, Message: "Invalid postfix expression"}
}
