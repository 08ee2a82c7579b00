package expr

import (
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// Evaluate reduces a postfix sequence to a single integer.
func Evaluate(postfix []string) (int64, error) {
	var stack []int64

	for _, raw := range postfix {
		tok := Classify(raw)
		switch tok.Type {
		case TokenInt:
			stack = append(stack, tok.IntVal)

		case TokenOperator:
			if len(stack) < 2 {
				return 0, types.NewInsufficientOperands(tok.Value)
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			result, err := apply(tok.Value, a, b)
			if err != nil {
				return 0, err
			}
			stack = append(stack, result)

		default:
			return 0, types.NewInvalidPostfixToken(raw)
		}
	}

	if len(stack) != 1 {
		return 0, types.NewInvalidPostfixExpression()
	}
	return stack[0], nil
}

// EvaluateString evaluates a space-separated postfix string.
func EvaluateString(postfix string) (int64, error) {
	return Evaluate(Tokenize(postfix))
}

// apply computes a op b. Overflow wraps; division truncates toward zero.
func apply(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, types.NewDivisionByZero()
		}
		return a / b, nil
	}
	return 0, types.NewInvalidPostfixToken(op)
}

// Calculation is the outcome of running an infix expression end to end.
type Calculation struct {
	Expression string
	Postfix    Postfix
	Result     int64
}

// Calculate tokenizes, converts and evaluates expression. The evaluator
// consumes the rendered postfix string, the same interchange form the line
// driver prints. Conversion failures short-circuit evaluation, and no
// postfix is returned when either stage fails.
func Calculate(expression string) (*Calculation, error) {
	postfix, err := ConvertString(expression)
	if err != nil {
		return nil, err
	}
	result, err := EvaluateString(postfix.String())
	if err != nil {
		return nil, err
	}
	return &Calculation{Expression: expression, Postfix: postfix, Result: result}, nil
}
