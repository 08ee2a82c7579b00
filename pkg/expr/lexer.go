package expr

import (
	"strconv"
	"strings"
)

// Tokenize splits an expression on runs of ASCII whitespace. It performs no
// validation; tokens are classified as they are consumed. Unicode spaces
// such as U+00A0 stay inside the token they touch.
func Tokenize(input string) []string {
	return strings.FieldsFunc(input, IsSpace)
}

// IsSpace reports whether r separates tokens: space, \t, \n, \v, \f or \r.
func IsSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Classify determines the kind of a single raw token. Integer parsing is
// tried first, so "-5" is a literal while "-" is the subtraction operator.
func Classify(raw string) Token {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Token{Type: TokenInt, Value: raw, IntVal: i}
	}
	if _, ok := operators[raw]; ok {
		return Token{Type: TokenOperator, Value: raw}
	}
	switch raw {
	case "(":
		return Token{Type: TokenLParen, Value: raw}
	case ")":
		return Token{Type: TokenRParen, Value: raw}
	}
	return Token{Type: TokenInvalid, Value: raw}
}

// Trim removes leading and trailing separator runes from s.
func Trim(s string) string {
	return strings.TrimFunc(s, IsSpace)
}
