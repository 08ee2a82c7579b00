package expr

import (
	"strings"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// Postfix is an expression in reverse Polish order. Its order is the program
// executed by Evaluate.
type Postfix []string

// String renders the postfix sequence as space-separated tokens.
func (p Postfix) String() string {
	return strings.Join(p, " ")
}

// Convert reorders infix tokens into postfix using the shunting-yard
// algorithm. On failure the returned Postfix is nil.
func Convert(tokens []string) (Postfix, error) {
	var stack []Token // operators and "(" only
	output := make(Postfix, 0, len(tokens))

	for _, raw := range tokens {
		tok := Classify(raw)
		switch tok.Type {
		case TokenInt:
			output = append(output, tok.Value)

		case TokenOperator:
			op := operators[tok.Value]
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Type != TokenOperator || !op.yields(operators[top.Value]) {
					break
				}
				output = append(output, top.Value)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)

		case TokenLParen:
			stack = append(stack, tok)

		case TokenRParen:
			found := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Type == TokenLParen {
					found = true
					break
				}
				output = append(output, top.Value)
			}
			if !found {
				return nil, types.NewMismatchedParentheses()
			}

		default:
			return nil, types.NewInvalidToken(raw)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == TokenLParen || top.Type == TokenRParen {
			return nil, types.NewMismatchedParentheses()
		}
		output = append(output, top.Value)
	}

	return output, nil
}

// ConvertString tokenizes input and converts it.
func ConvertString(input string) (Postfix, error) {
	return Convert(Tokenize(input))
}
