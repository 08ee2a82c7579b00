// Package expr converts whitespace-separated infix arithmetic expressions to
// postfix notation and evaluates postfix sequences with a stack machine.
package expr

// TokenType represents the classification of a raw token.
type TokenType int

const (
	TokenInvalid  TokenType = iota // anything unrecognised
	TokenInt                       // integer literal, optionally signed
	TokenOperator                  // + - * /
	TokenLParen                    // (
	TokenRParen                    // )
)

// Token is a raw token together with its classification.
type Token struct {
	Type   TokenType
	Value  string // raw string value
	IntVal int64  // parsed int (for TokenInt)
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenInt:
		return "INT"
	case TokenOperator:
		return "OPERATOR"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	default:
		return "INVALID"
	}
}

// Associativity is the grouping direction of operators of equal precedence.
type Associativity int

const (
	AssocLeft Associativity = iota
	AssocRight
)

// Operator describes the parsing rules for a binary operator.
type Operator struct {
	Symbol     string
	Precedence int
	Assoc      Associativity
}

// operators is read-only after package initialisation.
var operators = map[string]Operator{
	"+": {Symbol: "+", Precedence: 1, Assoc: AssocLeft},
	"-": {Symbol: "-", Precedence: 1, Assoc: AssocLeft},
	"*": {Symbol: "*", Precedence: 2, Assoc: AssocLeft},
	"/": {Symbol: "/", Precedence: 2, Assoc: AssocLeft},
}

// LookupOperator returns the operator metadata for symbol.
func LookupOperator(symbol string) (Operator, bool) {
	op, ok := operators[symbol]
	return op, ok
}

// yields reports whether a stacked operator top must be emitted before op is
// pushed.
func (op Operator) yields(top Operator) bool {
	if op.Assoc == AssocLeft {
		return op.Precedence <= top.Precedence
	}
	return op.Precedence < top.Precedence
}
