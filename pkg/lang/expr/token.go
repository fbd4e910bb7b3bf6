// Package expr implements the lexer, parser, AST, and evaluator for
// AgeRun's expression language (section 3.3, 4.2).
package expr

// Kind identifies a lexical token category.
type Kind int

const (
	EOF Kind = iota
	Ident
	Int
	Float
	Str
	Dot
	LParen
	RParen
	Comma
	Assign // ":="
	Plus
	Minus
	Star
	Slash
	Eq   // "="
	Neq  // "<>"
	Lt
	Lte
	Gt
	Gte
)

// Token is one lexical unit with its source position (rune index).
type Token struct {
	Kind Kind
	Text string
	Pos  int
}
