package expr

import "github.com/quenio/agerun/pkg/frame"

// Op identifies a binary operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

// AST is the common interface for every expression node.
type AST interface {
	isExprAST()
}

// LiteralInt is an integer literal.
type LiteralInt struct{ Value int64 }

// LiteralDouble is a floating-point literal.
type LiteralDouble struct{ Value float64 }

// LiteralString is a string literal.
type LiteralString struct{ Value string }

// MemoryAccess reads a path under one of the reserved roots.
type MemoryAccess struct {
	Root frame.Root
	Path []string
}

// BinaryOp applies op to two sub-expressions.
type BinaryOp struct {
	Op    Op
	Left  AST
	Right AST
}

func (LiteralInt) isExprAST()    {}
func (LiteralDouble) isExprAST() {}
func (LiteralString) isExprAST() {}
func (MemoryAccess) isExprAST()  {}
func (BinaryOp) isExprAST()      {}
