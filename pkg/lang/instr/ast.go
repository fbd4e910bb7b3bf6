// Package instr implements the instruction language: assignment and
// the seven function-call instructions (send, if, parse, build,
// compile, spawn, destroy), built on pkg/lang/expr for argument
// expressions (section 3.4, 4.3, 4.4, 6.1).
package instr

import "github.com/quenio/agerun/pkg/lang/expr"

// FuncKind identifies which function-call instruction this is.
type FuncKind string

const (
	Send    FuncKind = "send"
	If      FuncKind = "if"
	Parse   FuncKind = "parse"
	Build   FuncKind = "build"
	Compile FuncKind = "compile"
	Spawn   FuncKind = "spawn"
	Destroy FuncKind = "destroy"
)

// ArgCounts lists the valid argument counts per function kind
// (section 3.4): send/parse/build take 2; if/compile/spawn take 3;
// destroy takes 1 or 2.
var ArgCounts = map[FuncKind][]int{
	Send:    {2},
	If:      {3},
	Parse:   {2},
	Build:   {2},
	Compile: {3},
	Spawn:   {3},
	Destroy: {1, 2},
}

// AST is the common interface for every instruction node.
type AST interface {
	isInstrAST()
}

// Assignment stores expr's value at TargetPath, which is always a
// path under memory (the leading "memory." is not included here).
type Assignment struct {
	TargetPath string
	Expr       expr.AST
}

// FunctionCall invokes one of the seven built-in functions. ResultPath
// is the memory path (without "memory." prefix) the result is stored
// at, or "" if the call's result is discarded.
type FunctionCall struct {
	Kind       FuncKind
	Args       []expr.AST
	ResultPath string
}

func (Assignment) isInstrAST()   {}
func (FunctionCall) isInstrAST() {}
