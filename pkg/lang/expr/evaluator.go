package expr

import (
	"errors"

	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/frame"
)

// ErrTypeMismatch is returned for an operator applied to incompatible
// operand types (the EvalTypeError kind of section 7).
var ErrTypeMismatch = errors.New("expr: type mismatch")

// ErrDivisionByZero is returned for either a '/' with a zero Integer
// divisor or a zero Double divisor — see section 4.2 and the decided
// Open Question in DESIGN.md.
var ErrDivisionByZero = errors.New("expr: division by zero")

// Eval walks node against frame f and returns either a borrowed alias
// of memory/context/message (for MemoryAccess nodes) or a freshly
// constructed, unowned Data value (literals and computed results).
// The caller is responsible for calling data.ClaimOrCopy to settle
// ownership before storing or discarding the result.
func Eval(node AST, f *frame.Frame) (data.Value, error) {
	switch n := node.(type) {
	case LiteralInt:
		return data.NewInteger(n.Value), nil
	case LiteralDouble:
		return data.NewDouble(n.Value), nil
	case LiteralString:
		return data.NewString(n.Value), nil
	case MemoryAccess:
		return f.Resolve(n.Root, n.Path), nil
	case BinaryOp:
		return evalBinary(n, f)
	default:
		return nil, ErrTypeMismatch
	}
}

func evalBinary(n BinaryOp, f *frame.Frame) (data.Value, error) {
	left, err := Eval(n.Left, f)
	if err != nil {
		return nil, err
	}
	right, err := Eval(n.Right, f)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return evalComparison(n.Op, left, right), nil
	default:
		return evalArithmetic(n.Op, left, right)
	}
}

func asNumeric(v data.Value) (float64, bool, bool) {
	switch v.(type) {
	case *data.IntegerValue:
		return float64(data.GetInteger(v)), false, true
	case *data.DoubleValue:
		return data.GetDouble(v), true, true
	default:
		return 0, false, false
	}
}

func evalArithmetic(op Op, left, right data.Value) (data.Value, error) {
	lf, lIsDouble, lOK := asNumeric(left)
	rf, rIsDouble, rOK := asNumeric(right)
	if !lOK || !rOK {
		return nil, ErrTypeMismatch
	}

	isDouble := lIsDouble || rIsDouble

	if op == OpDiv && rf == 0 {
		return nil, ErrDivisionByZero
	}

	var result float64
	switch op {
	case OpAdd:
		result = lf + rf
	case OpSub:
		result = lf - rf
	case OpMul:
		result = lf * rf
	case OpDiv:
		result = lf / rf
	default:
		return nil, ErrTypeMismatch
	}

	if isDouble {
		return data.NewDouble(result), nil
	}
	return data.NewInteger(int64(result)), nil
}

func evalComparison(op Op, left, right data.Value) data.Value {
	var result bool

	lf, _, lNumeric := asNumeric(left)
	rf, _, rNumeric := asNumeric(right)

	switch {
	case lNumeric && rNumeric:
		result = compareFloats(op, lf, rf)
	case left != nil && right != nil && left.Type() == data.String && right.Type() == data.String:
		result = compareStrings(op, data.GetString(left), data.GetString(right))
	default:
		// Mismatched primitive types: every comparison, including <>,
		// yields false (section 4.2).
		result = false
	}

	if result {
		return data.NewInteger(1)
	}
	return data.NewInteger(0)
}

func compareFloats(op Op, l, r float64) bool {
	switch op {
	case OpEq:
		return l == r
	case OpNeq:
		return l != r
	case OpLt:
		return l < r
	case OpLte:
		return l <= r
	case OpGt:
		return l > r
	case OpGte:
		return l >= r
	default:
		return false
	}
}

func compareStrings(op Op, l, r string) bool {
	switch op {
	case OpEq:
		return l == r
	case OpNeq:
		return l != r
	case OpLt:
		return l < r
	case OpLte:
		return l <= r
	case OpGt:
		return l > r
	case OpGte:
		return l >= r
	default:
		return false
	}
}
