// Package data implements AgeRun's tagged value model: Integer, Double,
// String, List, and Map, each carrying an ownership token that enforces
// a single-owner (move-semantics) discipline across the runtime.
//
// Go's garbage collector removes any need to free these values, but the
// ownership *protocol* is still meaningful: it is how an assignment
// catches a double-insert, how a container refuses a value another
// container already holds, and how the evaluator tells a borrowed alias
// of frame memory apart from a freshly produced value. See ClaimOrCopy.
package data

// Type identifies which variant a Value holds.
type Type int

const (
	Integer Type = iota
	Double
	String
	List
	Map
)

func (t Type) String() string {
	switch t {
	case Integer:
		return "integer"
	case Double:
		return "double"
	case String:
		return "string"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// Owner identifies the current holder of a value. Any comparable value
// works; components conventionally pass a pointer to themselves (an
// *Agent, a *Frame, a container's own address).
type Owner any

// Value is the common interface satisfied by every tagged variant.
// Concrete types are always used as pointers (*IntegerValue, *MapValue,
// ...) so that ownership state, once taken, is visible to every holder
// of the interface value.
type Value interface {
	// Type reports which variant this value is.
	Type() Type

	// Owner returns the current owner, or nil if unowned.
	Owner() Owner

	// TakeOwnership succeeds if the value is unowned or already owned
	// by who; it fails (returns false) if another owner holds it.
	TakeOwnership(who Owner) bool

	// DropOwnership succeeds if who is the current owner, clearing
	// ownership; it fails if who does not hold the value.
	DropOwnership(who Owner) bool
}

// ownershipState is embedded in every concrete Value to implement the
// owner-token protocol described in section 3.1.
type ownershipState struct {
	owner Owner
}

func (o *ownershipState) Owner() Owner { return o.owner }

func (o *ownershipState) TakeOwnership(who Owner) bool {
	if o.owner == nil || o.owner == who {
		o.owner = who
		return true
	}
	return false
}

func (o *ownershipState) DropOwnership(who Owner) bool {
	if o.owner != nil && o.owner == who {
		o.owner = nil
		return true
	}
	return false
}

// IntegerValue holds a 64-bit integer.
type IntegerValue struct {
	ownershipState
	v int64
}

// NewInteger creates an unowned integer value.
func NewInteger(v int64) *IntegerValue { return &IntegerValue{v: v} }

func (i *IntegerValue) Type() Type { return Integer }
func (i *IntegerValue) Int() int64 { return i.v }

// DoubleValue holds a 64-bit float.
type DoubleValue struct {
	ownershipState
	v float64
}

// NewDouble creates an unowned double value.
func NewDouble(v float64) *DoubleValue { return &DoubleValue{v: v} }

func (d *DoubleValue) Type() Type      { return Double }
func (d *DoubleValue) Float() float64 { return d.v }

// StringValue holds a UTF-8 string.
type StringValue struct {
	ownershipState
	v string
}

// NewString creates an unowned string value.
func NewString(v string) *StringValue { return &StringValue{v: v} }

func (s *StringValue) Type() Type     { return String }
func (s *StringValue) String() string { return s.v }

// IsPrimitiveType reports whether v is Integer, Double, or String.
func IsPrimitiveType(v Value) bool {
	if v == nil {
		return false
	}
	switch v.Type() {
	case Integer, Double, String:
		return true
	default:
		return false
	}
}

// GetType returns v's type, or Integer if v is nil — matching the
// original's enum zero-value default for a NULL input.
func GetType(v Value) Type {
	if v == nil {
		return Integer
	}
	return v.Type()
}

// GetInteger returns v's integer value, or 0 if v is nil or not an Integer.
func GetInteger(v Value) int64 {
	iv, ok := v.(*IntegerValue)
	if !ok {
		return 0
	}
	return iv.v
}

// GetDouble returns v's double value, or 0 if v is nil or not a Double.
func GetDouble(v Value) float64 {
	dv, ok := v.(*DoubleValue)
	if !ok {
		return 0
	}
	return dv.v
}

// GetString returns v's string value, or "" if v is nil or not a String.
func GetString(v Value) string {
	sv, ok := v.(*StringValue)
	if !ok {
		return ""
	}
	return sv.v
}

// Destroy releases v. It is a no-op, returning false, when v has a
// foreign owner; an unowned (or nil) v is always released, returning
// true. Go's collector reclaims storage on its own — Destroy exists to
// enforce and make testable the ownership invariant from section 8.1.
func Destroy(v Value) bool {
	if v == nil {
		return true
	}
	return v.Owner() == nil
}
