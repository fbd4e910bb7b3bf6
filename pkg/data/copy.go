package data

// ShallowCopy duplicates v if it is copyable: primitives always are;
// List and Map values are copyable only when every direct element is
// itself a primitive (no deep copy of nested containers is provided).
// It returns nil for a nil v or for a container holding a nested
// container. The returned value is unowned.
func ShallowCopy(v Value) Value {
	switch t := v.(type) {
	case nil:
		return nil
	case *IntegerValue:
		return NewInteger(t.v)
	case *DoubleValue:
		return NewDouble(t.v)
	case *StringValue:
		return NewString(t.v)
	case *ListValue:
		if !t.ContainsOnlyPrimitives() {
			return nil
		}
		out := NewList()
		for _, item := range t.items {
			out.AddLastData(ShallowCopy(item))
		}
		return out
	case *MapValue:
		if !t.ContainsOnlyPrimitives() {
			return nil
		}
		out := NewMap()
		for k, item := range t.fields {
			out.SetData(k, ShallowCopy(item))
		}
		return out
	default:
		return nil
	}
}

// ClaimOrCopy implements the evaluator's canonical borrowed-vs-owned
// conversion (section 4.2, 9): if v can be taken by who, it is taken
// and returned as-is; otherwise a shallow copy is attempted and
// returned (already owned by who); if neither succeeds — v is a
// foreign-owned container with nested containers — ClaimOrCopy returns
// nil ("not-copyable").
func ClaimOrCopy(v Value, who Owner) Value {
	if v == nil {
		return nil
	}
	if v.TakeOwnership(who) {
		return v
	}
	cp := ShallowCopy(v)
	if cp == nil {
		return nil
	}
	cp.TakeOwnership(who)
	return cp
}
