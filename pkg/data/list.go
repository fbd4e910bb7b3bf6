package data

// ListValue holds an ordered sequence of Values, in insertion order.
type ListValue struct {
	ownershipState
	items []Value
}

// NewList creates an empty, unowned list.
func NewList() *ListValue { return &ListValue{} }

func (l *ListValue) Type() Type { return List }

// Count returns the number of items in the list, or 0 if l is nil.
func (l *ListValue) Count() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// AddFirstData inserts an already-constructed value at the head of the
// list. It takes ownership of value; the insert fails (returning
// false, ownership unchanged) if value already has a foreign owner.
func (l *ListValue) AddFirstData(value Value) bool {
	if l == nil || value == nil || !value.TakeOwnership(l) {
		return false
	}
	l.items = append([]Value{value}, l.items...)
	return true
}

// AddLastData inserts an already-constructed value at the tail of the
// list, with the same ownership rule as AddFirstData.
func (l *ListValue) AddLastData(value Value) bool {
	if l == nil || value == nil || !value.TakeOwnership(l) {
		return false
	}
	l.items = append(l.items, value)
	return true
}

// AddFirstInteger, AddFirstDouble, and AddFirstString build a fresh
// primitive value and insert it at the head; they cannot fail except
// on a nil receiver.
func (l *ListValue) AddFirstInteger(v int64) bool  { return l != nil && l.AddFirstData(NewInteger(v)) }
func (l *ListValue) AddFirstDouble(v float64) bool { return l != nil && l.AddFirstData(NewDouble(v)) }
func (l *ListValue) AddFirstString(v string) bool  { return l != nil && l.AddFirstData(NewString(v)) }

// AddLastInteger, AddLastDouble, and AddLastString build a fresh
// primitive value and insert it at the tail.
func (l *ListValue) AddLastInteger(v int64) bool  { return l != nil && l.AddLastData(NewInteger(v)) }
func (l *ListValue) AddLastDouble(v float64) bool { return l != nil && l.AddLastData(NewDouble(v)) }
func (l *ListValue) AddLastString(v string) bool  { return l != nil && l.AddLastData(NewString(v)) }

// RemoveFirst pops and returns the head item, releasing it back to the
// caller (DropOwnership(l) is called on it). Returns nil if the list is
// nil or empty.
func (l *ListValue) RemoveFirst() Value {
	if l == nil || len(l.items) == 0 {
		return nil
	}
	v := l.items[0]
	l.items = l.items[1:]
	v.DropOwnership(l)
	return v
}

// RemoveLast pops and returns the tail item, with the same ownership
// transfer as RemoveFirst.
func (l *ListValue) RemoveLast() Value {
	if l == nil || len(l.items) == 0 {
		return nil
	}
	last := len(l.items) - 1
	v := l.items[last]
	l.items = l.items[:last]
	v.DropOwnership(l)
	return v
}

// RemoveFirstInteger pops the head item and returns its integer value,
// or 0 if the list is empty or the head is not an Integer.
func (l *ListValue) RemoveFirstInteger() int64 { return GetInteger(l.RemoveFirst()) }

// RemoveFirstDouble pops the head item and returns its double value.
func (l *ListValue) RemoveFirstDouble() float64 { return GetDouble(l.RemoveFirst()) }

// RemoveFirstString pops the head item and returns its string value.
func (l *ListValue) RemoveFirstString() string { return GetString(l.RemoveFirst()) }

// RemoveLastInteger pops the tail item and returns its integer value.
func (l *ListValue) RemoveLastInteger() int64 { return GetInteger(l.RemoveLast()) }

// RemoveLastDouble pops the tail item and returns its double value.
func (l *ListValue) RemoveLastDouble() float64 { return GetDouble(l.RemoveLast()) }

// RemoveLastString pops the tail item and returns its string value.
func (l *ListValue) RemoveLastString() string { return GetString(l.RemoveLast()) }

// First returns a borrowed reference to the head item without removing
// it, or nil if the list is nil or empty.
func (l *ListValue) First() Value {
	if l == nil || len(l.items) == 0 {
		return nil
	}
	return l.items[0]
}

// Last returns a borrowed reference to the tail item without removing it.
func (l *ListValue) Last() Value {
	if l == nil || len(l.items) == 0 {
		return nil
	}
	return l.items[len(l.items)-1]
}

// Items returns a snapshot slice of borrowed references, in order.
func (l *ListValue) Items() []Value {
	if l == nil {
		return nil
	}
	out := make([]Value, len(l.items))
	copy(out, l.items)
	return out
}

// ContainsOnlyPrimitives reports whether every item is a primitive
// type. An empty or nil list reports true.
func (l *ListValue) ContainsOnlyPrimitives() bool {
	if l == nil {
		return true
	}
	for _, item := range l.items {
		if !IsPrimitiveType(item) {
			return false
		}
	}
	return true
}

// ListContainsOnlyPrimitives is the free-function form used where the
// caller only has a Value, not a known *ListValue.
func ListContainsOnlyPrimitives(v Value) bool {
	lv, ok := v.(*ListValue)
	if !ok {
		return false
	}
	return lv.ContainsOnlyPrimitives()
}
