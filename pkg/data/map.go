package data

import "strings"

// MapValue holds a string-keyed collection of Values. Keys are unique;
// iteration order is not meaningful.
type MapValue struct {
	ownershipState
	fields map[string]Value
}

// NewMap creates an empty, unowned map.
func NewMap() *MapValue { return &MapValue{fields: make(map[string]Value)} }

func (m *MapValue) Type() Type { return Map }

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// GetData walks a dotted key or path ("a.b.c") and returns a borrowed
// reference to the value found there, or nil if any intermediate is
// missing, any intermediate is not a map, or the leaf key is absent.
func (m *MapValue) GetData(path string) Value {
	if m == nil {
		return nil
	}
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil
	}
	cur := m
	for i, seg := range segments {
		v, ok := cur.fields[seg]
		if !ok {
			return nil
		}
		if i == len(segments)-1 {
			return v
		}
		next, ok := v.(*MapValue)
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}

// GetInteger, GetDouble, and GetString look up path and coerce to the
// named primitive type, returning the zero value on any mismatch.
func (m *MapValue) GetInteger(path string) int64  { return GetInteger(m.GetData(path)) }
func (m *MapValue) GetDouble(path string) float64 { return GetDouble(m.GetData(path)) }
func (m *MapValue) GetString(path string) string  { return GetString(m.GetData(path)) }

// SetData stores value at path, taking ownership of it. Path setters
// never auto-create intermediate maps: every segment but the last must
// already resolve to an existing map, or the call fails and the caller
// retains ownership of value. Replacing an existing entry releases the
// old value back to being unowned (the container was its only owner).
func (m *MapValue) SetData(path string, value Value) bool {
	if m == nil || value == nil {
		return false
	}
	segments := splitPath(path)
	if len(segments) == 0 {
		return false
	}
	parent := m
	for _, seg := range segments[:len(segments)-1] {
		v, ok := parent.fields[seg]
		if !ok {
			return false
		}
		next, ok := v.(*MapValue)
		if !ok {
			return false
		}
		parent = next
	}
	if !value.TakeOwnership(parent) {
		return false
	}
	leaf := segments[len(segments)-1]
	if old, ok := parent.fields[leaf]; ok {
		old.DropOwnership(parent)
	}
	parent.fields[leaf] = value
	return true
}

// SetInteger, SetDouble, and SetString build a fresh primitive value
// and store it at path, with the same intermediate-path rule as SetData.
func (m *MapValue) SetInteger(path string, v int64) bool  { return m.SetData(path, NewInteger(v)) }
func (m *MapValue) SetDouble(path string, v float64) bool { return m.SetData(path, NewDouble(v)) }
func (m *MapValue) SetString(path string, v string) bool  { return m.SetData(path, NewString(v)) }

// SetDataIfRootMatched consumes value only if the first segment of
// fullPath equals expectedRoot and the remaining path resolves to an
// existing parent map; otherwise value is returned to the caller
// untouched (still unowned) so it can be destroyed. This backs
// assignment's "memory.<path>" root check (section 4.1, 4.4).
func (m *MapValue) SetDataIfRootMatched(expectedRoot, fullPath string, value Value) bool {
	segments := splitPath(fullPath)
	if len(segments) == 0 || segments[0] != expectedRoot {
		return false
	}
	rest := strings.Join(segments[1:], ".")
	if rest == "" {
		return false
	}
	return m.SetData(rest, value)
}

// Keys returns the map's keys as a new owned list of string values, in
// no particular order. An empty map returns an empty (not nil) list.
func (m *MapValue) Keys() *ListValue {
	out := NewList()
	if m == nil {
		return out
	}
	for k := range m.fields {
		out.AddLastString(k)
	}
	return out
}

// ContainsOnlyPrimitives reports whether every direct value is a
// primitive type. An empty or nil map reports true.
func (m *MapValue) ContainsOnlyPrimitives() bool {
	if m == nil {
		return true
	}
	for _, v := range m.fields {
		if !IsPrimitiveType(v) {
			return false
		}
	}
	return true
}

// MapContainsOnlyPrimitives is the free-function form used where the
// caller only has a Value, not a known *MapValue.
func MapContainsOnlyPrimitives(v Value) bool {
	mv, ok := v.(*MapValue)
	if !ok {
		return false
	}
	return mv.ContainsOnlyPrimitives()
}

// Len returns the number of direct entries.
func (m *MapValue) Len() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}
