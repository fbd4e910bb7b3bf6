package data

// ToNative converts v into plain Go values (int64, float64, string,
// []any, map[string]any) suitable for YAML/JSON encoding — used by
// pkg/persistence to snapshot agent memory and by pkg/httpapi to
// render it as JSON. Unlike ShallowCopy, ToNative recurses through
// arbitrarily nested containers; it never touches ownership.
func ToNative(v Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *IntegerValue:
		return t.v
	case *DoubleValue:
		return t.v
	case *StringValue:
		return t.v
	case *ListValue:
		out := make([]any, len(t.items))
		for i, item := range t.items {
			out[i] = ToNative(item)
		}
		return out
	case *MapValue:
		out := make(map[string]any, len(t.fields))
		for k, item := range t.fields {
			out[k] = ToNative(item)
		}
		return out
	default:
		return nil
	}
}

// FromNative builds an unowned Value tree from plain Go values as
// decoded by a YAML/JSON unmarshaler — the inverse of ToNative. Maps
// keyed by non-string types, and any value of an unrecognized
// dynamic type, are skipped (nil entry omitted by the caller).
func FromNative(x any) Value {
	switch t := x.(type) {
	case nil:
		return nil
	case int64:
		return NewInteger(t)
	case int:
		return NewInteger(int64(t))
	case float64:
		return NewDouble(t)
	case string:
		return NewString(t)
	case []any:
		out := NewList()
		for _, item := range t {
			if iv := FromNative(item); iv != nil {
				out.AddLastData(iv)
			}
		}
		return out
	case map[string]any:
		out := NewMap()
		for k, item := range t {
			if iv := FromNative(item); iv != nil {
				out.SetData(k, iv)
			}
		}
		return out
	case map[any]any:
		out := NewMap()
		for k, item := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			if iv := FromNative(item); iv != nil {
				out.SetData(ks, iv)
			}
		}
		return out
	default:
		return nil
	}
}
