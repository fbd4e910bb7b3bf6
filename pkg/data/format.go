package data

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatStructure renders v as a human-readable diagnostic string,
// indenting nested containers by depth levels (0 = top level). It is
// used by log messages and the introspection API, never by the
// instruction language itself.
func FormatStructure(v Value, depth int) string {
	indent := strings.Repeat("  ", depth)
	switch t := v.(type) {
	case nil:
		return indent + "<nil>"
	case *IntegerValue:
		return indent + strconv.FormatInt(t.v, 10)
	case *DoubleValue:
		return indent + strconv.FormatFloat(t.v, 'g', -1, 64)
	case *StringValue:
		return indent + strconv.Quote(t.v)
	case *ListValue:
		if len(t.items) == 0 {
			return indent + "[]"
		}
		var b strings.Builder
		b.WriteString(indent + "[\n")
		for _, item := range t.items {
			b.WriteString(FormatStructure(item, depth+1))
			b.WriteString("\n")
		}
		b.WriteString(indent + "]")
		return b.String()
	case *MapValue:
		if len(t.fields) == 0 {
			return indent + "{}"
		}
		keys := make([]string, 0, len(t.fields))
		for k := range t.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(indent + "{\n")
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("%s  %s:\n", indent, k))
			b.WriteString(FormatStructure(t.fields[k], depth+2))
			b.WriteString("\n")
		}
		b.WriteString(indent + "}")
		return b.String()
	default:
		return indent + "<unknown>"
	}
}
