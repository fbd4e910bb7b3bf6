package instr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/quenio/agerun/pkg/data"
)

var holePattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ParseTemplate matches template's literal text against input,
// capturing each {key} hole as a string. A template with no holes that
// does not exactly match input, or any non-match, yields an empty
// (not nil) map — section 4.4's "failure -> empty map".
func ParseTemplate(template, input string) *data.MapValue {
	result := data.NewMap()

	var pattern strings.Builder
	pattern.WriteString("^")
	var keys []string
	last := 0
	for _, loc := range holePattern.FindAllStringSubmatchIndex(template, -1) {
		start, end := loc[0], loc[1]
		keyStart, keyEnd := loc[2], loc[3]
		pattern.WriteString(regexp.QuoteMeta(template[last:start]))
		pattern.WriteString("(.*?)")
		keys = append(keys, template[keyStart:keyEnd])
		last = end
	}
	pattern.WriteString(regexp.QuoteMeta(template[last:]))
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return result
	}
	m := re.FindStringSubmatch(input)
	if m == nil {
		return result
	}
	for i, key := range keys {
		result.SetString(key, m[i+1])
	}
	return result
}

// BuildTemplate replaces each {key} hole in template with the textual
// form of values[key]; a missing key leaves the hole verbatim
// (section 4.4, 6.2). Integer and Double map values are coerced to
// their textual representation so hand-built maps with numeric holes
// still round-trip — see the decided Open Question in DESIGN.md.
func BuildTemplate(template string, values *data.MapValue) string {
	return holePattern.ReplaceAllStringFunc(template, func(hole string) string {
		key := hole[1 : len(hole)-1]
		v := values.GetData(key)
		if v == nil {
			return hole
		}
		switch v.Type() {
		case data.String:
			return data.GetString(v)
		case data.Integer:
			return strconv.FormatInt(data.GetInteger(v), 10)
		case data.Double:
			return strconv.FormatFloat(data.GetDouble(v), 'g', -1, 64)
		default:
			return hole
		}
	})
}
