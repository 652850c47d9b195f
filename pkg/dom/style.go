package dom

import "strings"

// Declaration is a single CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// ParseStyle parses the body of a style attribute. Properties are lower-cased,
// malformed entries are dropped, and a repeated property keeps its first
// position with the last value.
func ParseStyle(s string) []Declaration {
	var out []Declaration
	index := make(map[string]int)
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}
		if i, seen := index[prop]; seen {
			out[i].Value = val
			continue
		}
		index[prop] = len(out)
		out = append(out, Declaration{Property: prop, Value: val})
	}
	return out
}

// FormatStyle serializes declarations back into a style attribute body.
func FormatStyle(decls []Declaration) string {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		b.WriteString(";")
	}
	return b.String()
}
