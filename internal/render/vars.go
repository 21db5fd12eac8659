package render

import (
	"strings"

	"genui/internal/util/datapath"
)

// ResolveVars substitutes placeholder strings against the data store and
// recurses over maps and slices. Only a string that is exactly one
// placeholder ("{path}") is substituted, keeping the looked-up value's type;
// a placeholder embedded in a larger string ("Total: {count}") is left
// untouched. That asymmetry is a deliberate constraint of the format, not
// an omission.
func ResolveVars(value any, store map[string]any) any {
	switch x := value.(type) {
	case string:
		path, ok := placeholderPath(x)
		if !ok {
			return x
		}
		if strings.Contains(path, ".") {
			return datapath.Get(store, path)
		}
		return store[path]
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			out[k] = ResolveVars(v, store)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = ResolveVars(x[i], store)
		}
		return out
	default:
		return value
	}
}

func placeholderPath(s string) (string, bool) {
	if len(s) < 3 || s[0] != '{' || s[len(s)-1] != '}' {
		return "", false
	}
	inner := s[1 : len(s)-1]
	if strings.ContainsAny(inner, "{}") {
		return "", false
	}
	return inner, true
}
