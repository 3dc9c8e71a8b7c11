package workspace

import (
	"strconv"
	"strings"
)

// Clean trims whitespace and strips trailing '.', '/' and '\' characters.
// It reports false when nothing is left.
func Clean(p string) (string, bool) {
	cleaned := strings.TrimRight(strings.TrimSpace(p), `./\`)
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

// Detect returns the first usable workspace root in body, probing Candidates
// in order.
func Detect(body map[string]any) (Workspace, bool) {
	return DetectFrom(body, Candidates)
}

// DetectFrom probes fields in order and returns the first one whose value is
// a string that survives Clean.
func DetectFrom(body map[string]any, fields []string) (Workspace, bool) {
	for _, field := range fields {
		s, ok := lookup(body, field).(string)
		if !ok {
			continue
		}
		if root, ok := Clean(s); ok {
			return Workspace{Root: root, Field: field}, true
		}
	}
	return Workspace{}, false
}

// lookup walks a dotted field path through nested objects and arrays.
func lookup(body map[string]any, field string) any {
	var cur any = body
	for _, seg := range strings.Split(field, ".") {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}
