// Package keypath expands dot-separated config keys into nested maps.
//
// "server.port" = 8080 and "server.host" = "localhost" become
// {"server": {"port": 8080, "host": "localhost"}}. Assignment is not safe
// for concurrent use on the same target.
package keypath

import (
	"strings"
)

// Separator splits a key into nesting levels.
const Separator = "."

// Split returns the segments of a dot-path. Empty segments are kept, so
// "a..b" yields ["a", "", "b"].
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Set assigns value at path inside target, creating intermediate maps as
// needed. An intermediate segment that holds a non-map value is replaced by a
// new empty map, discarding that value.
func Set(target map[string]any, path string, value any) {
	segments := Split(path)
	current := target

	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[seg] = next
		}

		current = next
	}

	current[segments[len(segments)-1]] = value
}

// Get returns the value stored at path, walking nested maps.
func Get(target map[string]any, path string) (any, bool) {
	segments := Split(path)
	current := target

	for i, seg := range segments {
		v, ok := current[seg]
		if !ok {
			return nil, false
		}

		if i == len(segments)-1 {
			return v, true
		}

		current, ok = v.(map[string]any)
		if !ok {
			return nil, false
		}
	}

	return nil, false
}

// Flatten is the inverse of Set: it returns every leaf keyed by its dot-path.
// Empty nested maps are kept as leaves.
func Flatten(source map[string]any) map[string]any {
	out := map[string]any{}
	flattenInto(out, "", source)

	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + Separator + k
		}

		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			flattenInto(out, path, nested)
			continue
		}

		out[path] = v
	}
}
