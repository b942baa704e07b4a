package common

import "strings"

// UnknownStr is printed for enum values outside their declared range.
const UnknownStr = "unknown"

// FirstNonEmpty returns the first argument that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}

	return ""
}
