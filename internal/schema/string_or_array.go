package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// StringOrArray is a list of names that may be written as a single string.
type StringOrArray []string

// UnmarshalYAML accepts a single string or a list of strings. A null node
// never reaches it and leaves the list nil.
// Blank entries are dropped and the rest trimmed.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = compact([]string{node.Value})

		return nil

	case yaml.SequenceNode:
		arr := make([]string, 0, len(node.Content))

		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: alias list entries must be strings", item.Line)
			}

			arr = append(arr, item.Value)
		}

		*s = compact(arr)

		return nil

	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

func compact(in []string) StringOrArray {
	out := make(StringOrArray, 0, len(in))

	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
