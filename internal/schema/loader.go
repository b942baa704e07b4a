package schema

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"sheetjson/internal/cell"
	"sheetjson/internal/coerce"
	"sheetjson/internal/diagnostic"
)

// LoadFile loads and parses a schema file from the given path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes schema text and checks its shape. Text starting with '{' or
// '[' must be strict JSON; anything else is read as YAML.
//
// Shape errors wrap ErrInvalidShape and decoding errors wrap ErrMalformed.
func Parse(data []byte) (*Schema, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: schema is empty", ErrInvalidShape)
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		if !json.Valid(trimmed) {
			var probe any
			err := json.Unmarshal(trimmed, &probe)

			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	if err := rejectDuplicateKeys(root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return fromNode(root)
}

// rejectDuplicateKeys fails on any mapping that repeats a key. yaml.v3 only
// checks this when decoding into Go maps, not into a Node tree.
func rejectDuplicateKeys(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		seen := make(map[string]bool, len(n.Content)/2)

		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if seen[k.Value] {
				return fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
			}

			seen[k.Value] = true
		}
	}

	for _, c := range n.Content {
		if err := rejectDuplicateKeys(c); err != nil {
			return err
		}
	}

	return nil
}

func fromNode(root *yaml.Node) (*Schema, error) {
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: schema root must be an object", ErrInvalidShape)
	}

	s := &Schema{}

	columns := lookup(root, "columns")
	if columns == nil || columns.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: 'columns' must be an object", ErrInvalidShape)
	}

	keys := lookup(root, "keys")
	if keys == nil || keys.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: 'keys' must be an object", ErrInvalidShape)
	}

	if n := lookup(root, "allow_extra_keys"); n != nil {
		b, ok, err := boolNode(n)
		if err != nil {
			return nil, fmt.Errorf("%w: 'allow_extra_keys': %v", ErrInvalidShape, err)
		}

		s.AllowExtraKeys = ok && b
	}

	for i := 0; i+1 < len(columns.Content); i += 2 {
		name := strings.TrimSpace(columns.Content[i].Value)
		if name == "" {
			return nil, fmt.Errorf("%w: column names must not be empty", ErrInvalidShape)
		}

		var aliases StringOrArray
		if err := columns.Content[i+1].Decode(&aliases); err != nil {
			return nil, fmt.Errorf("%w: columns.%s: %v", ErrInvalidShape, name, err)
		}

		s.Columns = append(s.Columns, Column{Name: name, Aliases: aliases})
	}

	for i := 0; i+1 < len(keys.Content); i += 2 {
		name := strings.TrimSpace(keys.Content[i].Value)
		if name == "" {
			return nil, fmt.Errorf("%w: key names must not be empty", ErrInvalidShape)
		}

		rule, err := ruleFromNode(name, keys.Content[i+1], &s.Warnings)
		if err != nil {
			return nil, fmt.Errorf("%w: keys.%s: %v", ErrInvalidShape, name, err)
		}

		s.Keys = append(s.Keys, rule)
	}

	s.index()

	return s, nil
}

func ruleFromNode(key string, n *yaml.Node, warnings *diagnostic.Diagnostics) (Rule, error) {
	rule := Rule{Key: key}

	if isNull(n) {
		return rule, nil
	}

	if n.Kind != yaml.MappingNode {
		return rule, errors.New("rule must be an object")
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		field, val := n.Content[i].Value, n.Content[i+1]

		switch field {
		case "required":
			b, _, err := boolNode(val)
			if err != nil {
				return rule, fmt.Errorf("'required': %w", err)
			}

			rule.Required = b

		case "type":
			if isNull(val) {
				continue
			}

			if val.Kind != yaml.ScalarNode {
				return rule, errors.New("'type' must be a string")
			}

			rule.Type = coerce.ParseType(val.Value)
			if rule.Type != "" && !rule.Type.Known() {
				warnings.AddWarning(diagnostic.CodeUnknownSchemaField,
					fmt.Sprintf("key '%s' declares unknown type '%s' — values pass through unchecked.", key, val.Value),
					"", 0, key)
			}

		case "default":
			if isNull(val) {
				continue
			}

			if val.Kind != yaml.ScalarNode {
				return rule, errors.New("'default' must be a string, number or boolean")
			}

			var raw any
			if err := val.Decode(&raw); err != nil {
				return rule, fmt.Errorf("'default': %w", err)
			}

			v, err := cell.FromAny(raw)
			if err != nil {
				return rule, fmt.Errorf("'default': %w", err)
			}

			if f, ok := v.AsNumber(); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				return rule, fmt.Errorf("'default' must be a finite number, got %s", val.Value)
			}

			rule.Default, rule.HasDefault = v, !v.IsEmpty()

		case "aliases":
			if err := val.Decode(&rule.Aliases); err != nil {
				return rule, fmt.Errorf("'aliases': %w", err)
			}

		default:
			warnings.AddWarning(diagnostic.CodeUnknownSchemaField,
				fmt.Sprintf("key '%s' has unknown rule field '%s' — ignored.", key, field),
				"", 0, key)
		}
	}

	checkDefault(rule, warnings)

	return rule, nil
}

// checkDefault warns when a default cannot be coerced to the declared type,
// since every row falling back to it would report a type mismatch.
func checkDefault(rule Rule, warnings *diagnostic.Diagnostics) {
	if !rule.HasDefault || !rule.Type.Known() {
		return
	}

	if _, issue := coerce.Convert(rule.Default, rule.Type, rule.Key); issue != nil {
		warnings.AddWarning(diagnostic.CodeInvalidDefault,
			fmt.Sprintf("key '%s' has a %s default '%s' that does not fit type %s.",
				rule.Key, strings.ToLower(rule.Default.Kind().String()), rule.Default, rule.Type),
			"", 0, rule.Key)
	}
}

// lookup returns the value node for key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}

	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// boolNode reads a boolean scalar, also accepting yes/no and 1/0.
// ok is false for null.
func boolNode(n *yaml.Node) (value, ok bool, err error) {
	if isNull(n) {
		return false, false, nil
	}

	if n.Kind != yaml.ScalarNode {
		return false, false, errors.New("expected a boolean")
	}

	switch strings.ToLower(strings.TrimSpace(n.Value)) {
	case "true", "yes", "1", "on":
		return true, true, nil
	case "false", "no", "0", "off", "":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("expected a boolean, got %q", n.Value)
	}
}
