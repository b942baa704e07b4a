package schema

import (
	"errors"

	"sheetjson/internal/cell"
	"sheetjson/internal/coerce"
	"sheetjson/internal/diagnostic"
)

var (
	// ErrInvalidShape reports a schema document that decodes but does not
	// have the expected structure.
	ErrInvalidShape = errors.New("invalid schema shape")
	// ErrMalformed reports schema text that is not valid JSON or YAML.
	ErrMalformed = errors.New("malformed schema document")
)

// Schema is an immutable, parsed schema document.
type Schema struct {
	// Columns in declaration order.
	Columns []Column
	// Keys in declaration order.
	Keys []Rule
	// AllowExtraKeys keeps keys that have no rule in the output.
	AllowExtraKeys bool
	// Warnings holds non-fatal findings about the document itself,
	// such as alias collisions.
	Warnings diagnostic.Diagnostics

	rules    map[string]int
	resolver *Resolver
}

// Column declares a canonical header name and its spellings.
type Column struct {
	Name    string
	Aliases StringOrArray
}

// Rule is the validation rule declared for one canonical key.
type Rule struct {
	Key      string
	Required bool
	// Type is empty when the schema leaves the type to the sheet.
	Type       coerce.Type
	Default    cell.Value
	HasDefault bool
	Aliases    StringOrArray
}

// Rule returns the rule declared for a canonical key.
func (s *Schema) Rule(key string) (Rule, bool) {
	i, ok := s.rules[key]
	if !ok {
		return Rule{}, false
	}

	return s.Keys[i], true
}

// KeyNames returns the canonical key names in declaration order.
func (s *Schema) KeyNames() []string {
	names := make([]string, len(s.Keys))
	for i, r := range s.Keys {
		names[i] = r.Key
	}

	return names
}

// RequiredKeys returns the keys declared required, in declaration order.
func (s *Schema) RequiredKeys() []string {
	var out []string

	for _, r := range s.Keys {
		if r.Required {
			out = append(out, r.Key)
		}
	}

	return out
}

// Resolver returns the alias resolver built for this schema.
func (s *Schema) Resolver() *Resolver {
	return s.resolver
}

// index finishes construction once Columns and Keys are populated.
func (s *Schema) index() {
	s.rules = make(map[string]int, len(s.Keys))
	for i, r := range s.Keys {
		s.rules[r.Key] = i
	}

	s.resolver = newResolver(s.Columns, s.Keys, &s.Warnings)
}
