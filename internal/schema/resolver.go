package schema

import (
	"fmt"

	"sheetjson/internal/diagnostic"
	"sheetjson/internal/match"
)

// Resolver maps raw header names and raw key values to canonical names.
// Names it does not know resolve to themselves.
type Resolver struct {
	headers map[string]string
	keys    map[string]string
}

func newResolver(columns []Column, rules []Rule, warnings *diagnostic.Diagnostics) *Resolver {
	r := &Resolver{
		headers: make(map[string]string, len(columns)),
		keys:    make(map[string]string, len(rules)),
	}

	// Canonical names first, so an alias can never shadow one.
	for _, c := range columns {
		r.headers[match.Fold(c.Name)] = c.Name
	}

	for _, k := range rules {
		r.keys[match.Canonical(k.Key)] = k.Key
	}

	for _, c := range columns {
		for _, alias := range c.Aliases {
			register(r.headers, match.Fold(alias), alias, c.Name, "column", warnings)
		}
	}

	for _, k := range rules {
		for _, alias := range k.Aliases {
			register(r.keys, match.Canonical(alias), alias, k.Key, "key", warnings)
		}
	}

	return r
}

// register adds alias -> canonical unless the alias is already taken.
func register(table map[string]string, folded, alias, canonical, what string, warnings *diagnostic.Diagnostics) {
	existing, ok := table[folded]
	if !ok {
		table[folded] = canonical
		return
	}

	if existing == canonical {
		return
	}

	warnings.AddWarning(
		diagnostic.CodeAliasCollision,
		fmt.Sprintf("%s alias '%s' of '%s' is already used by '%s' — keeping '%s'.", what, alias, canonical, existing, existing),
		"", 0, canonical,
	)
}

// Header resolves a sheet header to its canonical column name. Headers
// compare case-insensitively; an unknown header is returned trimmed.
func (r *Resolver) Header(name string) string {
	if c, ok := r.headers[match.Fold(name)]; ok {
		return c
	}

	return match.Canonical(name)
}

// Key resolves a raw key to its canonical key name. Keys compare exactly after
// trimming; an unknown key is returned trimmed.
func (r *Resolver) Key(raw string) string {
	k := match.Canonical(raw)
	if c, ok := r.keys[k]; ok {
		return c
	}

	return k
}
