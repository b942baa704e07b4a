// Package schema parses and validates the declarative contract a config
// sheet is converted against, and resolves header and key aliases.
//
// # Document
//
// A schema is a JSON (or YAML) mapping:
//
//	{
//	  "columns": {
//	    "key":   ["Key", "Clé", "Parameter"],
//	    "value": ["Value", "Valeur"]
//	  },
//	  "keys": {
//	    "api_url":     {"type": "url", "required": true, "aliases": ["api.endpoint"]},
//	    "timeout":     {"type": "int", "default": 30},
//	    "server.port": {"type": "int"}
//	  },
//	  "allow_extra_keys": false
//	}
//
// "columns" maps a canonical header name to the header spellings found in
// sheets; headers compare case-insensitively. "keys" maps a canonical config
// key to its rule. Rule fields are all optional: "required" (default false),
// "type" (string, int, bool or url; when absent the row's own type column
// applies), "default" (a scalar substituted for an empty value) and "aliases"
// (a string or a list of strings). Key aliases compare exactly after trimming.
//
// # Alias collisions
//
// Canonical names always resolve to themselves. When the same alias is
// declared more than once, the first declaration in document order wins and
// every later one is reported in Schema.Warnings.
package schema
