// Package convert turns decoded sheets into JSON-ready output in one of three
// modes:
//
//   - rows: every sheet's rows, verbatim, keyed by header.
//   - config: a flat key/value map built from the "key" and "value" columns,
//     honoring optional per-row "required" and "type" hints.
//   - config_schema: the schema-validated path. Headers and keys are resolved
//     through the schema's aliases, schema rules are merged with row hints,
//     values are coerced, and dot-separated keys expand into nested objects.
//
// Data-quality problems never abort a conversion. They are collected, in row
// order, into the result's diagnostics; only structural problems (bad mode,
// missing or malformed schema) are returned as errors. A config or
// config_schema conversion that produces no entries is reported as a failed
// Result rather than an error.
//
// A conversion owns all of its state and is not safe for concurrent use;
// separate conversions may run in parallel.
package convert
