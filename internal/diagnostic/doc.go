// Package diagnostic collects the non-fatal, user-facing findings of a
// conversion: empty or duplicate keys, missing required values, type
// mismatches, keys the schema does not know about, and required keys that no
// row supplied.
//
// Diagnostics are kept in the order they were found. A diagnostic never stops
// a conversion; callers decide success from the produced data alone.
package diagnostic
