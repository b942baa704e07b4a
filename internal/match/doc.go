// Package match provides name folding, Levenshtein distance and candidate
// ranking for spreadsheet headers and config keys.
//
// Key functions:
//   - Fold: Unicode-aware, case-insensitive form of a header or alias
//   - NormalizeIdent: separator- and case-insensitive form of a key
//   - Levenshtein: edit distance between two names
//   - Suggest: closest declared names for an unknown key
package match
