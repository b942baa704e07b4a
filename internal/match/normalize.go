package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold returns the comparison form of a spreadsheet header: NFC-normalized,
// Unicode case-folded, trimmed, with inner whitespace runs collapsed to a
// single space. "  Clé  Param " and "clé param" fold to the same string.
func Fold(s string) string {
	s = norm.NFC.String(s)
	s = folder.String(s)

	return strings.Join(strings.Fields(s), " ")
}

// Canonical returns the exact-match form of a config key: trimmed and
// NFC-normalized, case preserved.
func Canonical(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeIdent normalizes a key for fuzzy comparison.
// The normalization pipeline:
// 1. Split camelCase words.
// 2. Case-fold to lower.
// 3. Strip separators (_, -, ., spaces).
func NormalizeIdent(s string) string {
	tokens := TokenizeIdent(s)

	return strings.Join(tokens, "")
}

// TokenizeIdent splits a key into lowercase word tokens.
// Examples:
//   - "apiURL" -> ["api", "url"]
//   - "server.max_conns" -> ["server", "max", "conns"]
//   - "HTTPTimeout" -> ["http", "timeout"]
func TokenizeIdent(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsWord(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// startsWord reports whether a new word begins at runes[i].
func startsWord(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	// "apiURL": lower -> upper.
	if !unicode.IsUpper(prev) {
		return true
	}

	// "HTTPTimeout": last upper of an acronym followed by lower.
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
