// Package coerce converts cell values to the declared type of a config key.
//
// Coercion never fails a conversion. A value that does not fit its declared
// type is returned unchanged together with an Issue describing the expected
// form.
package coerce

import (
	"fmt"
	"strconv"
	"strings"

	"sheetjson/internal/cell"
)

// Type is a declared value type.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeBool   Type = "bool"
	TypeURL    Type = "url"
)

var typeAliases = map[string]Type{
	"string":  TypeString,
	"str":     TypeString,
	"text":    TypeString,
	"int":     TypeInt,
	"integer": TypeInt,
	"bool":    TypeBool,
	"boolean": TypeBool,
	"url":     TypeURL,
}

// ParseType normalizes a type hint. Unknown names are returned lowercased and
// behave like TypeString during conversion; an empty hint yields "".
func ParseType(s string) Type {
	s = strings.ToLower(strings.TrimSpace(s))
	if t, ok := typeAliases[s]; ok {
		return t
	}

	return Type(s)
}

// Known reports whether t is one of the declared types.
func (t Type) Known() bool {
	switch t {
	case TypeString, TypeInt, TypeBool, TypeURL:
		return true
	default:
		return false
	}
}

// Issue describes a value that does not match its declared type.
type Issue struct {
	Key      string
	Expected Type
	Message  string
}

var (
	trueWords  = []string{"true", "1", "yes"}
	falseWords = []string{"false", "0", "no"}
)

// Convert converts v to typ. On mismatch it returns the original value
// (as a plain Go value) and a non-nil Issue. Empty cells are returned as nil
// without an issue: emptiness is the concern of the required check.
func Convert(v cell.Value, typ Type, key string) (any, *Issue) {
	if v.IsEmpty() {
		return nil, nil
	}

	switch typ {
	case TypeInt:
		return toInt(v, key)
	case TypeBool:
		return toBool(v, key)
	case TypeURL:
		return checkURL(v, key)
	default:
		return v.Interface(), nil
	}
}

func toInt(v cell.Value, key string) (any, *Issue) {
	if i, ok := v.Integer(); ok {
		return i, nil
	}

	if _, ok := v.AsNumber(); !ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 64); err == nil {
			return i, nil
		}
	}

	return v.Interface(), &Issue{
		Key:      key,
		Expected: TypeInt,
		Message:  fmt.Sprintf("'%s' expects an integer. Example: 0, 10, 300.", key),
	}
}

func toBool(v cell.Value, key string) (any, *Issue) {
	if b, ok := v.AsBool(); ok {
		return b, nil
	}

	s := strings.ToLower(strings.TrimSpace(v.String()))

	for _, w := range trueWords {
		if s == w {
			return true, nil
		}
	}

	for _, w := range falseWords {
		if s == w {
			return false, nil
		}
	}

	return v.Interface(), &Issue{
		Key:      key,
		Expected: TypeBool,
		Message:  fmt.Sprintf("'%s' expects a boolean (true/false, yes/no, 1/0).", key),
	}
}

func checkURL(v cell.Value, key string) (any, *Issue) {
	s := v.String()
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return v.Interface(), nil
	}

	return v.Interface(), &Issue{
		Key:      key,
		Expected: TypeURL,
		Message:  fmt.Sprintf("'%s' expects a valid URL starting with http:// or https://.", key),
	}
}
