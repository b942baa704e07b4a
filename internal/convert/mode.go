package convert

import (
	"errors"
	"fmt"
	"strings"

	"sheetjson/internal/schema"
)

var (
	// ErrInvalidSchema is returned when the schema document has the wrong shape
	// or cannot be decoded.
	ErrInvalidSchema = schema.ErrInvalidShape
	// ErrSchemaRequired is returned when mode config_schema runs without a schema.
	ErrSchemaRequired = errors.New("schema required when mode=config_schema")
	// ErrInvalidMode is returned for a mode name other than rows, config or config_schema.
	ErrInvalidMode = errors.New("invalid mode name")
)

// Mode selects the conversion path.
type Mode string

const (
	ModeRows         Mode = "rows"
	ModeConfig       Mode = "config"
	ModeConfigSchema Mode = "config_schema"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeRows, ModeConfig, ModeConfigSchema}

// modeAliases maps accepted shorthand names to their mode.
var modeAliases = map[string]Mode{
	"schema": ModeConfigSchema,
}

// ParseMode validates a mode name. Matching ignores case and surrounding space.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	m, ok := modeAliases[name]
	if !ok {
		m = Mode(name)
	}

	if !m.Valid() {
		return "", fmt.Errorf("%w: %q (expected rows, config or config_schema)", ErrInvalidMode, s)
	}

	return m, nil
}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeRows, ModeConfig, ModeConfigSchema:
		return true
	default:
		return false
	}
}

// NeedsSchema reports whether the mode requires a schema document.
func (m Mode) NeedsSchema() bool {
	return m == ModeConfigSchema
}

func (m Mode) String() string {
	return string(m)
}
