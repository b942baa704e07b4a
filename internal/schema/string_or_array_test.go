package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStringOrArray_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    StringOrArray
		wantErr bool
	}{
		{name: "scalar", in: `" Clé "`, want: StringOrArray{"Clé"}},
		{name: "list", in: `[a, " ", b]`, want: StringOrArray{"a", "b"}},
		{name: "nested list", in: `[[a]]`, wantErr: true},
		{name: "mapping", in: `{a: b}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringOrArray

			err := yaml.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
