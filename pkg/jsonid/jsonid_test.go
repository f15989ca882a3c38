package jsonid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_MarshalJSON(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{"7", `7`},
		{"0", `0`},
		{"007", `"007"`},
		{"-5", `-5`},
		{"-0", `"-0"`},
		{"-07", `"-07"`},
		{"-", `"-"`},
		{"abc-1", `"abc-1"`},
		{"12345678901234567890", `"12345678901234567890"`},
		{"", `""`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got), "id %q", tt.id)
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`7`, "7"},
		{`"7"`, "7"},
		{`"sku-9"`, "sku-9"},
		{`null`, ""},
		{`7.5`, "7.5"},
		{`-5`, "-5"},
		{`1.0`, "1"},
		{`1e0`, "1"},
		{`1E2`, "100"},
		{`10e-1`, "1"},
		{`-0.0`, "0"},
		{`1e30`, "1e30"},
	}
	for _, tt := range tests {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(tt.in), &id), tt.in)
		assert.Equal(t, tt.want, id, tt.in)
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestID_NumericRoundTrip(t *testing.T) {
	type line struct {
		ID ID `json:"id"`
	}
	tests := []struct {
		in   string
		want string
	}{
		{`{"id":-5}`, `{"id":-5}`},
		{`{"id":"-5"}`, `{"id":-5}`},
		{`{"id":1.0}`, `{"id":1}`},
		{`{"id":2e1}`, `{"id":20}`},
	}
	for _, tt := range tests {
		var l line
		require.NoError(t, json.Unmarshal([]byte(tt.in), &l), tt.in)

		out, err := json.Marshal(l)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(out), tt.in)
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, ID("42"), Parse("  42 "))
	assert.True(t, Parse(" ").IsZero())
	assert.Equal(t, "42", Parse("42").String())
}
