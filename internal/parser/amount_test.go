package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"45.00", "45"},
		{"1,234.50", "1234.5"},
		{"KES 1,234.50", "1234.5"},
		{"Ksh-20", "-20"},
		{"£12.30", "12.3"},
		{" $ 0.01 ", "0.01"},
		{"-0.50", "-0.5"},
		{"(12.00)", "-12"},
		{json.Number("10.10"), "10.1"},
		{json.Number("7"), "7"},
		{float64(2.5), "2.5"},
		{"Ksh.100", "100"},
		{"Ksh. 1,234.50", "1234.5"},
		{"Rs. 45.00", "45"},
		{"45.00 KES", "45"},
		{".75", "0.75"},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, "%v", tc.in)
		assert.Equal(t, tc.want, got.String(), "%v", tc.in)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []any{"", "n/a", ".", "1.2.3", "Ksh.", "12 and 13", nil, true} {
		_, err := ParseAmount(in)
		assert.Error(t, err, "%v", in)
	}
}

func TestSanitize(t *testing.T) {
	in := "\ufeff  {\"a\":\"©x£\x11\"}abc123  "
	assert.Equal(t, `{"a":"x"}`, Sanitize(in))
	assert.Equal(t, "Key: value", Sanitize("Key: value\x03\n"))
}
