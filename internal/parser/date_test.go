package parser

import (
	"testing"

	"eod-reconciliation-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in        string
		want      models.Date
		ambiguous bool
	}{
		{"2024-01-05", models.NewDate(2024, 1, 5), false},
		{"2024-01-05T23:59:59", models.NewDate(2024, 1, 5), false},
		{"2024-01-05 08:00", models.NewDate(2024, 1, 5), false},
		{"2024/1/5", models.NewDate(2024, 1, 5), false},
		{"20240105", models.NewDate(2024, 1, 5), false},
		{"20240105093000", models.NewDate(2024, 1, 5), false},
		{"01/05/2024", models.NewDate(2024, 1, 5), true},
		{"1/5/2024", models.NewDate(2024, 1, 5), true},
		{"05/05/2024", models.NewDate(2024, 5, 5), false},
		{"12/31/2024", models.NewDate(2024, 12, 31), false},
		{"31/12/2024", models.NewDate(2024, 12, 31), false},
		{"31-12-2024", models.NewDate(2024, 12, 31), false},
		{"13.01.2024", models.NewDate(2024, 1, 13), false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.Date, tc.in)
		assert.Equal(t, tc.ambiguous, got.Ambiguous, tc.in)
	}
}

func TestParseDate_Alternate(t *testing.T) {
	got, err := ParseDate("02/03/2024")
	require.NoError(t, err)
	assert.Equal(t, models.NewDate(2024, 2, 3), got.Date)
	assert.Equal(t, models.NewDate(2024, 3, 2), got.Alternate)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01", "2023-02-29", "32/13/2024", "2024-1"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}
