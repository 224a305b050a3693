package utils

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"9.txt", "10.txt", true},
		{"10.txt", "9.txt", false},
		{"a", "b", true},
		{"file2", "file2", false},
		{"007", "7", false},
		{"7", "007", true},
		{"Inv/1-100/99.txt", "Inv/101-200/1.txt", true},
		{"abc", "abcd", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NaturalLess(tc.a, tc.b), "%q < %q", tc.a, tc.b)
	}
}

func TestNaturalLess_SortsNumberedFiles(t *testing.T) {
	files := []string{"100.txt", "2.txt", "11.txt", "1.txt"}
	sort.Slice(files, func(i, j int) bool { return NaturalLess(files[i], files[j]) })
	assert.Equal(t, []string{"1.txt", "2.txt", "11.txt", "100.txt"}, files)
}
