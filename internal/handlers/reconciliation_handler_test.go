package handler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRoot(t *testing.T) {
	allowed := t.TempDir()
	h := NewReconciliationHandler(nil, allowed, nil)

	tests := []struct {
		name string
		root string
		ok   bool
	}{
		{"allowed root itself", allowed, true},
		{"nested", filepath.Join(allowed, "branch", "KRAMW01"), true},
		{"parent", filepath.Dir(allowed), false},
		{"escape with dots", filepath.Join(allowed, "..", "other"), false},
		{"sibling sharing prefix", allowed + "-evil", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.checkRoot(tt.root)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got))
		})
	}
}

func TestCheckRoot_Unrestricted(t *testing.T) {
	h := NewReconciliationHandler(nil, "", nil)
	got, err := h.checkRoot("relative/backup")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
