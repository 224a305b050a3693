package config

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{
		"EOD_MARKER_TOKEN", "EOD_RECEIPTS_SEGMENT", "EOD_REPORTS_SEGMENT", "EOD_FILE_EXT",
		"EOD_TOLERANCE", "EOD_WORKERS", "EOD_REPORT_FILE", "LOG_LEVEL", "SERVER_ADDR",
		"ALLOWED_ORIGINS", "ALLOWED_ROOT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "KRAMW", cfg.MarkerToken)
	assert.Equal(t, "JSON/Inv", cfg.ReceiptsSegment)
	assert.Equal(t, "JSON/End", cfg.ReportsSegment)
	assert.Equal(t, ".txt", cfg.FileExtension)
	assert.True(t, cfg.Tolerance.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "sales_reconciliation_report.txt", cfg.ReportFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EOD_MARKER_TOKEN", "DEJA")
	t.Setenv("EOD_RECEIPTS_SEGMENT", "JSON/Inv_New")
	t.Setenv("EOD_TOLERANCE", "0.05")
	t.Setenv("EOD_WORKERS", "8")
	t.Setenv("ALLOWED_ORIGINS", "http://a.local, http://b.local")

	cfg := Load()

	assert.Equal(t, "DEJA", cfg.MarkerToken)
	assert.Equal(t, "JSON/Inv_New", cfg.ReceiptsSegment)
	assert.True(t, cfg.Tolerance.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EOD_TOLERANCE", "one cent")
	t.Setenv("EOD_WORKERS", "0")

	cfg := Load()

	require.NotNil(t, cfg)
	assert.True(t, cfg.Tolerance.Equal(DefaultTolerance))
	assert.Equal(t, 1, cfg.Workers)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
