package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_TextFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := Init("debug", false, &buf)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	Module(l, "parser").WithField("path", "/r/1.txt").Warn("Skipping file")
	out := buf.String()
	assert.Contains(t, out, "module=parser")
	assert.Contains(t, out, "path=/r/1.txt")
	assert.NotContains(t, out, "time=")
}

func TestInit_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Init("loud", false, &buf)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.Contains(t, buf.String(), "Invalid LOG_LEVEL")
}

func TestLogError_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := Init("info", true, &buf)

	LogError(Module(l, "http"), "Run", "start batch", map[string]string{"root": "/b"}, errors.New("boom"))

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "http", entry["module"])
	assert.Equal(t, "Run", entry["funcName"])
	assert.Equal(t, "start batch", entry["context"])
}
