package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logg = logrus.New()

// Init configures the shared logger. The CLI uses the text formatter so
// warnings read well next to the report; the server logs JSON.
func Init(levelStr string, jsonFormat bool, out io.Writer) *logrus.Logger {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil {
		level = logrus.InfoLevel
		defer logg.WithField("configuredLevel", levelStr).Warn("Invalid LOG_LEVEL specified, defaulting to info")
	}

	if jsonFormat {
		logg.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logg.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	if out == nil {
		out = os.Stderr
	}
	logg.SetOutput(out)
	logg.SetLevel(level)
	return logg
}

// Module returns an entry tagged with the component name.
func Module(l *logrus.Logger, name string) *logrus.Entry {
	if l == nil {
		l = logg
	}
	return l.WithField("module", name)
}

func LogError(entry *logrus.Entry, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	entry.WithFields(fields).Error(err.Error())
}
