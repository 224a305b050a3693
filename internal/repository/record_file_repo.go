package repository

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ReadRecordFile returns the text of one record file. Terminals write UTF-8
// but older firmware emits Latin-1 (pound and copyright signs), so invalid
// UTF-8 is decoded as ISO-8859-1 instead of failing.
func (r *BackupRepository) ReadRecordFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s as latin-1: %w", path, err)
	}
	r.log.WithField("path", path).Debug("File is not valid UTF-8, decoded as latin-1")
	return string(decoded), nil
}
