package parser

import (
	"fmt"

	"eod-reconciliation-backend/internal/models"
)

// ParseError means one file could not be turned into a record. It never
// aborts a run; the caller records the file as skipped.
type ParseError struct {
	Path   string
	Kind   models.RecordKind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %s: %s", e.Kind, e.Path, e.Reason)
}

func (e *ParseError) Skipped() models.SkippedFile {
	return models.SkippedFile{Path: e.Path, Kind: e.Kind, Reason: e.Reason}
}
