package repository

import (
	"errors"
	"fmt"
)

var (
	ErrPathNotFound   = errors.New("path not found")
	ErrPathUnreadable = errors.New("path unreadable")
)

// PathError reports a fatal problem with the backup root.
type PathError struct {
	Path string
	Err  error
	// Cause is the underlying filesystem error, if any.
	Cause error
}

func (e *PathError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Err, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Path)
}

func (e *PathError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}
