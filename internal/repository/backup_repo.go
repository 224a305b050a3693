package repository

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"eod-reconciliation-backend/internal/utils"

	"github.com/sirupsen/logrus"
)

// Layout describes where a deployment keeps its records.
type Layout struct {
	MarkerToken     string
	ReceiptsSegment string
	ReportsSegment  string
	FileExtension   string
}

// Candidate is one record file and the terminal folder it was found under.
type Candidate struct {
	Path     string
	Terminal string
}

// Candidates are the record files found under every terminal folder, in
// natural path order.
type Candidates struct {
	Terminals []string
	Receipts  []Candidate
	Reports   []Candidate
}

// Paths returns the file paths of cs in order.
func Paths(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Path
	}
	return out
}

func (c *Candidates) Total() int {
	return len(c.Receipts) + len(c.Reports)
}

// BackupRepository gives read-only access to a POS backup tree.
type BackupRepository struct {
	layout Layout
	log    *logrus.Entry
}

func NewBackupRepository(layout Layout, log *logrus.Entry) *BackupRepository {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &BackupRepository{layout: layout, log: log}
}

func (r *BackupRepository) Layout() Layout {
	return r.layout
}

// Locate walks root and collects receipt and EOD candidates beneath every
// directory whose name contains the marker token. Only a missing or
// unreadable root is an error; problems further down are logged and skipped.
func (r *BackupRepository) Locate(root string) (*Candidates, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	root = r.resolveRoot(root)
	found := &Candidates{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return &PathError{Path: root, Err: ErrPathUnreadable, Cause: err}
			}
			r.log.WithField("path", path).Warnf("Skipping unreadable entry: %v", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if r.skipSymlinkedDir(path, d) {
			return nil
		}
		if !d.IsDir() || !strings.Contains(d.Name(), r.layout.MarkerToken) {
			return nil
		}

		found.Terminals = append(found.Terminals, path)
		found.Receipts = append(found.Receipts, r.collect(path, r.layout.ReceiptsSegment)...)
		found.Reports = append(found.Reports, r.collect(path, r.layout.ReportsSegment)...)
		// a terminal folder is a leaf of the discovery walk
		return filepath.SkipDir
	})
	if err != nil {
		var pathErr *PathError
		if errors.As(err, &pathErr) {
			return nil, pathErr
		}
		return nil, &PathError{Path: root, Err: ErrPathUnreadable, Cause: err}
	}

	sortNatural(found.Receipts)
	sortNatural(found.Reports)
	r.log.WithFields(logrus.Fields{
		"terminals": len(found.Terminals),
		"receipts":  len(found.Receipts),
		"reports":   len(found.Reports),
	}).Debug("Located record files")
	return found, nil
}

// resolveRoot follows root itself when it is a symlink; links further down
// the tree are not followed.
func (r *BackupRepository) resolveRoot(root string) string {
	info, err := os.Lstat(root)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return root
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return root
	}
	return resolved
}

// skipSymlinkedDir reports whether d is a symlink to a directory. WalkDir
// never descends into those, so they are logged instead of vanishing.
func (r *BackupRepository) skipSymlinkedDir(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	r.log.WithField("path", path).Warn("Not following symlinked directory")
	return true
}

func (r *BackupRepository) collect(terminal, segment string) []Candidate {
	base := filepath.Join(terminal, filepath.FromSlash(segment))
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		r.log.WithField("path", base).Debug("Terminal folder has no such subtree")
		return nil
	}

	var files []Candidate
	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.log.WithField("path", path).Warnf("Skipping unreadable entry: %v", err)
			if d != nil && d.IsDir() && path != base {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || r.skipSymlinkedDir(path, d) {
			return nil
		}
		if !r.matchesExtension(d.Name()) {
			r.log.WithField("path", path).Debug("Ignoring file with unexpected extension")
			return nil
		}
		files = append(files, Candidate{Path: path, Terminal: terminal})
		return nil
	})
	return files
}

func (r *BackupRepository) matchesExtension(name string) bool {
	if r.layout.FileExtension == "" {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), r.layout.FileExtension)
}

func checkRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return &PathError{Path: root, Err: ErrPathNotFound}
	}
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &PathError{Path: root, Err: ErrPathNotFound, Cause: err}
		}
		return &PathError{Path: root, Err: ErrPathUnreadable, Cause: err}
	}
	if !info.IsDir() {
		return &PathError{Path: root, Err: ErrPathUnreadable, Cause: errors.New("not a directory")}
	}
	dir, err := os.Open(root)
	if err != nil {
		return &PathError{Path: root, Err: ErrPathUnreadable, Cause: err}
	}
	defer dir.Close()
	if _, err := dir.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return &PathError{Path: root, Err: ErrPathUnreadable, Cause: err}
	}
	return nil
}

func sortNatural(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return utils.NaturalLess(filepath.ToSlash(cs[i].Path), filepath.ToSlash(cs[j].Path))
	})
}
