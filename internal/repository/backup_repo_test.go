package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"eod-reconciliation-backend/internal/testutil"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo() *BackupRepository {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewBackupRepository(Layout{
		MarkerToken:     "KRAMW",
		ReceiptsSegment: testutil.ReceiptsSegment,
		ReportsSegment:  testutil.ReportsSegment,
		FileExtension:   ".txt",
	}, logrus.NewEntry(l))
}

func TestLocate_FindsRecordsUnderNestedTerminals(t *testing.T) {
	tree := testutil.NewTree(t)
	shallow := tree.TerminalDir("shop-a")
	deep := filepath.Join(tree.Root, "region", "branch", "2024", "till-KRAMW0002")

	r1 := tree.WriteReceipt(shallow, 1, "{}")
	r2 := tree.WriteReceipt(deep, 150, "{}")
	e1 := tree.WriteEod(shallow, 3, "{}")

	// noise that must be ignored
	tree.WriteFile("shop-a/"+testutil.TerminalName+"/JSON/Inv/1-100/readme.md", []byte("x"))
	tree.WriteFile("unrelated/JSON/Inv/1-100/7.txt", []byte("{}"))
	tree.WriteFile("shop-a/"+testutil.TerminalName+"/JSON/Other/1-100/8.txt", []byte("{}"))

	got, err := newTestRepo().Locate(tree.Root)
	require.NoError(t, err)

	assert.Len(t, got.Terminals, 2)
	assert.ElementsMatch(t, []string{r1, r2}, Paths(got.Receipts))
	assert.Equal(t, []string{e1}, Paths(got.Reports))
	assert.Equal(t, 3, got.Total())
}

func TestLocate_AttachesTerminal(t *testing.T) {
	tree := testutil.NewTree(t)
	a := tree.TerminalDir("shop-a")
	b := tree.TerminalDir("shop-b")
	ra := tree.WriteReceipt(a, 1, "{}")
	rb := tree.WriteReceipt(b, 1, "{}")
	eb := tree.WriteEod(b, 1, "{}")

	got, err := newTestRepo().Locate(tree.Root)
	require.NoError(t, err)

	assert.Equal(t, []Candidate{{Path: ra, Terminal: a}, {Path: rb, Terminal: b}}, got.Receipts)
	assert.Equal(t, []Candidate{{Path: eb, Terminal: b}}, got.Reports)
}

func TestLocate_WarnsOnSymlinkedDirectories(t *testing.T) {
	tree := testutil.NewTree(t)
	target := tree.TerminalDir("elsewhere")
	tree.WriteReceipt(target, 1, "{}")
	terminal := tree.TerminalDir("shop-a")
	tree.WriteReceipt(terminal, 2, "{}")

	linkedTerminal := filepath.Join(tree.Root, "mirror-"+testutil.TerminalName)
	linkedRange := filepath.Join(terminal, filepath.FromSlash(testutil.ReceiptsSegment), "linked")
	if err := os.Symlink(target, linkedTerminal); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(target, filepath.FromSlash(testutil.ReceiptsSegment)), linkedRange))

	l, hook := logtest.NewNullLogger()
	repo := NewBackupRepository(newTestRepo().Layout(), logrus.NewEntry(l))

	got, err := repo.Locate(tree.Root)
	require.NoError(t, err)
	assert.Len(t, got.Receipts, 2, "files reached only through a link are not collected")

	var warned []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Not following symlinked directory" {
			warned = append(warned, e.Data["path"].(string))
		}
	}
	assert.ElementsMatch(t, []string{linkedTerminal, linkedRange}, warned)
}

func TestLocate_SymlinkedRoot(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.WriteReceipt(tree.TerminalDir(), 1, "{}")
	link := filepath.Join(t.TempDir(), "backup")
	if err := os.Symlink(tree.Root, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := newTestRepo().Locate(link)
	require.NoError(t, err)
	assert.Len(t, got.Receipts, 1)
}

func TestLocate_RootIsTerminal(t *testing.T) {
	tree := testutil.NewTree(t)
	terminal := tree.TerminalDir()
	path := tree.WriteReceipt(terminal, 1, "{}")

	got, err := newTestRepo().Locate(terminal)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, Paths(got.Receipts))
	assert.Empty(t, got.Reports)
}

func TestLocate_NaturalOrder(t *testing.T) {
	tree := testutil.NewTree(t)
	terminal := tree.TerminalDir()
	var want []string
	for _, n := range []int{1, 2, 10, 99, 100, 101, 250} {
		want = append(want, tree.WriteReceipt(terminal, n, "{}"))
	}

	got, err := newTestRepo().Locate(tree.Root)
	require.NoError(t, err)
	assert.Equal(t, want, Paths(got.Receipts))
}

func TestLocate_TerminalWithoutSubtrees(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.WriteFile(testutil.TerminalName+"/notes.txt", []byte("hello"))

	got, err := newTestRepo().Locate(tree.Root)
	require.NoError(t, err)
	assert.Len(t, got.Terminals, 1)
	assert.Zero(t, got.Total())
}

func TestLocate_InvalidRoot(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.Locate(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathNotFound))
	var pathErr *PathError
	require.True(t, errors.As(err, &pathErr))
	assert.Contains(t, pathErr.Path, "missing")

	_, err = repo.Locate("")
	assert.True(t, errors.Is(err, ErrPathNotFound))

	tree := testutil.NewTree(t)
	file := tree.WriteFile("plain.txt", []byte("x"))
	_, err = repo.Locate(file)
	assert.True(t, errors.Is(err, ErrPathUnreadable))
}

func TestReadRecordFile_Latin1Fallback(t *testing.T) {
	tree := testutil.NewTree(t)
	// 0xA3 is the pound sign in ISO-8859-1 and invalid on its own in UTF-8.
	path := tree.WriteFile("latin1.txt", []byte{'{', '"', 'a', '"', ':', '"', 0xA3, '5', '"', '}'})

	got, err := newTestRepo().ReadRecordFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"£5"}`, got)
}

func TestReadRecordFile_Missing(t *testing.T) {
	_, err := newTestRepo().ReadRecordFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
