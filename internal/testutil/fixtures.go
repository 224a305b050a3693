// Package testutil builds synthetic backup trees for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const (
	TerminalName    = "KRAMW017202207095777"
	ReceiptsSegment = "JSON/Inv"
	ReportsSegment  = "JSON/End"
)

// Tree is a backup root with one or more terminal folders.
type Tree struct {
	Root string
	t    *testing.T
}

func NewTree(t *testing.T) *Tree {
	t.Helper()
	return &Tree{Root: t.TempDir(), t: t}
}

// TerminalDir returns the path of a terminal folder nested under parents.
func (tr *Tree) TerminalDir(parents ...string) string {
	elems := append([]string{tr.Root}, parents...)
	elems = append(elems, TerminalName)
	return filepath.Join(elems...)
}

// ReceiptJSON renders a receipt the way the terminal writes it.
func ReceiptJSON(invoiceNumber int, invoiceDate, taxable, tax, total string) string {
	return fmt.Sprintf(
		`{"TraderSystemInvoiceNumber":"%d","InvoiceDate":"%s","TotalTaxableAmount":"%s","TotalTaxAmount":"%s","TotalInvoiceAmount":"%s","ItemDetails":[]}`,
		invoiceNumber, invoiceDate, taxable, tax, total,
	)
}

// EodJSON renders an EOD summary the way the terminal writes it.
func EodJSON(date string, invoiceCount int, lastInvoice int, taxable, tax, total string) string {
	return fmt.Sprintf(
		`{"REQUEST":{"HASH":"D%s0A004706464FKRAMW017202207095777","EODSummaryHeader":{"DateOfTransmission":"%d","DateOfEODSummary":"%s","PINOfSupplier":"A004706464F","NumberOfInvoicesSentOfTheDay":"%d","TotalTaxableAmountOfTheDay":"%s","TotalTaxAmountOfTheDay":"%s","TotalInoviceAmountOfTheDay":"%s"}}}`,
		date, lastInvoice, date, invoiceCount, taxable, tax, total,
	)
}

// WriteReceipt stores content as receipt number n inside the range folder
// that would hold it.
func (tr *Tree) WriteReceipt(terminal string, n int, content string) string {
	tr.t.Helper()
	return tr.write(filepath.Join(terminal, filepath.FromSlash(ReceiptsSegment)), n, content)
}

func (tr *Tree) WriteEod(terminal string, n int, content string) string {
	tr.t.Helper()
	return tr.write(filepath.Join(terminal, filepath.FromSlash(ReportsSegment)), n, content)
}

// WriteFile stores arbitrary content relative to the root.
func (tr *Tree) WriteFile(rel string, content []byte) string {
	tr.t.Helper()
	path := filepath.Join(tr.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tr.t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		tr.t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func (tr *Tree) write(base string, n int, content string) string {
	lo := ((n-1)/100)*100 + 1
	dir := filepath.Join(base, fmt.Sprintf("%d-%d", lo, lo+99))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tr.t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.txt", n))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tr.t.Fatalf("write %s: %v", path, err)
	}
	return path
}
