// Package report renders a reconciliation result for people: a plain-text
// report that is printed and saved as-is, and an xlsx workbook.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"eod-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
)

const rule = "=============================================================================="

// RenderText returns the text report. It contains no timestamps, so the same
// result always renders to the same bytes.
func RenderText(res *models.Result) string {
	var b bytes.Buffer
	_ = WriteText(&b, res)
	return b.String()
}

// WriteText writes the text report to w.
func WriteText(w io.Writer, res *models.Result) error {
	tw := &textWriter{w: w}

	tw.line("SALES RECONCILIATION REPORT")
	tw.line(rule)
	tw.line("Root:      %s", res.RootPath)
	tw.line("Tolerance: %s", res.Tolerance.StringFixed(2))
	tw.line("")

	for _, row := range res.Rows {
		writeRow(tw, row)
	}

	s := res.Summary
	tw.line("SUMMARY")
	tw.line(rule)
	tw.line("Dates processed:        %d", s.TotalDates)
	tw.line("Matched:                %d", s.Matched)
	tw.line("Discrepancies:          %d", s.Discrepant)
	tw.line("Missing EOD report:     %d", s.MissingEod)
	tw.line("Missing receipts:       %d", s.MissingReceipts)
	tw.line("Missing one side:       %d", s.MissingOneSide)
	tw.line("Files scanned:          %d", s.FilesScanned)
	tw.line("Files skipped:          %d", s.FilesSkipped)
	tw.line("")
	tw.line("%-10s %9s %14s %14s %14s", "", "Invoices", "Taxable", "Tax", "Total")
	tw.totals("Receipts", s.ReceiptTotals)
	tw.totals("EOD", s.EodTotals)
	tw.line("")

	if len(res.Skipped) > 0 {
		tw.line("SKIPPED FILES")
		tw.line(rule)
		for _, f := range res.Skipped {
			tw.line("%s [%s] %s", f.Path, f.Kind, f.Reason)
		}
		tw.line("")
	}
	return tw.err
}

func writeRow(tw *textWriter, row models.ReconciliationRow) {
	tw.line("%s  %s", row.Date, row.Status)
	tw.line("%-10s %9s %14s %14s %14s", "", "Invoices", "Taxable", "Tax", "Total")
	tw.aggregate("Receipts", row.Receipts)
	tw.aggregate("EOD", row.Eod)
	if row.Receipts != nil && row.Eod != nil {
		tw.line("%-10s %9s %14s %14s %14s", "Delta", "",
			money(row.DeltaTaxable), money(row.DeltaTax), money(row.DeltaTotal))
	}
	for _, n := range row.Notes {
		tw.line("  * %s", n)
	}
	if row.Status != models.StatusMatch {
		paths := row.PathsToInspect()
		if len(paths) > 0 {
			tw.line("  Files to inspect:")
			for _, p := range paths {
				tw.line("    %s", p)
			}
		}
	}
	tw.line("%s", strings.Repeat("-", len(rule)))
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) line(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *textWriter) aggregate(label string, a *models.DateAggregate) {
	if a == nil {
		t.line("%-10s %9s %14s %14s %14s", label, "-", "-", "-", "-")
		return
	}
	t.line("%-10s %9d %14s %14s %14s", label, a.InvoiceCount,
		money(a.SumTaxable), money(a.SumTax), money(a.SumTotal))
}

func (t *textWriter) totals(label string, tot models.Totals) {
	t.line("%-10s %9d %14s %14s %14s", label, tot.InvoiceCount,
		money(tot.Taxable), money(tot.Tax), money(tot.Total))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// SaveText writes the report to path, replacing any previous file.
func SaveText(path string, res *models.Result) error {
	if err := os.WriteFile(path, []byte(RenderText(res)), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
