// Package matching compares per-date receipt aggregates with EOD aggregates.
package matching

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"eod-reconciliation-backend/internal/models"
	"eod-reconciliation-backend/internal/services/aggregation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Engine struct {
	tolerance decimal.Decimal
	log       *logrus.Entry
}

func NewEngine(tolerance decimal.Decimal, log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{tolerance: tolerance, log: log}
}

func (e *Engine) Tolerance() decimal.Decimal {
	return e.tolerance
}

// Reconcile produces one row per date present on either side, ascending.
// The summary's file counters are left for the caller to fill.
func (e *Engine) Reconcile(receipts, eod aggregation.Aggregates) ([]models.ReconciliationRow, models.RunSummary) {
	union := aggregation.Aggregates{}
	for d, a := range receipts {
		union[d] = a
	}
	for d, a := range eod {
		union[d] = a
	}
	dates := union.Dates()

	rows := make([]models.ReconciliationRow, 0, len(dates))
	var summary models.RunSummary
	// highest invoice number seen so far, per terminal
	highest := make(map[string]int64)

	for _, date := range dates {
		rec := receipts[date]
		end := eod[date]

		if rec != nil {
			for t, n := range rec.MaxNumericIdentifierByTerminal() {
				if cur, ok := highest[t]; !ok || n > cur {
					highest[t] = n
				}
			}
		}

		row := e.ClassifyDate(date, rec, end)
		if end != nil {
			row.Notes = append(row.Notes, transmissionNotes(end, highest)...)
		}

		switch row.Status {
		case models.StatusMatch:
			summary.Matched++
		case models.StatusDiscrepancy:
			summary.Discrepant++
		case models.StatusMissingEod:
			summary.MissingEod++
		case models.StatusMissingReceipts:
			summary.MissingReceipts++
		}
		summary.ReceiptTotals = summary.ReceiptTotals.AddAggregate(rec)
		summary.EodTotals = summary.EodTotals.AddAggregate(end)

		if row.Status != models.StatusMatch {
			e.log.WithFields(logrus.Fields{
				"date":   date.String(),
				"status": row.Status,
			}).Debug("Date does not reconcile")
		}
		rows = append(rows, row)
	}

	summary.TotalDates = len(rows)
	summary.MissingOneSide = summary.MissingEod + summary.MissingReceipts
	return rows, summary
}

// ClassifyDate builds the row for a single date. At least one side must be
// non-nil.
func (e *Engine) ClassifyDate(date models.Date, rec, end *models.DateAggregate) models.ReconciliationRow {
	row := models.ReconciliationRow{Date: date, Receipts: rec, Eod: end}

	// 1. One side missing
	switch {
	case end == nil:
		row.Status = models.StatusMissingEod
		row.Notes = append(row.Notes, fmt.Sprintf("no EOD report for %d receipt(s)", rec.InvoiceCount))
		row.Notes = append(row.Notes, receiptNotes(rec)...)
		return row
	case rec == nil:
		row.Status = models.StatusMissingReceipts
		row.Notes = append(row.Notes, "no receipts for this EOD report")
		row.Notes = append(row.Notes, eodNotes(end, nil)...)
		return row
	}

	// 2. Deltas, reported minus observed
	row.DeltaTaxable = end.SumTaxable.Sub(rec.SumTaxable)
	row.DeltaTax = end.SumTax.Sub(rec.SumTax)
	row.DeltaTotal = end.SumTotal.Sub(rec.SumTotal)

	// 3. Categorize
	row.Status = models.StatusMatch
	for _, d := range []struct {
		field string
		delta decimal.Decimal
	}{
		{"taxable", row.DeltaTaxable},
		{"tax", row.DeltaTax},
		{"total", row.DeltaTotal},
	} {
		if d.delta.Abs().GreaterThan(e.tolerance) {
			row.Status = models.StatusDiscrepancy
			row.Notes = append(row.Notes, fmt.Sprintf("%s differs by %s", d.field, signed(d.delta)))
		}
	}

	// 4. Informational checks
	row.Notes = append(row.Notes, eodNotes(end, rec)...)
	row.Notes = append(row.Notes, receiptNotes(rec)...)
	return row
}

func eodNotes(end, rec *models.DateAggregate) []string {
	var notes []string
	// one report per terminal per day is expected
	counts := end.CountByTerminal()
	terminals := make([]string, 0, len(counts))
	for t := range counts {
		terminals = append(terminals, t)
	}
	sort.Strings(terminals)
	for _, t := range terminals {
		n := counts[t]
		if n < 2 {
			continue
		}
		if len(counts) > 1 && t != "" {
			notes = append(notes, fmt.Sprintf("%d EOD reports from terminal %s for this date, totals summed", n, filepath.Base(t)))
		} else {
			notes = append(notes, fmt.Sprintf("%d EOD reports for this date, totals summed", n))
		}
	}
	if rec != nil && end.HasReportedCount && end.ReportedInvoiceCount != rec.InvoiceCount {
		notes = append(notes, fmt.Sprintf("EOD reports %d invoice(s), found %d receipt(s)",
			end.ReportedInvoiceCount, rec.InvoiceCount))
	}
	return notes
}

func receiptNotes(rec *models.DateAggregate) []string {
	var notes []string
	if n := len(rec.InconsistentPaths); n > 0 {
		notes = append(notes, fmt.Sprintf("%d receipt(s) where total != taxable + tax: %s",
			n, strings.Join(rec.InconsistentPaths, ", ")))
	}
	if dups := rec.DuplicateIdentifiers(); len(dups) > 0 {
		notes = append(notes, "duplicate invoice numbers: "+strings.Join(dups, ", "))
	}
	return notes
}

// transmissionNotes checks the DateOfTransmission counter, which each terminal
// sets to the highest invoice number it issued up to the report. A report is
// only compared with receipts from its own terminal.
func transmissionNotes(end *models.DateAggregate, highest map[string]int64) []string {
	var notes []string
	for i, raw := range end.LastInvoiceNumbers {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		t := end.TerminalAt(i)
		h, ok := highest[t]
		if !ok || n == h {
			continue
		}
		note := fmt.Sprintf("DateOfTransmission %d differs from highest invoice number %d", n, h)
		if t != "" && len(highest) > 1 {
			note += " on terminal " + filepath.Base(t)
		}
		notes = append(notes, note)
	}
	return notes
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
