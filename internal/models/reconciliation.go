package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusMatch           Status = "MATCH"
	StatusDiscrepancy     Status = "DISCREPANCY"
	StatusMissingEod      Status = "MISSING_EOD"
	StatusMissingReceipts Status = "MISSING_RECEIPTS"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusMatch, StatusDiscrepancy, StatusMissingEod, StatusMissingReceipts:
		return st, true
	}
	return "", false
}

// ReconciliationRow compares both sides for one date. Receipts or Eod is nil
// when that side had no file for the date.
type ReconciliationRow struct {
	Date         Date            `json:"date"`
	Receipts     *DateAggregate  `json:"receipt_aggregate,omitempty"`
	Eod          *DateAggregate  `json:"eod_aggregate,omitempty"`
	Status       Status          `json:"status"`
	DeltaTaxable decimal.Decimal `json:"delta_taxable"`
	DeltaTax     decimal.Decimal `json:"delta_tax"`
	DeltaTotal   decimal.Decimal `json:"delta_total"`
	Notes        []string        `json:"notes"`
}

// PathsToInspect lists EOD paths first, then receipt paths.
func (r ReconciliationRow) PathsToInspect() []string {
	var paths []string
	if r.Eod != nil {
		paths = append(paths, r.Eod.ContributingPaths...)
	}
	if r.Receipts != nil {
		paths = append(paths, r.Receipts.ContributingPaths...)
	}
	return paths
}

type Totals struct {
	InvoiceCount int             `json:"invoice_count"`
	Taxable      decimal.Decimal `json:"taxable"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

func (t Totals) AddAggregate(a *DateAggregate) Totals {
	if a == nil {
		return t
	}
	return Totals{
		InvoiceCount: t.InvoiceCount + a.InvoiceCount,
		Taxable:      t.Taxable.Add(a.SumTaxable),
		Tax:          t.Tax.Add(a.SumTax),
		Total:        t.Total.Add(a.SumTotal),
	}
}

type RunSummary struct {
	TotalDates      int    `json:"total_dates"`
	Matched         int    `json:"matched"`
	Discrepant      int    `json:"discrepant"`
	MissingEod      int    `json:"missing_eod"`
	MissingReceipts int    `json:"missing_receipts"`
	MissingOneSide  int    `json:"missing_one_side"`
	ReceiptTotals   Totals `json:"receipt_totals"`
	EodTotals       Totals `json:"eod_totals"`
	FilesScanned    int    `json:"files_scanned"`
	FilesSkipped    int    `json:"files_skipped"`
}

// Result is everything a run produces for the report formatter.
type Result struct {
	RootPath  string              `json:"root_path"`
	Tolerance decimal.Decimal     `json:"tolerance"`
	Rows      []ReconciliationRow `json:"rows"`
	Summary   RunSummary          `json:"summary"`
	Skipped   []SkippedFile       `json:"skipped"`
}

// ReconciliationBatch tracks one run started over HTTP. Batches live in
// process memory only.
type ReconciliationBatch struct {
	ID             uuid.UUID  `json:"id"`
	RootPath       string     `json:"root_path"`
	TotalFiles     int        `json:"total_files"`
	ProcessedCount int        `json:"processed_count"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Result         *Result    `json:"-"`
}
