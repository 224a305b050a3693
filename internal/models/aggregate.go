package models

import (
	"path/filepath"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// DateAggregate holds the per-date totals of one side (receipts or EOD
// reports). It is built once by the aggregation package and then treated as
// read-only.
type DateAggregate struct {
	Date              Date            `json:"date"`
	InvoiceCount      int             `json:"invoice_count"`
	SumTaxable        decimal.Decimal `json:"sum_taxable"`
	SumTax            decimal.Decimal `json:"sum_tax"`
	SumTotal          decimal.Decimal `json:"sum_total"`
	ContributingPaths []string        `json:"contributing_paths"`

	// Identifiers are invoice numbers on the receipt side and report numbers
	// on the EOD side, in the same order as ContributingPaths.
	Identifiers []string `json:"identifiers,omitempty"`
	// Terminals holds the terminal folder of each contributing path.
	Terminals []string `json:"terminals,omitempty"`

	// ReportedInvoiceCount sums NumberOfInvoicesSentOfTheDay over EOD reports.
	ReportedInvoiceCount int  `json:"reported_invoice_count,omitempty"`
	HasReportedCount     bool `json:"-"`
	// LastInvoiceNumbers holds the DateOfTransmission of each EOD report,
	// aligned with ContributingPaths; empty when a report had none.
	LastInvoiceNumbers []string `json:"last_invoice_numbers,omitempty"`
	// InconsistentPaths lists receipts whose total differs from taxable + tax.
	InconsistentPaths []string `json:"inconsistent_paths,omitempty"`
}

// TerminalAt returns the terminal of the i-th contributing path, or "" when
// terminals were not recorded.
func (a *DateAggregate) TerminalAt(i int) string {
	if i < 0 || i >= len(a.Terminals) {
		return ""
	}
	return a.Terminals[i]
}

// MultiTerminal reports whether records from more than one terminal were
// folded into a.
func (a *DateAggregate) MultiTerminal() bool {
	for i := 1; i < len(a.Terminals); i++ {
		if a.Terminals[i] != a.Terminals[0] {
			return true
		}
	}
	return false
}

// DuplicateIdentifiers returns identifiers seen more than once on the same
// terminal, sorted. Each terminal numbers its invoices independently, so the
// same number on two terminals is not a duplicate. When a spans several
// terminals each identifier is prefixed with its terminal folder name.
func (a *DateAggregate) DuplicateIdentifiers() []string {
	type key struct{ terminal, id string }
	seen := make(map[key]int, len(a.Identifiers))
	for i, id := range a.Identifiers {
		if id == "" {
			continue
		}
		seen[key{a.TerminalAt(i), id}]++
	}
	multi := a.MultiTerminal()
	var dups []string
	for k, n := range seen {
		if n < 2 {
			continue
		}
		if multi && k.terminal != "" {
			dups = append(dups, filepath.Base(k.terminal)+":"+k.id)
		} else {
			dups = append(dups, k.id)
		}
	}
	sort.Strings(dups)
	return dups
}

// CountByTerminal returns how many records came from each terminal. Records
// without a known terminal are counted under "".
func (a *DateAggregate) CountByTerminal() map[string]int {
	counts := make(map[string]int)
	if len(a.Terminals) != a.InvoiceCount {
		if a.InvoiceCount > 0 {
			counts[""] = a.InvoiceCount
		}
		return counts
	}
	for _, t := range a.Terminals {
		counts[t]++
	}
	return counts
}

// MaxNumericIdentifierByTerminal returns, per terminal, the largest
// identifier that parses as an integer.
func (a *DateAggregate) MaxNumericIdentifierByTerminal() map[string]int64 {
	max := make(map[string]int64)
	for i, id := range a.Identifiers {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		t := a.TerminalAt(i)
		if cur, ok := max[t]; !ok || n > cur {
			max[t] = n
		}
	}
	return max
}
