// Package aggregation folds parsed records into one DateAggregate per date.
package aggregation

import (
	"path/filepath"
	"sort"

	"eod-reconciliation-backend/internal/models"
	"eod-reconciliation-backend/internal/utils"

	"github.com/shopspring/decimal"
)

// Aggregates maps each date to its totals. A map returned by this package is
// never mutated afterwards.
type Aggregates map[models.Date]*models.DateAggregate

// Dates returns the keys in ascending order.
func (a Aggregates) Dates() []models.Date {
	dates := make([]models.Date, 0, len(a))
	for d := range a {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Builder accumulates records during the single construction phase.
type Builder struct {
	aggs      Aggregates
	tolerance decimal.Decimal
	built     bool
}

// NewBuilder takes the tolerance used to flag receipts whose total differs
// from taxable + tax.
func NewBuilder(tolerance decimal.Decimal) *Builder {
	return &Builder{aggs: Aggregates{}, tolerance: tolerance}
}

func (b *Builder) entry(date models.Date) *models.DateAggregate {
	if b.built {
		panic("aggregation: builder used after Build")
	}
	agg, ok := b.aggs[date]
	if !ok {
		agg = &models.DateAggregate{Date: date}
		b.aggs[date] = agg
	}
	return agg
}

func (b *Builder) AddReceipt(r models.Receipt) {
	agg := b.entry(r.Date)
	agg.InvoiceCount++
	agg.SumTaxable = agg.SumTaxable.Add(r.TaxableAmount)
	agg.SumTax = agg.SumTax.Add(r.TaxAmount)
	agg.SumTotal = agg.SumTotal.Add(r.TotalAmount)
	agg.ContributingPaths = append(agg.ContributingPaths, r.SourcePath)
	agg.Identifiers = append(agg.Identifiers, r.InvoiceNumber)
	agg.Terminals = append(agg.Terminals, r.Terminal)
	if !r.AmountsConsistent(b.tolerance) {
		agg.InconsistentPaths = append(agg.InconsistentPaths, r.SourcePath)
	}
}

func (b *Builder) AddEodReport(e models.EodReport) {
	agg := b.entry(e.Date)
	agg.InvoiceCount++
	agg.SumTaxable = agg.SumTaxable.Add(e.TaxableAmount)
	agg.SumTax = agg.SumTax.Add(e.TaxAmount)
	agg.SumTotal = agg.SumTotal.Add(e.TotalAmount)
	agg.ContributingPaths = append(agg.ContributingPaths, e.SourcePath)
	agg.Identifiers = append(agg.Identifiers, e.ReportNumber)
	agg.Terminals = append(agg.Terminals, e.Terminal)
	agg.LastInvoiceNumbers = append(agg.LastInvoiceNumbers, e.LastInvoiceNumber)
	if e.HasInvoiceCount {
		agg.ReportedInvoiceCount += e.ReportedInvoiceCount
		agg.HasReportedCount = true
	}
}

// Build freezes the builder and returns its aggregates.
func (b *Builder) Build() Aggregates {
	b.built = true
	return b.aggs
}

func AggregateReceipts(receipts []models.Receipt, tolerance decimal.Decimal) Aggregates {
	b := NewBuilder(tolerance)
	for _, r := range receipts {
		b.AddReceipt(r)
	}
	return b.Build()
}

func AggregateEodReports(reports []models.EodReport) Aggregates {
	b := NewBuilder(decimal.Zero)
	for _, e := range reports {
		b.AddEodReport(e)
	}
	return b.Build()
}

// Merge combines partial aggregates built from disjoint record sets. Sums and
// counts do not depend on argument order; path lists are re-sorted by path
// so the result is the same however the records were partitioned.
func Merge(parts ...Aggregates) Aggregates {
	out := Aggregates{}
	for _, part := range parts {
		for date, src := range part {
			dst, ok := out[date]
			if !ok {
				dst = &models.DateAggregate{Date: date}
				out[date] = dst
			}
			n := len(dst.ContributingPaths)
			dst.Identifiers = appendAligned(dst.Identifiers, n, src.Identifiers, len(src.ContributingPaths))
			dst.Terminals = appendAligned(dst.Terminals, n, src.Terminals, len(src.ContributingPaths))
			dst.LastInvoiceNumbers = appendAligned(dst.LastInvoiceNumbers, n, src.LastInvoiceNumbers, len(src.ContributingPaths))
			dst.InvoiceCount += src.InvoiceCount
			dst.SumTaxable = dst.SumTaxable.Add(src.SumTaxable)
			dst.SumTax = dst.SumTax.Add(src.SumTax)
			dst.SumTotal = dst.SumTotal.Add(src.SumTotal)
			dst.ContributingPaths = append(dst.ContributingPaths, src.ContributingPaths...)
			dst.ReportedInvoiceCount += src.ReportedInvoiceCount
			dst.HasReportedCount = dst.HasReportedCount || src.HasReportedCount
			dst.InconsistentPaths = append(dst.InconsistentPaths, src.InconsistentPaths...)
		}
	}
	for _, agg := range out {
		sortByPath(agg)
	}
	return out
}

// appendAligned appends src, which has one entry per each of srcN paths, to
// dst, which has one per each of dstN. A side that was not recorded is padded
// with empty entries so positions keep matching ContributingPaths.
func appendAligned(dst []string, dstN int, src []string, srcN int) []string {
	if len(dst) == 0 && len(src) == 0 {
		return dst
	}
	for len(dst) < dstN {
		dst = append(dst, "")
	}
	dst = append(dst, src...)
	for i := len(src); i < srcN; i++ {
		dst = append(dst, "")
	}
	return dst
}

// sortByPath orders ContributingPaths naturally and applies the same
// permutation to every slice aligned with them.
func sortByPath(agg *models.DateAggregate) {
	idx := make([]int, len(agg.ContributingPaths))
	for i := range idx {
		idx[i] = i
	}
	less := func(a, b string) bool {
		return utils.NaturalLess(filepath.ToSlash(a), filepath.ToSlash(b))
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(agg.ContributingPaths[idx[i]], agg.ContributingPaths[idx[j]])
	})

	permute := func(s []string) []string {
		if len(s) != len(idx) {
			return s
		}
		out := make([]string, len(idx))
		for i, k := range idx {
			out[i] = s[k]
		}
		return out
	}
	agg.Identifiers = permute(agg.Identifiers)
	agg.Terminals = permute(agg.Terminals)
	agg.LastInvoiceNumbers = permute(agg.LastInvoiceNumbers)
	agg.ContributingPaths = permute(agg.ContributingPaths)
	sort.SliceStable(agg.InconsistentPaths, func(i, j int) bool {
		return less(agg.InconsistentPaths[i], agg.InconsistentPaths[j])
	})
}
