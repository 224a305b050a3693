package aggregation

import (
	"fmt"
	"testing"

	"eod-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tol = decimal.New(1, -2)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func receipt(n int, date models.Date, taxable, tax, total string) models.Receipt {
	return models.Receipt{
		Date:          date,
		InvoiceNumber: fmt.Sprint(n),
		TaxableAmount: dec(taxable),
		TaxAmount:     dec(tax),
		TotalAmount:   dec(total),
		SourcePath:    fmt.Sprintf("/b/KRAMW1/JSON/Inv/1-100/%d.txt", n),
	}
}

func TestAggregateReceipts_SumsPerDate(t *testing.T) {
	d1 := models.NewDate(2023, 1, 5)
	d2 := models.NewDate(2023, 1, 6)
	aggs := AggregateReceipts([]models.Receipt{
		receipt(1, d1, "10.00", "1.60", "11.60"),
		receipt(2, d1, "20.00", "3.20", "23.20"),
		receipt(3, d1, "8.62", "1.38", "10.00"),
		receipt(4, d2, "5.00", "0.80", "5.80"),
	}, tol)

	require.Len(t, aggs, 2)
	assert.Equal(t, []models.Date{d1, d2}, aggs.Dates())

	a := aggs[d1]
	assert.Equal(t, 3, a.InvoiceCount)
	assert.True(t, a.SumTaxable.Equal(dec("38.62")))
	assert.True(t, a.SumTax.Equal(dec("6.18")))
	assert.True(t, a.SumTotal.Equal(dec("44.80")))
	assert.Equal(t, []string{"1", "2", "3"}, a.Identifiers)
	assert.Len(t, a.ContributingPaths, 3)
	assert.Empty(t, a.InconsistentPaths)
}

func TestAggregateReceipts_FlagsInconsistentTotals(t *testing.T) {
	d := models.NewDate(2023, 1, 5)
	bad := receipt(2, d, "10.00", "1.60", "12.00")
	aggs := AggregateReceipts([]models.Receipt{receipt(1, d, "10.00", "1.60", "11.60"), bad}, tol)

	assert.Equal(t, []string{bad.SourcePath}, aggs[d].InconsistentPaths)
}

func TestAggregateEodReports(t *testing.T) {
	d := models.NewDate(2023, 1, 5)
	aggs := AggregateEodReports([]models.EodReport{
		{Date: d, ReportNumber: "7", TaxableAmount: dec("30"), TaxAmount: dec("4.8"), TotalAmount: dec("34.8"),
			ReportedInvoiceCount: 2, HasInvoiceCount: true, LastInvoiceNumber: "12", SourcePath: "/e/7.txt"},
		{Date: d, ReportNumber: "8", TaxableAmount: dec("1"), TotalAmount: dec("1"), SourcePath: "/e/8.txt"},
	})

	a := aggs[d]
	require.NotNil(t, a)
	assert.Equal(t, 2, a.InvoiceCount)
	assert.True(t, a.SumTotal.Equal(dec("35.8")))
	assert.True(t, a.HasReportedCount)
	assert.Equal(t, 2, a.ReportedInvoiceCount)
	assert.Equal(t, []string{"12", ""}, a.LastInvoiceNumbers, "one entry per report")
	assert.Equal(t, []string{"7", "8"}, a.Identifiers)
}

func TestBuilder_PanicsAfterBuild(t *testing.T) {
	b := NewBuilder(tol)
	b.Build()
	assert.Panics(t, func() { b.AddReceipt(receipt(1, models.NewDate(2023, 1, 1), "1", "0", "1")) })
}

func TestMerge_OrderIndependent(t *testing.T) {
	d := models.NewDate(2023, 2, 1)
	var receipts []models.Receipt
	for i := 1; i <= 12; i++ {
		receipts = append(receipts, receipt(i, d, fmt.Sprintf("%d.10", i), "0.33", fmt.Sprintf("%d.43", i)))
	}
	whole := AggregateReceipts(receipts, tol)

	// Split into uneven partitions and merge them in reverse.
	p1 := AggregateReceipts(receipts[8:], tol)
	p2 := AggregateReceipts(receipts[:3], tol)
	p3 := AggregateReceipts(receipts[3:8], tol)
	merged := Merge(p1, p2, p3)
	again := Merge(p3, p1, p2)

	for _, got := range []Aggregates{merged, again} {
		a := got[d]
		require.NotNil(t, a)
		assert.Equal(t, whole[d].InvoiceCount, a.InvoiceCount)
		assert.True(t, whole[d].SumTaxable.Equal(a.SumTaxable))
		assert.True(t, whole[d].SumTax.Equal(a.SumTax))
		assert.True(t, whole[d].SumTotal.Equal(a.SumTotal))
		assert.Equal(t, whole[d].ContributingPaths, a.ContributingPaths)
		assert.Equal(t, whole[d].Identifiers, a.Identifiers)
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	d := models.NewDate(2023, 2, 1)
	part := AggregateReceipts([]models.Receipt{receipt(1, d, "1", "0", "1")}, tol)
	merged := Merge(part)

	merged[d].ContributingPaths[0] = "changed"
	assert.NotEqual(t, "changed", part[d].ContributingPaths[0])
}

func TestMerge_KeepsTerminalsAligned(t *testing.T) {
	d := models.NewDate(2023, 2, 1)
	eod := func(terminal, last string) models.EodReport {
		return models.EodReport{Date: d, ReportNumber: last, TotalAmount: dec("1"), LastInvoiceNumber: last,
			Terminal: terminal, SourcePath: terminal + "/JSON/End/1-100/1.txt"}
	}
	// /b/T2 sorts after /b/T10 only when compared as plain strings.
	p1 := AggregateEodReports([]models.EodReport{eod("/b/T10", "40")})
	p2 := AggregateEodReports([]models.EodReport{eod("/b/T2", "7"), eod("/b/T1", "")})

	a := Merge(p1, p2)[d]
	require.NotNil(t, a)
	assert.Equal(t, []string{"/b/T1", "/b/T2", "/b/T10"}, a.Terminals)
	assert.Equal(t, []string{"", "7", "40"}, a.LastInvoiceNumbers)
	assert.Equal(t, []string{"", "7", "40"}, a.Identifiers)
}

func TestMerge_PadsUnrecordedTerminals(t *testing.T) {
	d := models.NewDate(2023, 2, 1)
	withTerminal := receipt(2, d, "1", "0", "1")
	withTerminal.Terminal = "/b/KRAMW1"
	legacy := &models.DateAggregate{Date: d, InvoiceCount: 1, ContributingPaths: []string{"/b/KRAMW1/JSON/Inv/1-100/1.txt"}}

	a := Merge(Aggregates{d: legacy}, AggregateReceipts([]models.Receipt{withTerminal}, tol))[d]
	assert.Equal(t, []string{"", "/b/KRAMW1"}, a.Terminals)
	assert.Equal(t, []string{"", "2"}, a.Identifiers)
	assert.Empty(t, a.LastInvoiceNumbers)
}
