package report

import (
	"fmt"
	"io"
	"strings"

	"eod-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetReconciliation = "Reconciliation"
	SheetSummary        = "Summary"
	SheetSkipped        = "Skipped"
)

var reconciliationHeaders = []string{
	"Date", "Status",
	"Receipt Count", "Receipt Taxable", "Receipt Tax", "Receipt Total",
	"EOD Count", "EOD Taxable", "EOD Tax", "EOD Total",
	"Delta Taxable", "Delta Tax", "Delta Total",
	"Notes", "Files",
}

// BuildWorkbook lays the result out over three sheets. Amounts are written
// as numbers so they can be summed in the spreadsheet.
func BuildWorkbook(res *models.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetReconciliation); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetSummary, SheetSkipped} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func(*excelize.File, *models.Result, int) error{
		writeReconciliationSheet,
		writeSummarySheet,
		writeSkippedSheet,
	}
	for _, step := range steps {
		if err := step(f, res, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeReconciliationSheet(f *excelize.File, res *models.Result, style int) error {
	sheet := SheetReconciliation
	if err := writeHeaders(f, sheet, reconciliationHeaders, style); err != nil {
		return err
	}

	for i, r := range res.Rows {
		values := []any{r.Date.String(), string(r.Status)}
		values = append(values, aggregateCells(r.Receipts)...)
		values = append(values, aggregateCells(r.Eod)...)
		if r.Receipts != nil && r.Eod != nil {
			values = append(values, number(r.DeltaTaxable), number(r.DeltaTax), number(r.DeltaTotal))
		} else {
			values = append(values, nil, nil, nil)
		}
		values = append(values, strings.Join(r.Notes, "; "), strings.Join(r.PathsToInspect(), "\n"))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	colWidths := []float64{12, 18, 10, 14, 12, 14, 10, 14, 12, 14, 12, 12, 12, 50, 60}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeSummarySheet(f *excelize.File, res *models.Result, style int) error {
	sheet := SheetSummary
	s := res.Summary
	if err := writeHeaders(f, sheet, []string{"Metric", "Value"}, style); err != nil {
		return err
	}
	rows := [][]any{
		{"Root", res.RootPath},
		{"Tolerance", number(res.Tolerance)},
		{"Dates processed", s.TotalDates},
		{"Matched", s.Matched},
		{"Discrepancies", s.Discrepant},
		{"Missing EOD report", s.MissingEod},
		{"Missing receipts", s.MissingReceipts},
		{"Missing one side", s.MissingOneSide},
		{"Files scanned", s.FilesScanned},
		{"Files skipped", s.FilesSkipped},
		{"Receipt invoices", s.ReceiptTotals.InvoiceCount},
		{"Receipt taxable", number(s.ReceiptTotals.Taxable)},
		{"Receipt tax", number(s.ReceiptTotals.Tax)},
		{"Receipt total", number(s.ReceiptTotals.Total)},
		{"EOD reports", s.EodTotals.InvoiceCount},
		{"EOD taxable", number(s.EodTotals.Taxable)},
		{"EOD tax", number(s.EodTotals.Tax)},
		{"EOD total", number(s.EodTotals.Total)},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

func writeSkippedSheet(f *excelize.File, res *models.Result, style int) error {
	sheet := SheetSkipped
	if err := writeHeaders(f, sheet, []string{"Path", "Kind", "Reason"}, style); err != nil {
		return err
	}
	for i, s := range res.Skipped {
		row := []any{s.Path, string(s.Kind), s.Reason}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "C", 40)
}

func aggregateCells(a *models.DateAggregate) []any {
	if a == nil {
		return []any{nil, nil, nil, nil}
	}
	return []any{a.InvoiceCount, number(a.SumTaxable), number(a.SumTax), number(a.SumTotal)}
}

// number converts a money value for a numeric cell. Two-decimal amounts fit
// a float64 without visible loss.
func number(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// WriteExcel streams the workbook to w.
func WriteExcel(w io.Writer, res *models.Result) error {
	f, err := BuildWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func SaveExcel(path string, res *models.Result) error {
	f, err := BuildWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook %s: %w", path, err)
	}
	return nil
}
