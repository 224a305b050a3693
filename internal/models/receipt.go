package models

import "github.com/shopspring/decimal"

type RecordKind string

const (
	KindReceipt    RecordKind = "receipt"
	KindEodSummary RecordKind = "eod_summary"
)

// Receipt is one invoice file from the receipts subtree.
type Receipt struct {
	Date          Date            `json:"date"`
	InvoiceNumber string          `json:"invoice_number"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SourcePath    string          `json:"source_path"`
	// Terminal is the terminal folder the file was found under.
	Terminal string `json:"terminal,omitempty"`
}

// AmountsConsistent reports whether total equals taxable + tax within tolerance.
func (r Receipt) AmountsConsistent(tolerance decimal.Decimal) bool {
	return r.TaxableAmount.Add(r.TaxAmount).Sub(r.TotalAmount).Abs().LessThanOrEqual(tolerance)
}
