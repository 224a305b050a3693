package models

import "github.com/shopspring/decimal"

// EodReport is one End-of-Day summary file.
type EodReport struct {
	Date                 Date            `json:"date"`
	ReportNumber         string          `json:"report_number"`
	TaxableAmount        decimal.Decimal `json:"taxable_amount"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	ReportedInvoiceCount int             `json:"reported_invoice_count"`
	HasInvoiceCount      bool            `json:"-"`
	// LastInvoiceNumber is the DateOfTransmission field, which the terminal
	// fills with the highest invoice number issued so far.
	LastInvoiceNumber string `json:"last_invoice_number,omitempty"`
	SupplierPIN       string `json:"supplier_pin,omitempty"`
	SourcePath        string `json:"source_path"`
	Terminal          string `json:"terminal,omitempty"`
}
