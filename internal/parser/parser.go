// Package parser turns the text of receipt and EOD summary files into
// records. Terminals write one JSON document per file; damaged files are
// recovered through key/value extraction where possible.
package parser

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"eod-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	receiptDateKeys    = []string{"invoicedate", "salesdt", "receiptdate", "date"}
	receiptNumberKeys  = []string{"tradersysteminvoicenumber", "invoicenumber", "invcno", "receiptnumber"}
	receiptTaxableKeys = []string{"totaltaxableamount", "tottaxblamt", "taxableamount"}
	receiptTaxKeys     = []string{"totaltaxamount", "tottaxamt", "taxamount"}
	receiptTotalKeys   = []string{"totalinvoiceamount", "totamt", "totalamount"}

	eodDateKeys        = []string{"dateofeodsummary", "eoddate", "date"}
	eodNumberKeys      = []string{"reportnumber", "eodnumber", "zreportnumber"}
	eodTaxableKeys     = []string{"totaltaxableamountoftheday", "totaltaxableamount"}
	eodTaxKeys         = []string{"totaltaxamountoftheday", "totaltaxamount"}
	eodTotalKeys       = []string{"totalinoviceamountoftheday", "totalinvoiceamountoftheday", "totalamountoftheday", "totalinvoiceamount"}
	eodCountKeys       = []string{"numberofinvoicessentoftheday", "invoicecount"}
	eodLastInvoiceKeys = []string{"dateoftransmission"}
	eodPINKeys         = []string{"pinofsupplier"}
)

// Record is the result of parsing one file; exactly one of Receipt and Eod
// is set.
type Record struct {
	Kind    models.RecordKind
	Receipt *models.Receipt
	Eod     *models.EodReport
}

type Parser struct {
	log *logrus.Entry
}

func New(log *logrus.Entry) *Parser {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Parser{log: log}
}

// Parse dispatches on the declared record kind. Failures are *ParseError.
func (p *Parser) Parse(kind models.RecordKind, path, content string) (Record, error) {
	switch kind {
	case models.KindReceipt:
		r, err := p.ParseReceipt(path, content)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: kind, Receipt: &r}, nil
	case models.KindEodSummary:
		e, err := p.ParseEodReport(path, content)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: kind, Eod: &e}, nil
	default:
		return Record{}, &ParseError{Path: path, Kind: kind, Reason: fmt.Sprintf("unknown record kind %q", kind)}
	}
}

func (p *Parser) ParseReceipt(path, content string) (models.Receipt, error) {
	kind := models.KindReceipt
	fields, err := p.fields(kind, path, content)
	if err != nil {
		return models.Receipt{}, err
	}
	date, err := p.date(kind, path, fields, receiptDateKeys)
	if err != nil {
		return models.Receipt{}, err
	}
	taxable, tax, total, err := amounts(kind, path, fields, receiptTaxableKeys, receiptTaxKeys, receiptTotalKeys)
	if err != nil {
		return models.Receipt{}, err
	}
	number, _ := fields.text(receiptNumberKeys...)

	return models.Receipt{
		Date:          date,
		InvoiceNumber: number,
		TaxableAmount: taxable,
		TaxAmount:     tax,
		TotalAmount:   total,
		SourcePath:    path,
	}, nil
}

func (p *Parser) ParseEodReport(path, content string) (models.EodReport, error) {
	kind := models.KindEodSummary
	fields, err := p.fields(kind, path, content)
	if err != nil {
		return models.EodReport{}, err
	}
	date, err := p.date(kind, path, fields, eodDateKeys)
	if err != nil {
		return models.EodReport{}, err
	}
	taxable, tax, total, err := amounts(kind, path, fields, eodTaxableKeys, eodTaxKeys, eodTotalKeys)
	if err != nil {
		return models.EodReport{}, err
	}

	report := models.EodReport{
		Date:          date,
		TaxableAmount: taxable,
		TaxAmount:     tax,
		TotalAmount:   total,
		SourcePath:    path,
	}
	if number, ok := fields.text(eodNumberKeys...); ok {
		report.ReportNumber = number
	} else {
		report.ReportNumber = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if raw, ok := fields.text(eodCountKeys...); ok {
		if n, err := strconv.Atoi(raw); err == nil {
			report.ReportedInvoiceCount = n
			report.HasInvoiceCount = true
		} else {
			p.log.WithField("path", path).Warnf("Ignoring non-numeric invoice count %q", raw)
		}
	}
	report.LastInvoiceNumber, _ = fields.text(eodLastInvoiceKeys...)
	report.SupplierPIN, _ = fields.text(eodPINKeys...)
	return report, nil
}

func (p *Parser) fields(kind models.RecordKind, path, content string) (fieldSet, error) {
	clean := Sanitize(content)
	if clean == "" {
		return nil, &ParseError{Path: path, Kind: kind, Reason: "empty file"}
	}

	fields, err := decodeJSON(clean)
	if err == nil {
		return fields, nil
	}
	if strings.HasPrefix(clean, "{") {
		p.log.WithField("path", path).Debugf("Malformed JSON (%v), falling back to key/value extraction", err)
	}

	fields = extractKeyValues(clean)
	if len(fields) == 0 {
		return nil, &ParseError{Path: path, Kind: kind, Reason: "no recognizable fields"}
	}
	return fields, nil
}

func (p *Parser) date(kind models.RecordKind, path string, fields fieldSet, keys []string) (models.Date, error) {
	raw, ok := fields.text(keys...)
	if !ok {
		return models.Date{}, &ParseError{Path: path, Kind: kind, Reason: "missing date field"}
	}
	res, err := ParseDate(raw)
	if err != nil {
		return models.Date{}, &ParseError{Path: path, Kind: kind, Reason: err.Error()}
	}
	if res.Ambiguous {
		p.log.WithFields(logrus.Fields{
			"path":      path,
			"raw":       raw,
			"chosen":    res.Date.String(),
			"alternate": res.Alternate.String(),
		}).Warn("Ambiguous date read as month/day/year")
	}
	return res.Date, nil
}

// amounts requires at least one of the three amount fields; absent ones are
// zero.
func amounts(kind models.RecordKind, path string, fields fieldSet, taxableKeys, taxKeys, totalKeys []string) (taxable, tax, total decimal.Decimal, err error) {
	present := 0
	read := func(keys []string) (decimal.Decimal, error) {
		v, alias, ok := fields.lookup(keys...)
		if !ok {
			return decimal.Zero, nil
		}
		present++
		d, err := ParseAmount(v)
		if err != nil {
			return decimal.Zero, &ParseError{Path: path, Kind: kind, Reason: fmt.Sprintf("invalid %s: %v", alias, err)}
		}
		return d, nil
	}

	if taxable, err = read(taxableKeys); err != nil {
		return
	}
	if tax, err = read(taxKeys); err != nil {
		return
	}
	if total, err = read(totalKeys); err != nil {
		return
	}
	if present == 0 {
		err = &ParseError{Path: path, Kind: kind, Reason: "missing amount fields"}
	}
	return
}
