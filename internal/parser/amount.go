package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw field value into an exact decimal. Strings may
// carry currency symbols or codes and thousands separators ("KES 1,234.50",
// "$45.00", "(12.00)").
func ParseAmount(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case json.Number:
		return decimal.NewFromString(val.String())
	case float64:
		return decimal.NewFromFloat(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case string:
		return parseAmountString(val)
	case nil:
		return decimal.Zero, fmt.Errorf("empty value")
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type %T", v)
	}
}

var (
	amountNumber   = regexp.MustCompile(`(-?)\s*(\d[\d,]*(?:\.\d+)?)`)
	fractionNumber = regexp.MustCompile(`^(-?)\s*(\.\d+)$`)
	anyDigit       = regexp.MustCompile(`\d`)
)

// parseAmountString takes the one number in s and ignores the text around
// it, so the period of a currency token ("Ksh.100", "Rs. 45.00") is never
// read as a decimal point.
func parseAmountString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "("), ")"))
	}

	m := fractionNumber.FindStringSubmatch(s)
	if m == nil {
		loc := amountNumber.FindStringSubmatchIndex(s)
		if loc == nil {
			return decimal.Zero, fmt.Errorf("no digits in %q", s)
		}
		if anyDigit.MatchString(s[loc[1]:]) {
			return decimal.Zero, fmt.Errorf("malformed number %q", s)
		}
		m = []string{s[loc[0]:loc[1]], s[loc[2]:loc[3]], s[loc[4]:loc[5]]}
	}
	if m[1] == "-" {
		neg = !neg
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
