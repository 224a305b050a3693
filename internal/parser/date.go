package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eod-reconciliation-backend/internal/models"
)

var (
	isoDate     = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})$`)
	compactDate = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})(\d{6})?$`)
	numericDate = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)
)

// DateResult is a normalized date. Ambiguous is set when a numeric date was
// read month-first but the day-first reading (Alternate) was also valid.
type DateResult struct {
	Date      models.Date
	Ambiguous bool
	Alternate models.Date
}

// ParseDate normalizes the date formats terminals have been seen to write:
// ISO dates with or without a time part, compact YYYYMMDD[hhmmss], and
// numeric dates with the year last. Year-last dates are read as
// month/day/year unless only the day/month reading is a real date.
func ParseDate(raw string) (DateResult, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DateResult{}, fmt.Errorf("empty date")
	}
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}

	if m := isoDate.FindStringSubmatch(s); m != nil {
		return fixed(raw, atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := compactDate.FindStringSubmatch(s); m != nil {
		return fixed(raw, atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := numericDate.FindStringSubmatch(s); m != nil {
		first, second, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		monthFirst, okMonthFirst := calendarDate(year, first, second)
		dayFirst, okDayFirst := calendarDate(year, second, first)
		switch {
		case okMonthFirst:
			return DateResult{
				Date:      monthFirst,
				Ambiguous: okDayFirst && first != second,
				Alternate: dayFirst,
			}, nil
		case okDayFirst:
			return DateResult{Date: dayFirst}, nil
		}
		return DateResult{}, fmt.Errorf("invalid calendar date %q", raw)
	}
	return DateResult{}, fmt.Errorf("unrecognized date format %q", raw)
}

func fixed(raw string, year, month, day int) (DateResult, error) {
	d, ok := calendarDate(year, month, day)
	if !ok {
		return DateResult{}, fmt.Errorf("invalid calendar date %q", raw)
	}
	return DateResult{Date: d}, nil
}

func calendarDate(year, month, day int) (models.Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return models.Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return models.Date{}, false
	}
	return models.DateOf(t), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
