// pkg/rules/coerce.go
package rules

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateFormats lists the accepted calendar date representations, most
// specific first. Bulk imports have historically produced all of these.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
}

// parseDate attempts to parse a raw stored value as a calendar date
func parseDate(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return time.Time{}, errors.New("empty string")
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.New("unrecognized date format")
}

// checkDecimal validates that a decimal value is non-negative and does
// not exceed the declared number of fractional digits.
func checkDecimal(d decimal.Decimal, scale int32) error {
	if d.IsNegative() {
		return errors.New("negative value")
	}
	if d.Exponent() < -scale && !d.Equal(d.Round(scale)) {
		return errors.New("too many fractional digits")
	}
	return nil
}
