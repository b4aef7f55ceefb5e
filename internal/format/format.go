// Package format renders amounts and dates for display.
package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// currencyGlyph prefixes every rendered amount.
const currencyGlyph = "₩"

// Amount renders a currency amount with thousands separators, e.g. "₩102,500"
// or "₩102,500.75". Fractional digits appear only when present.
func Amount(d decimal.Decimal) string {
	negative := d.IsNegative()
	abs := d.Abs()

	intPart := humanize.Comma(abs.IntPart())
	frac := abs.Sub(abs.Truncate(0))

	s := currencyGlyph + intPart
	if !frac.IsZero() {
		// StringFixedBank on the fraction yields "0.xy"; keep the digits.
		s += frac.StringFixedBank(2)[1:]
	}
	if negative {
		return "-" + s
	}
	return s
}

// ShortDate renders a calendar date as month/day without zero padding,
// e.g. "1/5".
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

// ISODate renders a calendar date as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
