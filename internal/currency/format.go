package currency

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount as "$1,200.25".
func FormatUSD(d decimal.Decimal) string {
	return "$" + Grouped(d, maxUSDFraction)
}

// FormatKHR renders an amount as "៛25,000", keeping any fractional digits the
// amount carries.
func FormatKHR(d decimal.Decimal) string {
	return string(rielSign) + Grouped(d, Places(d))
}

// Format renders d in the notation of kind.
func Format(kind Kind, d decimal.Decimal) string {
	if kind == KHR {
		return FormatKHR(d)
	}
	return FormatUSD(d)
}

// Places returns the number of significant fractional digits in d, ignoring
// trailing zeros.
func Places(d decimal.Decimal) int32 {
	s := d.String()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return int32(len(s) - i - 1)
	}
	return 0
}

// Grouped formats d with the given number of decimal places and thousands
// separators in the integer part.
func Grouped(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return s
	}
	out := humanize.Comma(n)
	if hasFrac {
		out += "." + frac
	}
	return out
}
