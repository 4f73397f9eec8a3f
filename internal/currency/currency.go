// Package currency recognizes US dollar and Cambodian riel amounts in free-form
// chat text and formats amounts for display.
package currency

import (
	"github.com/shopspring/decimal"
)

// Kind identifies the currency of a detected amount.
type Kind int

const (
	// USD is the primary currency, written with "$" and two decimal places.
	USD Kind = iota + 1
	// KHR is the secondary currency (Cambodian riel), written with "៛".
	KHR
)

func (k Kind) String() string {
	switch k {
	case USD:
		return "USD"
	case KHR:
		return "KHR"
	default:
		return "unknown"
	}
}

// Marker records how the currency of a match was established.
type Marker int

const (
	// MarkerSymbol means a "$" or "៛" sign touches the number.
	MarkerSymbol Marker = iota + 1
	// MarkerWord means a currency word (USD, dollars, KHR, riel) sits next to the number.
	MarkerWord
	// MarkerKeyword means the currency was inferred from a payment keyword such as "paid".
	MarkerKeyword
)

func (m Marker) String() string {
	switch m {
	case MarkerSymbol:
		return "symbol"
	case MarkerWord:
		return "word"
	case MarkerKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// Match is a single amount found in a text.
// Start and End are byte offsets of the numeric token.
type Match struct {
	Kind   Kind
	Amount decimal.Decimal
	Marker Marker
	Start  int
	End    int
	Raw    string
}

// Totals sums matches per currency.
func Totals(matches []Match) (usd, khr decimal.Decimal) {
	for _, m := range matches {
		switch m.Kind {
		case USD:
			usd = usd.Add(m.Amount)
		case KHR:
			khr = khr.Add(m.Amount)
		}
	}
	return usd, khr
}
