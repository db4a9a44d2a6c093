// Package money formats prices for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Symbol is the Nigerian Naira sign every displayed price starts with.
const Symbol = "₦"

var printer = message.NewPrinter(language.English)

// Format renders d as "₦" followed by the grouped decimal, e.g. ₦12,000 or
// ₦1,250.75. At most three fraction digits are shown and trailing zeros are
// dropped.
func Format(d decimal.Decimal) string {
	return Symbol + printer.Sprintf("%v", number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(3)))
}
