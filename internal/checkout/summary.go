package checkout

import (
	"strconv"
	"strings"

	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/money"
)

const rule = "═══════════════════"

// Summary renders the order confirmation text.
func Summary(items []cart.LineItem) string {
	var b strings.Builder
	b.WriteString("🍽️ ORDER SUMMARY\n")
	b.WriteString(rule + "\n")
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(it.Name)
		b.WriteString(" x")
		b.WriteString(strconv.Itoa(it.Quantity))
		b.WriteString(" - ")
		b.WriteString(money.Format(it.LineTotal()))
	}
	b.WriteString("\n\n")
	b.WriteString(rule + "\n")
	b.WriteString("TOTAL: " + money.Format(cart.Total(items)) + "\n")
	b.WriteString("\n")
	b.WriteString("Thank you for your order! \n")
	b.WriteString("Your delicious meal is being prepared.\n")
	b.WriteString("\n")
	b.WriteString("Would you like to confirm this order?")
	return b.String()
}
