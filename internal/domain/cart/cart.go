// Package cart holds the shopping cart state machine.
//
// A Store is the single authority over one client's cart. Every mutation is
// persisted in full and followed by a resync of the derived views before the
// call returns.
package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/foodman/internal/notify"
)

// LineItem is one product entry in the cart.
type LineItem struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Image    string
	Quantity int
}

// LineTotal returns Price * Quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums the line totals of items.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Count sums the quantities of items.
func Count(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Persister loads and saves the full item sequence.
type Persister interface {
	Load(ctx context.Context) []LineItem
	Save(ctx context.Context, items []LineItem) error
}

// Syncer regenerates everything derived from the cart contents.
type Syncer interface {
	Sync(items []LineItem)
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(message string, kind notify.Kind)
}

// Revealer makes the cart panel visible.
type Revealer interface {
	Open()
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

type nopSyncer struct{}

func (nopSyncer) Sync([]LineItem) {}

type nopNotifier struct{}

func (nopNotifier) Notify(string, notify.Kind) {}

type nopRevealer struct{}

func (nopRevealer) Open() {}
