package ui

import (
	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/money"
)

// FallbackImage replaces an item image that fails to load.
const FallbackImage = "https://via.placeholder.com/80?text=Food"

// Empty-state copy.
const (
	EmptyTitle = "Your cart is empty"
	EmptyHint  = "Add some delicious items to get started!"
)

// View is the render model of the cart panel.
type View struct {
	Count    int
	Total    string
	Empty    bool
	Items    []ItemView
	Checkout CheckoutButton
}

// ItemView is one rendered cart row.
type ItemView struct {
	ID        int64
	Name      string
	Image     string
	Fallback  string
	Price     string
	LineTotal string
	Quantity  int
	Decrement Action
	Increment Action
	Remove    Action
}

// CheckoutButton is the state of the checkout control.
type CheckoutButton struct {
	Enabled bool
	Opacity string
	Cursor  string
}

// Build derives the View from the cart contents.
func Build(items []cart.LineItem) View {
	v := View{
		Count: cart.Count(items),
		Total: money.Format(cart.Total(items)),
		Empty: len(items) == 0,
		Items: make([]ItemView, 0, len(items)),
	}
	for _, it := range items {
		v.Items = append(v.Items, ItemView{
			ID:        it.ID,
			Name:      it.Name,
			Image:     it.Image,
			Fallback:  FallbackImage,
			Price:     money.Format(it.Price),
			LineTotal: money.Format(it.LineTotal()),
			Quantity:  it.Quantity,
			Decrement: Action{Op: OpDecrement, ID: it.ID},
			Increment: Action{Op: OpIncrement, ID: it.ID},
			Remove:    Action{Op: OpRemove, ID: it.ID},
		})
	}
	if v.Empty {
		v.Checkout = CheckoutButton{Enabled: false, Opacity: "0.5", Cursor: "not-allowed"}
	} else {
		v.Checkout = CheckoutButton{Enabled: true, Opacity: "1", Cursor: "pointer"}
	}
	return v
}
