// Package ui derives everything the user sees from cart state: the cart
// panel contents, the checkout button state, the panel visibility and the
// controls that feed user actions back into the cart.
package ui

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/foodman/internal/domain/cart"
)

// Op is a per-item control in the cart panel.
type Op string

const (
	OpIncrement Op = "increment"
	OpDecrement Op = "decrement"
	OpRemove    Op = "remove"
)

// Action is a control bound to one line item. It is rendered into the
// markup and posted back when the control is activated.
type Action struct {
	Op Op
	ID int64
}

// ErrInvalidAction is returned by ParseAction for unknown ops or ids.
var ErrInvalidAction = errors.New("invalid cart action")

// ParseAction rebuilds an Action from the values a rendered control posts.
func ParseAction(op, id string) (Action, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Action{}, errors.Wrapf(ErrInvalidAction, "id %q", id)
	}
	switch a := (Action{Op: Op(op), ID: n}); a.Op {
	case OpIncrement, OpDecrement, OpRemove:
		return a, nil
	default:
		return Action{}, errors.Wrapf(ErrInvalidAction, "op %q", op)
	}
}

// Path is the form target of the control.
func (a Action) Path() string {
	return "/cart/items/" + strconv.FormatInt(a.ID, 10) + "/" + string(a.Op)
}

// Apply runs the action against the store.
func (a Action) Apply(ctx context.Context, s *cart.Store) {
	switch a.Op {
	case OpIncrement:
		s.ChangeQuantity(ctx, a.ID, 1)
	case OpDecrement:
		s.ChangeQuantity(ctx, a.ID, -1)
	case OpRemove:
		s.RemoveItem(ctx, a.ID)
	}
}

// Answer is a confirmation the user already gave, e.g. on a confirmation
// page.
type Answer bool

// Confirm implements cart.Confirmer.
func (a Answer) Confirm(context.Context, string) bool { return bool(a) }
