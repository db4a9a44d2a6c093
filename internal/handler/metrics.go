package handler

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	itemsAdded   metric.Int64Counter
	cartActions  metric.Int64Counter
	cartsCleared metric.Int64Counter
	orders       metric.Int64Counter
	chatMessages metric.Int64Counter
}

func newMetrics(m metric.Meter) (*metrics, error) {
	var (
		out = new(metrics)
		err error
	)
	for _, c := range []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&out.itemsAdded, "foodman.cart.items_added", "Products added to carts"},
		{&out.cartActions, "foodman.cart.actions", "Quantity and remove actions"},
		{&out.cartsCleared, "foodman.cart.cleared", "Carts cleared by the user"},
		{&out.orders, "foodman.checkout.orders", "Confirmed checkouts"},
		{&out.chatMessages, "foodman.chat.messages", "Chat messages sent"},
	} {
		if *c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, errors.Wrap(err, c.name)
		}
	}
	return out, nil
}
