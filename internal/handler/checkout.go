package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/checkout"
	"github.com/xenking/foodman/internal/ui"
)

// CheckoutPrompt shows the order summary. An empty cart goes back to the
// page, where the error toast is shown.
func (h *Handler) CheckoutPrompt(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	summary, err := s.Checkout.Review(r.Context())
	if err != nil {
		back(w, r, s)
		return
	}
	renderConfirm(w, r, ui.ConfirmData{Prompt: summary, Action: "/checkout"})
}

// Checkout places the order if the summary was confirmed. The cart is
// emptied in the background once processing finishes.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	_, err := s.Checkout.Checkout(r.Context(), ui.Answer(confirmed(r)))
	switch {
	case err == nil:
		h.metrics.orders.Add(r.Context(), 1)
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrDeclined):
	case errors.Is(err, checkout.ErrInProgress):
		zctx.From(r.Context()).Debug("Checkout already in progress")
	default:
		zctx.From(r.Context()).Error("Checkout", zap.Error(err))
	}
	back(w, r, s)
}
