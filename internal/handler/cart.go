package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/domain/catalog"
	"github.com/xenking/foodman/internal/ui"
)

// AddItem adds the posted product_id to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	id, err := strconv.ParseInt(r.PostFormValue("product_id"), 10, 64)
	if err != nil {
		badRequest(w, r, errors.Wrap(err, "product_id"))
		return
	}
	p, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		internalError(w, r, "Get product", err)
		return
	}

	s.Cart.AddItem(r.Context(), p.ID, p.Name, p.Price, p.Image)
	h.metrics.itemsAdded.Add(r.Context(), 1)
	zctx.From(r.Context()).Debug("Item added", zap.Int64("product_id", p.ID), zap.Int("count", s.Cart.Count()))
	back(w, r, s)
}

// ItemAction applies an increment, decrement or remove control.
func (h *Handler) ItemAction(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	action, err := ui.ParseAction(r.PathValue("op"), r.PathValue("id"))
	if err != nil {
		badRequest(w, r, err)
		return
	}
	action.Apply(r.Context(), s.Cart)
	h.metrics.cartActions.Add(r.Context(), 1, metric.WithAttributes(attribute.String("op", string(action.Op))))
	back(w, r, s)
}

// ClearPrompt asks whether the cart should be cleared.
func (h *Handler) ClearPrompt(w http.ResponseWriter, r *http.Request) {
	h.session(w, r)
	renderConfirm(w, r, ui.ConfirmData{Prompt: cart.PromptClear, Action: "/cart/clear"})
}

// Clear empties the cart if the prompt was confirmed.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s.Cart.Clear(r.Context(), ui.Answer(confirmed(r))) {
		h.metrics.cartsCleared.Add(r.Context(), 1)
	}
	back(w, r, s)
}
