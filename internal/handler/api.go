package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/session"
)

// CartJSON returns the client's cart and page state.
func (h *Handler) CartJSON(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(encodeState(s))
}

func encodeState(s *session.Session) []byte {
	items := s.Cart.Items()

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("count")
	e.Int(cart.Count(items))
	e.FieldStart("total")
	encodeDecimal(&e, cart.Total(items))

	e.FieldStart("items")
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(it.ID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("price")
		encodeDecimal(&e, it.Price)
		e.FieldStart("image")
		e.Str(it.Image)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("lineTotal")
		encodeDecimal(&e, it.LineTotal())
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("panelOpen")
	e.Bool(s.Panel.IsOpen())
	e.FieldStart("checkout")
	e.Str(s.Checkout.State().String())

	e.FieldStart("notification")
	if t, ok := s.Toasts.Current(); ok {
		e.ObjStart()
		e.FieldStart("id")
		e.UInt64(t.ID)
		e.FieldStart("message")
		e.Str(t.Message)
		e.FieldStart("kind")
		e.Str(string(t.Kind))
		e.FieldStart("icon")
		e.Str(t.Kind.Icon())
		e.FieldStart("visible")
		e.Bool(t.Visible)
		e.ObjEnd()
	} else {
		e.Null()
	}
	e.ObjEnd()
	return e.Bytes()
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}
