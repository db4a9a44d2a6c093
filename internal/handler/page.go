package handler

import (
	"bytes"
	"net/http"

	"github.com/xenking/foodman/internal/checkout"
	"github.com/xenking/foodman/internal/ui"
)

// Index renders the menu and the client's cart, toast and chat.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	products, err := h.catalog.List(r.Context())
	if err != nil {
		internalError(w, r, "List products", err)
		return
	}

	view, cartHTML := s.Display.Current()
	data := ui.PageData{
		Products:   ui.Cards(products),
		Cart:       view,
		CartHTML:   cartHTML,
		PanelOpen:  s.Panel.IsOpen(),
		Chat:       ui.ChatView{Open: s.Chat.IsOpen(), Messages: s.Chat.Messages()},
		Processing: s.Checkout.State() == checkout.Processing,
		ScrollTop:  s.Page.TakeScrollToTop(),
	}
	if t, ok := s.Toasts.Current(); ok {
		data.Toast = &t
	}

	var buf bytes.Buffer
	if err := ui.RenderPage(&buf, data); err != nil {
		internalError(w, r, "Render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func renderConfirm(w http.ResponseWriter, r *http.Request, data ui.ConfirmData) {
	var buf bytes.Buffer
	if err := ui.RenderConfirm(&buf, data); err != nil {
		internalError(w, r, "Render confirm", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// confirmed reports whether the confirmation form was answered with yes.
func confirmed(r *http.Request) bool {
	return r.PostFormValue("confirm") == "yes"
}
