package handler

import (
	"net/http"
	"strconv"

	"github.com/xenking/foodman/internal/ui"
)

// HeaderPreventDefault tells the page to suppress the browser's own
// handling of a key.
const HeaderPreventDefault = "X-Prevent-Default"

func (h *Handler) OpenPanel(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Panel.Open()
	back(w, r, s)
}

func (h *Handler) ClosePanel(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Panel.Close()
	back(w, r, s)
}

// Key forwards a keyboard event to the panel shortcuts.
func (h *Handler) Key(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	ctrl, _ := strconv.ParseBool(r.PostFormValue("ctrl"))
	meta, _ := strconv.ParseBool(r.PostFormValue("meta"))
	if s.Panel.HandleKey(ui.Key{Name: r.PostFormValue("key"), Ctrl: ctrl, Meta: meta}) {
		w.Header().Set(HeaderPreventDefault, "true")
	}
	w.WriteHeader(http.StatusNoContent)
}
