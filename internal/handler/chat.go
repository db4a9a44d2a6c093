package handler

import "net/http"

func (h *Handler) OpenChat(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Chat.Open()
	back(w, r, s)
}

func (h *Handler) CloseChat(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Chat.Close()
	back(w, r, s)
}

// ChatMessage sends the posted message. The reply shows up on a later
// render.
func (h *Handler) ChatMessage(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s.Chat.Send(r.Context(), r.PostFormValue("message")) {
		h.metrics.chatMessages.Add(r.Context(), 1)
	}
	back(w, r, s)
}
