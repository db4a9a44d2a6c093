// Package handler serves the FoodMan pages and form actions.
//
// Every browser is one client, identified by a cookie. Each request
// resolves the client's session and drives its cart, panel, checkout and
// chat. Form posts answer with a redirect back to the page.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/domain/catalog"
	"github.com/xenking/foodman/internal/session"
	"github.com/xenking/foodman/pkg/httpmiddleware"
)

// CookieName holds the client id.
const CookieName = "foodman_client"

const cookieMaxAge = 365 * 24 * time.Hour

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ChatLimit throttles chat messages per client. Zero Max disables it.
	ChatLimit httpmiddleware.RateLimitConfig
	Meter     metric.MeterProvider
}

// Handler routes page and form requests to client sessions.
type Handler struct {
	catalog  catalog.Repository
	sessions *session.Manager
	chatMW   httpmiddleware.Middleware
	metrics  *metrics
}

// New creates a Handler. The chat limiter forgets idle clients once ctx is
// done.
func New(ctx context.Context, cfg Config, products catalog.Repository, sessions *session.Manager) (*Handler, error) {
	mp := cfg.Meter
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	m, err := newMetrics(mp.Meter("foodman/handler"))
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}

	chatMW := func(next http.Handler) http.Handler { return next }
	if cfg.ChatLimit.Max > 0 {
		limit := cfg.ChatLimit
		if limit.KeyFunc == nil {
			limit.KeyFunc = httpmiddleware.CookieKey(CookieName)
		}
		chatMW = httpmiddleware.RateLimitWithCleanup(ctx, limit)
	}

	return &Handler{
		catalog:  products,
		sessions: sessions,
		chatMW:   chatMW,
		metrics:  m,
	}, nil
}

// Register adds the routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /api/cart", h.CartJSON)

	mux.HandleFunc("POST /cart/items", h.AddItem)
	mux.HandleFunc("POST /cart/items/{id}/{op}", h.ItemAction)
	mux.HandleFunc("GET /cart/clear", h.ClearPrompt)
	mux.HandleFunc("POST /cart/clear", h.Clear)

	mux.HandleFunc("GET /checkout", h.CheckoutPrompt)
	mux.HandleFunc("POST /checkout", h.Checkout)

	mux.HandleFunc("POST /panel/open", h.OpenPanel)
	mux.HandleFunc("POST /panel/close", h.ClosePanel)
	mux.HandleFunc("POST /panel/key", h.Key)

	mux.HandleFunc("POST /chat/open", h.OpenChat)
	mux.HandleFunc("POST /chat/close", h.CloseChat)
	mux.Handle("POST /chat/messages", h.chatMW(http.HandlerFunc(h.ChatMessage)))
}

// session resolves the client of r, issuing a new client cookie if needed.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	id := clientID(r)
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(cookieMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		zctx.From(r.Context()).Debug("New client", zap.String("client_id", id))
	}
	return h.sessions.Get(r.Context(), id)
}

// clientID returns the cookie value if it is a valid UUID.
func clientID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

// back redirects to the page after a form post.
func back(w http.ResponseWriter, r *http.Request, s *session.Session) {
	target := "/"
	if s.Page.TakeScrollToTop() {
		target = "/#top"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Debug("Bad request", zap.Error(err))
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zctx.From(r.Context()).Error(msg, zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
