package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/foodman/db"
	"github.com/xenking/foodman/internal/checkout"
	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/domain/catalog"
	"github.com/xenking/foodman/internal/notify"
	"github.com/xenking/foodman/internal/session"
	"github.com/xenking/foodman/internal/storage"
	"github.com/xenking/foodman/pkg/httpmiddleware"
)

const client = "3f2b8c1e-6a4d-4e2f-9b7a-1c5d8e9f0a2b"

type stubChat struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubChat) Send(_ context.Context, _, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, message)
	return "reply to " + message, nil
}

type env struct {
	mux      *http.ServeMux
	clock    *clockwork.FakeClock
	kv       *storage.Memory
	sessions *session.Manager
	chat     *stubChat
}

func newEnv(t *testing.T, limit httpmiddleware.RateLimitConfig) *env {
	t.Helper()
	products, err := catalog.ParseMenu(db.Menu)
	require.NoError(t, err)
	menu, err := catalog.NewStatic(products)
	require.NoError(t, err)

	e := &env{
		mux:   http.NewServeMux(),
		clock: clockwork.NewFakeClock(),
		kv:    storage.NewMemory(),
		chat:  &stubChat{},
	}
	e.sessions = session.NewManager(e.kv, e.chat, session.Config{}, e.clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h, err := New(ctx, Config{ChatLimit: limit}, menu, e.sessions)
	require.NoError(t, err)
	h.Register(e.mux)
	return e
}

func (e *env) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.AddCookie(&http.Cookie{Name: CookieName, Value: client})
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)
	return w
}

func (e *env) session() *session.Session {
	return e.sessions.Get(context.Background(), client)
}

func (e *env) add(t *testing.T, id string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/cart/items", url.Values{"product_id": {id}})
	require.Equal(t, http.StatusSeeOther, w.Code)
}

func TestNewClientGetsCookie(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})

	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Len(t, cookies[0].Value, 36)
	assert.True(t, cookies[0].HttpOnly)

	// A cookie that is not a UUID is replaced.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "../etc"})
	w = httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)
	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "../etc", w.Result().Cookies()[0].Value)
}

func TestIndex(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})

	w := e.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "Jollof Rice")
	assert.Contains(t, body, "₦2,500")
	assert.Contains(t, body, "Your cart is empty")
	assert.Empty(t, w.Result().Cookies(), "known client keeps its cookie")

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/nope", nil).Code)
}

func TestAddItem(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})

	w := e.do(t, http.MethodPost, "/cart/items", url.Values{"product_id": {"1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	s := e.session()
	assert.Equal(t, 1, s.Cart.Count())
	assert.True(t, s.Panel.IsOpen())
	toast, ok := s.Toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "Jollof Rice added to cart!", toast.Message)

	e.add(t, "1")
	assert.Equal(t, 2, s.Cart.Count())
	assert.Equal(t, 1, s.Cart.Len())

	page := e.do(t, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, page, "₦5,000")
	assert.Contains(t, page, "cart-sidebar active")
	assert.Contains(t, page, "Jollof Rice added to cart!")
}

func TestAddItem_Errors(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/cart/items", url.Values{"product_id": {"999"}}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/cart/items", url.Values{"product_id": {"abc"}}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/cart/items", url.Values{}).Code)
	assert.Equal(t, 0, e.session().Cart.Len())
}

func TestItemAction(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})
	e.add(t, "1")
	s := e.session()

	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/cart/items/1/increment", nil).Code)
	assert.Equal(t, 2, s.Cart.Count())

	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/cart/items/1/decrement", nil).Code)
	assert.Equal(t, 1, s.Cart.Count())

	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/cart/items/1/decrement", nil).Code)
	assert.Equal(t, 0, s.Cart.Len())
	toast, _ := s.Toasts.Current()
	assert.Equal(t, cart.MsgRemoved, toast.Message)

	e.add(t, "2")
	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/cart/items/2/remove", nil).Code)
	assert.Equal(t, 0, s.Cart.Len())

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/cart/items/1/explode", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/cart/items/x/remove", nil).Code)
}

func TestClear(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})
	e.add(t, "1")
	s := e.session()

	w := e.do(t, http.MethodGet, "/cart/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), cart.PromptClear)

	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/cart/clear", url.Values{"confirm": {"no"}}).Code)
	assert.Equal(t, 1, s.Cart.Len())

	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/cart/clear", url.Values{"confirm": {"yes"}}).Code)
	assert.Equal(t, 0, s.Cart.Len())
	toast, _ := s.Toasts.Current()
	assert.Equal(t, cart.MsgCleared, toast.Message)
}

func TestCheckout_Empty(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})

	w := e.do(t, http.MethodGet, "/checkout", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	toast, ok := e.session().Toasts.Current()
	require.True(t, ok)
	assert.Equal(t, checkout.MsgEmpty, toast.Message)
	assert.Equal(t, notify.Error, toast.Kind)
}

func TestCheckout(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})
	e.add(t, "1")
	e.add(t, "1")
	s := e.session()

	w := e.do(t, http.MethodGet, "/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jollof Rice x2 - ₦5,000")
	assert.Contains(t, w.Body.String(), "TOTAL: ₦5,000")

	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/checkout", url.Values{"confirm": {"no"}}).Code)
	assert.Equal(t, checkout.Idle, s.Checkout.State())
	assert.Equal(t, 2, s.Cart.Count())

	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/checkout", url.Values{"confirm": {"yes"}}).Code)
	assert.Equal(t, checkout.Processing, s.Checkout.State())
	assert.Contains(t, e.do(t, http.MethodGet, "/", nil).Body.String(), `http-equiv="refresh"`)

	e.clock.Advance(checkout.DefaultDelay)
	require.Eventually(t, func() bool { return s.Checkout.State() == checkout.Idle }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Cart.Len())
	assert.False(t, s.Panel.IsOpen())

	w = e.do(t, http.MethodPost, "/panel/close", nil)
	assert.Equal(t, "/#top", w.Header().Get("Location"))
	assert.Equal(t, "/", e.do(t, http.MethodPost, "/panel/close", nil).Header().Get("Location"))
}

func TestPanel(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})
	s := e.session()

	e.do(t, http.MethodPost, "/panel/open", nil)
	assert.True(t, s.Panel.IsOpen())
	e.do(t, http.MethodPost, "/panel/close", nil)
	assert.False(t, s.Panel.IsOpen())

	w := e.do(t, http.MethodPost, "/panel/key", url.Values{"key": {"k"}, "ctrl": {"true"}, "meta": {"false"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "true", w.Header().Get(HeaderPreventDefault))
	assert.True(t, s.Panel.IsOpen())

	w = e.do(t, http.MethodPost, "/panel/key", url.Values{"key": {"Escape"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get(HeaderPreventDefault))
	assert.False(t, s.Panel.IsOpen())
}

func TestChat(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})
	s := e.session()

	e.do(t, http.MethodPost, "/chat/open", nil)
	assert.True(t, s.Chat.IsOpen())

	require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/chat/messages", url.Values{"message": {"Is suya spicy?"}}).Code)
	e.do(t, http.MethodPost, "/chat/messages", url.Values{"message": {"   "}})
	s.Chat.Wait()

	assert.Equal(t, []string{"Is suya spicy?"}, e.chat.sent)
	page := e.do(t, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, page, "reply to Is suya spicy?")

	e.do(t, http.MethodPost, "/chat/close", nil)
	assert.False(t, s.Chat.IsOpen())
}

func TestChat_RateLimited(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{Max: 2, Window: time.Minute})

	for range 2 {
		require.Equal(t, http.StatusSeeOther, e.do(t, http.MethodPost, "/chat/messages", url.Values{"message": {"hi"}}).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, e.do(t, http.MethodPost, "/chat/messages", url.Values{"message": {"hi"}}).Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/", nil).Code)
	e.session().Chat.Wait()
}

func TestCartJSON(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})
	e.add(t, "1")
	e.add(t, "1")
	e.add(t, "6")

	w := e.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var (
		count, items int
		total        string
		panelOpen    bool
		state        string
		message      string
	)
	require.NoError(t, jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "count":
			count, err = d.Int()
		case "total":
			var n jx.Num
			n, err = d.Num()
			total = n.String()
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				items++
				return d.Skip()
			})
		case "panelOpen":
			panelOpen, err = d.Bool()
		case "checkout":
			state, err = d.Str()
		case "notification":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				if key != "message" {
					return d.Skip()
				}
				v, err := d.Str()
				message = v
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	}))

	assert.Equal(t, 3, count)
	assert.Equal(t, 2, items)
	assert.Equal(t, "6200", total)
	assert.True(t, panelOpen)
	assert.Equal(t, "idle", state)
	assert.Equal(t, "Moi Moi added to cart!", message)
}

func TestCartJSON_NoNotification(t *testing.T) {
	e := newEnv(t, httpmiddleware.RateLimitConfig{})

	w := e.do(t, http.MethodGet, "/api/cart", nil)
	assert.Contains(t, w.Body.String(), `"notification":null`)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}
