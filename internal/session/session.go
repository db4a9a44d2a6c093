// Package session keeps one wired cart, panel, toast and chat per client.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/chat"
	"github.com/xenking/foodman/internal/checkout"
	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/notify"
	"github.com/xenking/foodman/internal/persistence"
	"github.com/xenking/foodman/internal/storage"
	"github.com/xenking/foodman/internal/ui"
)

// Session is everything one client sees and owns.
type Session struct {
	ID string

	// Durable survives the session, Local does not.
	Durable storage.KV
	Local   *storage.Memory

	Display  *ui.Display
	Panel    *ui.Panel
	Page     *ui.Page
	Toasts   *notify.Surface
	Cart     *cart.Store
	Checkout *checkout.Flow
	Chat     *chat.Widget

	lastSeen time.Time
}

// Config configures a Manager.
type Config struct {
	CartKey       string
	IdleTimeout   time.Duration
	CheckoutDelay time.Duration
	Notify        notify.Config
}

// Manager creates sessions on first use and evicts idle ones.
type Manager struct {
	kv     storage.KV
	sender chat.Sender
	cfg    Config
	clock  clockwork.Clock
	lg     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager. Durable state lives in kv under one
// namespace per client.
func NewManager(kv storage.KV, sender chat.Sender, cfg Config, clock clockwork.Clock, lg *zap.Logger) *Manager {
	if cfg.CartKey == "" {
		cfg.CartKey = persistence.DefaultKey
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.Notify == (notify.Config{}) {
		cfg.Notify = notify.DefaultConfig()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Manager{
		kv:       kv,
		sender:   sender,
		cfg:      cfg,
		clock:    clock,
		lg:       lg,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session of clientID, creating and hydrating it if
// needed.
func (m *Manager) Get(ctx context.Context, clientID string) *Session {
	if s := m.touch(clientID); s != nil {
		return s
	}

	s := m.build(ctx, clientID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[clientID]; ok {
		existing.lastSeen = m.clock.Now()
		return existing
	}
	s.lastSeen = m.clock.Now()
	m.sessions[clientID] = s
	m.lg.Debug("Session created", zap.String("client_id", clientID))
	return s
}

func (m *Manager) touch(clientID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[clientID]
	if !ok {
		return nil
	}
	s.lastSeen = m.clock.Now()
	return s
}

func (m *Manager) build(ctx context.Context, clientID string) *Session {
	lg := m.lg.With(zap.String("client_id", clientID))
	s := &Session{
		ID:      clientID,
		Durable: storage.Namespace(m.kv, clientID),
		Local:   storage.NewMemory(),
		Display: ui.NewDisplay(lg),
		Panel:   &ui.Panel{},
		Page:    &ui.Page{},
		Toasts:  notify.New(m.clock, m.cfg.Notify),
	}
	s.Cart = cart.NewStore(ctx, persistence.New(s.Durable, m.cfg.CartKey, lg), cart.Options{
		Syncer:   s.Display,
		Notifier: s.Toasts,
		Revealer: s.Panel,
		Logger:   lg,
	})
	s.Checkout = checkout.New(s.Cart, checkout.Options{
		Delay:    m.cfg.CheckoutDelay,
		Clock:    m.clock,
		Notifier: s.Toasts,
		Panel:    s.Panel,
		Page:     s.Page,
		Logger:   lg,
	})
	s.Chat = chat.NewWidget(m.sender, s.Local, lg)
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the idle timeout. Sessions
// with a checkout in flight are kept. It returns the number evicted.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) <= m.cfg.IdleTimeout {
			continue
		}
		if s.Checkout.State() == checkout.Processing {
			continue
		}
		s.Toasts.Dismiss()
		delete(m.sessions, id)
		evicted++
	}
	if evicted > 0 {
		m.lg.Debug("Sessions evicted", zap.Int("count", evicted), zap.Int("live", len(m.sessions)))
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.Chan():
			m.Sweep(now)
		}
	}
}

// Wait blocks until the chat messages of every live session are answered.
func (m *Manager) Wait() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Chat.Wait()
	}
}
