package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/notify"
)

// User-facing messages.
const (
	MsgRemoved      = "Item removed from cart"
	MsgCleared      = "Cart cleared"
	PromptClear     = "Are you sure you want to clear your cart?"
	msgAddedPattern = "%s added to cart!"
)

// Options wires the collaborators of a Store. Nil fields are no-ops.
type Options struct {
	Syncer   Syncer
	Notifier Notifier
	Revealer Revealer
	Logger   *zap.Logger
}

// Store is an insertion-ordered collection of line items. Collaborators are
// invoked while the store lock is held and must not call back into the
// store.
type Store struct {
	mu    sync.Mutex
	items []LineItem

	persist Persister
	ui      Syncer
	notes   Notifier
	panel   Revealer
	lg      *zap.Logger
}

// NewStore hydrates a Store from p and performs the initial resync.
func NewStore(ctx context.Context, p Persister, opts Options) *Store {
	s := &Store{
		persist: p,
		ui:      opts.Syncer,
		notes:   opts.Notifier,
		panel:   opts.Revealer,
		lg:      opts.Logger,
	}
	if s.ui == nil {
		s.ui = nopSyncer{}
	}
	if s.notes == nil {
		s.notes = nopNotifier{}
	}
	if s.panel == nil {
		s.panel = nopRevealer{}
	}
	if s.lg == nil {
		s.lg = zap.NewNop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = p.Load(ctx)
	s.ui.Sync(s.snapshot())
	return s
}

// AddItem increments the quantity of id, or appends a new entry with
// quantity 1. The panel is opened so the user sees the result.
func (s *Store) AddItem(ctx context.Context, id int64, name string, price decimal.Decimal, image string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, LineItem{
			ID:       id,
			Name:     name,
			Price:    price,
			Image:    image,
			Quantity: 1,
		})
	}
	s.lg.Debug("Item added", zap.Int64("id", id), zap.Int("count", Count(s.items)))

	s.commit(ctx)
	s.notes.Notify(fmt.Sprintf(msgAddedPattern, name), notify.Success)
	s.panel.Open()
}

// RemoveItem deletes the entry for id. An unknown id leaves the items as
// they are but still persists, resyncs and notifies.
func (s *Store) RemoveItem(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(ctx, id)
}

func (s *Store) removeLocked(ctx context.Context, id int64) {
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.lg.Debug("Item removed", zap.Int64("id", id))

	s.commit(ctx)
	s.notes.Notify(MsgRemoved, notify.Success)
}

// ChangeQuantity adds delta to the quantity of id. A result of zero or less
// removes the entry, with the removal notice. Otherwise the change is
// silent. Unknown ids are ignored.
func (s *Store) ChangeQuantity(ctx context.Context, id int64, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	if s.items[i].Quantity+delta <= 0 {
		s.removeLocked(ctx, id)
		return
	}
	s.items[i].Quantity += delta
	s.lg.Debug("Quantity changed", zap.Int64("id", id), zap.Int("quantity", s.items[i].Quantity))

	s.commit(ctx)
}

// Clear empties the cart once c confirms. It reports whether the cart was
// cleared.
func (s *Store) Clear(ctx context.Context, c Confirmer) bool {
	if !c.Confirm(ctx, PromptClear) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.lg.Debug("Cart cleared")

	s.commit(ctx)
	s.notes.Notify(MsgCleared, notify.Success)
	return true
}

// Empty removes every entry without asking and without a notification.
// Checkout uses it once an order is placed.
func (s *Store) Empty(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.commit(ctx)
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Total returns the sum of price * quantity over all entries.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.items)
}

// Count returns the sum of quantities over all entries.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Count(s.items)
}

// Len returns the number of distinct entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// commit writes the full sequence and then resyncs the views. A failed
// write is logged; the in-memory state stays authoritative.
func (s *Store) commit(ctx context.Context) {
	snap := s.snapshot()
	if err := s.persist.Save(ctx, snap); err != nil {
		s.lg.Error("Save cart", zap.Error(err))
	}
	s.ui.Sync(snap)
}

func (s *Store) snapshot() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) index(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
