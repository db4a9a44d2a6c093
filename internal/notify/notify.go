// Package notify implements the transient toast shown after cart actions.
//
// The surface is a single slot: at most one toast exists at a time and a new
// toast replaces the current one no matter how long the old one had left.
package notify

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Kind selects the styling of a toast.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Icon returns the icon name rendered next to the message.
func (k Kind) Icon() string {
	if k == Error {
		return "error-warning-line"
	}
	return "check-line"
}

// Config holds the toast timings.
type Config struct {
	// ShowDelay is the pause between insertion and becoming visible, which
	// gives the page a chance to run the entry transition.
	ShowDelay time.Duration
	// Display is how long after insertion the toast is hidden again.
	Display time.Duration
	// Removal is the exit transition time between hiding and removal.
	Removal time.Duration
}

// DefaultConfig returns the standard toast timings.
func DefaultConfig() Config {
	return Config{
		ShowDelay: 100 * time.Millisecond,
		Display:   3 * time.Second,
		Removal:   300 * time.Millisecond,
	}
}

// Toast is a snapshot of the displayed notification.
type Toast struct {
	ID      uint64
	Message string
	Kind    Kind
	Visible bool
}

// Surface owns the toast slot.
type Surface struct {
	clock clockwork.Clock
	cfg   Config

	mu      sync.Mutex
	seq     uint64
	current *slot
}

type slot struct {
	toast  Toast
	timers []clockwork.Timer
}

func (s *slot) stop() {
	for _, t := range s.timers {
		t.Stop()
	}
}

// New returns an empty Surface driven by clock.
func New(clock clockwork.Clock, cfg Config) *Surface {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Surface{clock: clock, cfg: cfg}
}

// Notify replaces the current toast, if any, with a new one and schedules its
// show, hide and removal.
func (s *Surface) Notify(message string, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.stop()
	}

	s.seq++
	id := s.seq
	sl := &slot{toast: Toast{ID: id, Message: message, Kind: kind}}
	s.current = sl
	sl.timers = []clockwork.Timer{
		s.clock.AfterFunc(s.cfg.ShowDelay, func() { s.setVisible(id, true) }),
		s.clock.AfterFunc(s.cfg.Display, func() { s.setVisible(id, false) }),
		s.clock.AfterFunc(s.cfg.Display+s.cfg.Removal, func() { s.remove(id) }),
	}
}

// Current returns the toast in the slot.
func (s *Surface) Current() (Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Toast{}, false
	}
	return s.current.toast, true
}

// Dismiss removes the current toast immediately.
func (s *Surface) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.stop()
		s.current = nil
	}
}

// setVisible and remove ignore callbacks of a toast that was already replaced.
func (s *Surface) setVisible(id uint64, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.toast.ID == id {
		s.current.toast.Visible = visible
	}
}

func (s *Surface) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.toast.ID == id {
		s.current = nil
	}
}
