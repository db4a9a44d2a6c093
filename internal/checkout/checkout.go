// Package checkout turns a confirmed cart into a placed order.
//
// The flow is Idle until a confirmed checkout starts, then Processing for a
// fixed delay, after which the cart is emptied and the flow returns to Idle.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/notify"
)

// User-facing messages.
const (
	MsgEmpty      = "Your cart is empty!"
	MsgProcessing = "Processing your order..."
	MsgPlaced     = "🎉 Order placed successfully! Thank you for choosing FoodMan!"
)

// DefaultDelay is the simulated processing time.
const DefaultDelay = 1500 * time.Millisecond

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrDeclined   = errors.New("order declined")
	ErrInProgress = errors.New("checkout already in progress")
)

// State of the flow.
type State int

const (
	Idle State = iota
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	default:
		return "unknown"
	}
}

// Closer hides the cart panel.
type Closer interface {
	Close()
}

// Scroller scrolls the page back to the top.
type Scroller interface {
	ScrollToTop()
}

// Options wires the collaborators of a Flow. Nil fields are no-ops.
type Options struct {
	Delay    time.Duration
	Clock    clockwork.Clock
	Notifier cart.Notifier
	Panel    Closer
	Page     Scroller
	Logger   *zap.Logger
}

// Flow runs checkouts against one cart.
type Flow struct {
	store *cart.Store
	clock clockwork.Clock
	delay time.Duration
	notes cart.Notifier
	panel Closer
	page  Scroller
	lg    *zap.Logger

	mu    sync.Mutex
	state State
	task  *Task
}

// New creates an idle Flow over store.
func New(store *cart.Store, opts Options) *Flow {
	f := &Flow{
		store: store,
		clock: opts.Clock,
		delay: opts.Delay,
		notes: opts.Notifier,
		panel: opts.Panel,
		page:  opts.Page,
		lg:    opts.Logger,
	}
	if f.clock == nil {
		f.clock = clockwork.NewRealClock()
	}
	if f.delay <= 0 {
		f.delay = DefaultDelay
	}
	if f.notes == nil {
		f.notes = nopNotifier{}
	}
	if f.panel == nil {
		f.panel = nopCloser{}
	}
	if f.page == nil {
		f.page = nopScroller{}
	}
	if f.lg == nil {
		f.lg = zap.NewNop()
	}
	return f
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Review returns the order summary. An empty cart shows an error toast and
// returns ErrEmptyCart.
func (f *Flow) Review(ctx context.Context) (string, error) {
	items := f.store.Items()
	if len(items) == 0 {
		f.notes.Notify(MsgEmpty, notify.Error)
		return "", ErrEmptyCart
	}
	return Summary(items), nil
}

// Checkout asks c to confirm the summary and, if confirmed, starts
// processing. The returned Task completes once the cart was emptied.
func (f *Flow) Checkout(ctx context.Context, c cart.Confirmer) (*Task, error) {
	if f.State() == Processing {
		return nil, ErrInProgress
	}
	summary, err := f.Review(ctx)
	if err != nil {
		return nil, err
	}
	if !c.Confirm(ctx, summary) {
		return nil, ErrDeclined
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Processing {
		return nil, ErrInProgress
	}

	lg := f.lg.With(zap.Int("items", f.store.Count()), zap.String("total", f.store.Total().String()))
	lg.Info("Processing order")

	t := newTask()
	f.state = Processing
	f.task = t
	f.notes.Notify(MsgProcessing, notify.Success)

	t.onCancel = func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.task == t {
			f.state = Idle
			f.task = nil
		}
		lg.Info("Order cancelled")
	}
	t.setTimer(f.clock.AfterFunc(f.delay, func() {
		if t.complete(func() { f.place(ctx) }) {
			lg.Info("Order placed")
		}
	}))
	return t, nil
}

// place finishes the order started by the current task.
func (f *Flow) place(ctx context.Context) {
	f.store.Empty(context.WithoutCancel(ctx))
	f.panel.Close()
	f.notes.Notify(MsgPlaced, notify.Success)
	f.page.ScrollToTop()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Idle
	f.task = nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, notify.Kind) {}

type nopCloser struct{}

func (nopCloser) Close() {}

type nopScroller struct{}

func (nopScroller) ScrollToTop() {}
