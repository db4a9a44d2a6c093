package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/notify"
	"github.com/xenking/foodman/internal/persistence"
	"github.com/xenking/foodman/internal/storage"
	"github.com/xenking/foodman/internal/ui"
)

type toast struct {
	Message string
	Kind    notify.Kind
}

type toasts struct {
	ch chan toast
}

func (t *toasts) Notify(message string, kind notify.Kind) {
	t.ch <- toast{Message: message, Kind: kind}
}

func (t *toasts) next(tb testing.TB) toast {
	tb.Helper()
	select {
	case v := <-t.ch:
		return v
	case <-time.After(5 * time.Second):
		tb.Fatal("no notification")
		return toast{}
	}
}

type fixture struct {
	clock *clockwork.FakeClock
	kv    *storage.Memory
	store *cart.Store
	flow  *Flow
	notes *toasts
	panel *ui.Panel
	page  *ui.Page
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		clock: clockwork.NewFakeClock(),
		kv:    storage.NewMemory(),
		notes: &toasts{ch: make(chan toast, 16)},
		panel: &ui.Panel{},
		page:  &ui.Page{},
	}
	f.store = cart.NewStore(ctx, persistence.New(f.kv, persistence.DefaultKey, nil), cart.Options{})
	f.flow = New(f.store, Options{
		Clock:    f.clock,
		Notifier: f.notes,
		Panel:    f.panel,
		Page:     f.page,
	})
	return f
}

func (f *fixture) addJollof(ctx context.Context, n int) {
	for range n {
		f.store.AddItem(ctx, 1, "Jollof Rice", decimal.NewFromInt(2500), "assets/special-1.png")
	}
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSummary(t *testing.T) {
	got := Summary([]cart.LineItem{
		{ID: 1, Name: "Jollof Rice", Price: decimal.NewFromInt(2500), Quantity: 2},
		{ID: 6, Name: "Moi Moi", Price: decimal.NewFromInt(1200), Quantity: 1},
	})

	want := "🍽️ ORDER SUMMARY\n" +
		"═══════════════════\n" +
		"Jollof Rice x2 - ₦5,000\n" +
		"Moi Moi x1 - ₦1,200\n" +
		"\n" +
		"═══════════════════\n" +
		"TOTAL: ₦6,200\n" +
		"\n" +
		"Thank you for your order! \n" +
		"Your delicious meal is being prepared.\n" +
		"\n" +
		"Would you like to confirm this order?"
	assert.Equal(t, want, got)
}

func TestReview_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.flow.Review(context.Background())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, toast{Message: MsgEmpty, Kind: notify.Error}, f.notes.next(t))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	asked := false

	task, err := f.flow.Checkout(context.Background(), cart.ConfirmFunc(func(context.Context, string) bool {
		asked = true
		return true
	}))
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, task)
	assert.False(t, asked)
	assert.Equal(t, Idle, f.flow.State())
	assert.Equal(t, toast{Message: MsgEmpty, Kind: notify.Error}, f.notes.next(t))
}

func TestCheckout_Declined(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addJollof(ctx, 2)

	var prompt string
	_, err := f.flow.Checkout(ctx, cart.ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return false
	}))
	require.ErrorIs(t, err, ErrDeclined)
	assert.Contains(t, prompt, "Jollof Rice x2 - ₦5,000")
	assert.Equal(t, 2, f.store.Count())
	assert.Equal(t, Idle, f.flow.State())
	assert.Empty(t, f.notes.ch)
}

func TestCheckout_Confirmed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addJollof(ctx, 2)
	f.panel.Open()

	task, err := f.flow.Checkout(ctx, ui.Answer(true))
	require.NoError(t, err)
	assert.Equal(t, Processing, f.flow.State())
	assert.Equal(t, toast{Message: MsgProcessing, Kind: notify.Success}, f.notes.next(t))

	// Nothing happens before the delay elapses.
	f.clock.Advance(DefaultDelay - time.Millisecond)
	assert.Equal(t, 2, f.store.Count())
	select {
	case <-task.Done():
		t.Fatal("task finished early")
	default:
	}

	f.clock.Advance(time.Millisecond)
	require.NoError(t, task.Wait(waitCtx(t)))

	assert.Equal(t, 0, f.store.Len())
	assert.False(t, f.panel.IsOpen())
	assert.True(t, f.page.TakeScrollToTop())
	assert.Equal(t, Idle, f.flow.State())
	assert.Equal(t, toast{Message: MsgPlaced, Kind: notify.Success}, f.notes.next(t))

	v, ok, err := f.kv.Get(ctx, persistence.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestCheckout_InProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addJollof(ctx, 1)

	task, err := f.flow.Checkout(ctx, ui.Answer(true))
	require.NoError(t, err)

	_, err = f.flow.Checkout(ctx, ui.Answer(true))
	require.ErrorIs(t, err, ErrInProgress)

	f.clock.Advance(DefaultDelay)
	require.NoError(t, task.Wait(waitCtx(t)))
	assert.Equal(t, Idle, f.flow.State())
}

func TestTask_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addJollof(ctx, 1)
	f.panel.Open()

	task, err := f.flow.Checkout(ctx, ui.Answer(true))
	require.NoError(t, err)
	f.notes.next(t)

	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel())
	require.ErrorIs(t, task.Wait(waitCtx(t)), ErrCancelled)
	assert.Equal(t, Idle, f.flow.State())

	f.clock.Advance(DefaultDelay)
	assert.Equal(t, 1, f.store.Count())
	assert.True(t, f.panel.IsOpen())
	assert.False(t, f.page.TakeScrollToTop())
	assert.Empty(t, f.notes.ch)
}

func TestTask_CancelAfterCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addJollof(ctx, 1)

	task, err := f.flow.Checkout(ctx, ui.Answer(true))
	require.NoError(t, err)
	f.clock.Advance(DefaultDelay)
	require.NoError(t, task.Wait(waitCtx(t)))

	assert.False(t, task.Cancel())
	require.NoError(t, task.Wait(waitCtx(t)))
}

func TestTask_WaitContext(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addJollof(ctx, 1)

	task, err := f.flow.Checkout(ctx, ui.Answer(true))
	require.NoError(t, err)

	wctx, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, task.Wait(wctx), context.Canceled)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "processing", Processing.String())
}
