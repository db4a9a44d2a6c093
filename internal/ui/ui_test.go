package ui

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/foodman/internal/chat"
	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/domain/catalog"
	"github.com/xenking/foodman/internal/notify"
	"github.com/xenking/foodman/internal/persistence"
	"github.com/xenking/foodman/internal/storage"
)

func jollof(qty int) cart.LineItem {
	return cart.LineItem{
		ID:       1,
		Name:     "Jollof Rice",
		Price:    decimal.NewFromInt(2500),
		Image:    "assets/special-1.png",
		Quantity: qty,
	}
}

func TestBuild_Empty(t *testing.T) {
	v := Build(nil)

	assert.True(t, v.Empty)
	assert.Equal(t, 0, v.Count)
	assert.Equal(t, "₦0", v.Total)
	assert.Empty(t, v.Items)
	assert.Equal(t, CheckoutButton{Enabled: false, Opacity: "0.5", Cursor: "not-allowed"}, v.Checkout)
}

func TestBuild_Items(t *testing.T) {
	v := Build([]cart.LineItem{
		jollof(2),
		{ID: 6, Name: "Moi Moi", Price: decimal.NewFromInt(1200), Quantity: 1},
	})

	assert.False(t, v.Empty)
	assert.Equal(t, 3, v.Count)
	assert.Equal(t, "₦6,200", v.Total)
	assert.Equal(t, CheckoutButton{Enabled: true, Opacity: "1", Cursor: "pointer"}, v.Checkout)

	require.Len(t, v.Items, 2)
	row := v.Items[0]
	assert.Equal(t, int64(1), row.ID)
	assert.Equal(t, "₦5,000", row.LineTotal)
	assert.Equal(t, "₦2,500", row.Price)
	assert.Equal(t, FallbackImage, row.Fallback)
	assert.Equal(t, Action{Op: OpDecrement, ID: 1}, row.Decrement)
	assert.Equal(t, Action{Op: OpIncrement, ID: 1}, row.Increment)
	assert.Equal(t, Action{Op: OpRemove, ID: 1}, row.Remove)
	assert.Equal(t, int64(6), v.Items[1].ID)
}

func TestParseAction(t *testing.T) {
	for _, tt := range []struct {
		op, id  string
		want    Action
		wantErr bool
	}{
		{op: "increment", id: "1", want: Action{Op: OpIncrement, ID: 1}},
		{op: "decrement", id: "42", want: Action{Op: OpDecrement, ID: 42}},
		{op: "remove", id: "7", want: Action{Op: OpRemove, ID: 7}},
		{op: "explode", id: "1", wantErr: true},
		{op: "remove", id: "abc", wantErr: true},
		{op: "remove", id: "", wantErr: true},
	} {
		t.Run(tt.op+"/"+tt.id, func(t *testing.T) {
			got, err := ParseAction(tt.op, tt.id)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAction_Path(t *testing.T) {
	assert.Equal(t, "/cart/items/12/remove", Action{Op: OpRemove, ID: 12}.Path())
}

func TestAction_Apply(t *testing.T) {
	ctx := context.Background()
	store := cart.NewStore(ctx, persistence.New(storage.NewMemory(), persistence.DefaultKey, nil), cart.Options{})
	store.AddItem(ctx, 1, "Jollof Rice", decimal.NewFromInt(2500), "")

	Action{Op: OpIncrement, ID: 1}.Apply(ctx, store)
	assert.Equal(t, 2, store.Count())

	Action{Op: OpDecrement, ID: 1}.Apply(ctx, store)
	assert.Equal(t, 1, store.Count())

	Action{Op: OpRemove, ID: 1}.Apply(ctx, store)
	assert.Equal(t, 0, store.Len())
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	assert.True(t, Answer(true).Confirm(ctx, cart.PromptClear))
	assert.False(t, Answer(false).Confirm(ctx, cart.PromptClear))
}

func TestPanel(t *testing.T) {
	var p Panel
	assert.False(t, p.IsOpen())
	assert.False(t, p.ScrollLocked())

	p.Open()
	assert.True(t, p.IsOpen())
	assert.True(t, p.ScrollLocked())

	p.Close()
	assert.False(t, p.IsOpen())
	assert.False(t, p.ScrollLocked())
}

func TestPanel_HandleKey(t *testing.T) {
	var p Panel

	assert.True(t, p.HandleKey(Key{Name: "k", Ctrl: true}))
	assert.True(t, p.IsOpen())

	assert.False(t, p.HandleKey(Key{Name: "Escape"}))
	assert.False(t, p.IsOpen())

	assert.True(t, p.HandleKey(Key{Name: "k", Meta: true}))
	assert.True(t, p.IsOpen())

	// Plain keys pass through untouched.
	assert.False(t, p.HandleKey(Key{Name: "k"}))
	assert.False(t, p.HandleKey(Key{Name: "a", Ctrl: true}))
	assert.False(t, p.HandleKey(Key{Name: "K", Ctrl: true}))
	assert.True(t, p.IsOpen())
}

func TestPage_ScrollToTop(t *testing.T) {
	var p Page
	assert.False(t, p.TakeScrollToTop())

	p.ScrollToTop()
	assert.True(t, p.TakeScrollToTop())
	assert.False(t, p.TakeScrollToTop())
}

func TestDisplay(t *testing.T) {
	d := NewDisplay(nil)

	view, html := d.Current()
	assert.True(t, view.Empty)
	assert.Contains(t, string(html), EmptyTitle)
	assert.Contains(t, string(html), EmptyHint)
	assert.Contains(t, string(html), "not-allowed")
	assert.Equal(t, 0, d.Syncs())

	d.Sync([]cart.LineItem{jollof(2)})

	view, html = d.Current()
	assert.Equal(t, 2, view.Count)
	assert.Equal(t, 1, d.Syncs())
	s := string(html)
	assert.NotContains(t, s, EmptyTitle)
	assert.Contains(t, s, "Jollof Rice")
	assert.Contains(t, s, "₦5,000")
	assert.Contains(t, s, `action="/cart/items/1/increment"`)
	assert.Contains(t, s, `action="/cart/items/1/decrement"`)
	assert.Contains(t, s, `action="/cart/items/1/remove"`)
	assert.Contains(t, s, "via.placeholder.com")

	d.Sync(nil)
	view, _ = d.Current()
	assert.True(t, view.Empty)
	assert.Equal(t, 2, d.Syncs())
}

func TestDisplay_EscapesNames(t *testing.T) {
	d := NewDisplay(nil)
	d.Sync([]cart.LineItem{{ID: 1, Name: "<script>x</script>", Price: decimal.NewFromInt(1), Quantity: 1}})

	_, html := d.Current()
	assert.NotContains(t, string(html), "<script>")
	assert.Contains(t, string(html), "&lt;script&gt;")
}

func TestRenderPage(t *testing.T) {
	d := NewDisplay(nil)
	d.Sync([]cart.LineItem{jollof(1)})
	view, html := d.Current()

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, PageData{
		Products: Cards([]catalog.Product{{
			ID:    1,
			Name:  "Jollof Rice",
			Price: decimal.NewFromInt(2500),
			Image: "assets/special-1.png",
		}}),
		Cart:      view,
		CartHTML:  html,
		PanelOpen: true,
		Toast:     &notify.Toast{ID: 1, Message: "Jollof Rice added to cart!", Kind: notify.Success, Visible: true},
		Chat: ChatView{Open: true, Messages: []chat.Message{
			{From: chat.FromUser, Text: "hi"},
			{From: chat.FromBot, Text: "<b>hello</b>"},
		}},
	}))

	s := buf.String()
	assert.Contains(t, s, `name="product_id" value="1"`)
	assert.Contains(t, s, `class="cart-count">1<`)
	assert.Contains(t, s, "cart-sidebar active")
	assert.Contains(t, s, "overflow: hidden")
	assert.Contains(t, s, "Jollof Rice added to cart!")
	assert.Contains(t, s, "ri-check-line")
	assert.Contains(t, s, "&lt;b&gt;hello&lt;/b&gt;")
}

func TestRenderPage_Closed(t *testing.T) {
	view, html := NewDisplay(nil).Current()

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, PageData{Cart: view, CartHTML: html}))

	s := buf.String()
	assert.NotContains(t, s, "cart-sidebar active")
	assert.NotContains(t, s, "overflow: hidden")
	assert.NotContains(t, s, `class="notification`)
	assert.Contains(t, s, `action="/chat/open"`)
}

func TestRenderConfirm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderConfirm(&buf, ConfirmData{Prompt: cart.PromptClear, Action: "/cart/clear"}))

	s := buf.String()
	assert.Contains(t, s, cart.PromptClear)
	assert.Contains(t, s, `action="/cart/clear"`)
	assert.Contains(t, s, `value="yes"`)
}

func TestRenderPage_ProcessingAndScroll(t *testing.T) {
	view, html := NewDisplay(nil).Current()

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, PageData{Cart: view, CartHTML: html, Processing: true, ScrollTop: true}))

	s := buf.String()
	assert.Contains(t, s, `http-equiv="refresh"`)
	assert.Contains(t, s, "window.scrollTo")
}
