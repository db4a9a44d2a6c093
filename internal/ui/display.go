package ui

import (
	"bytes"
	"embed"
	"html/template"
	"sync"

	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/domain/cart"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// cartFragment is the data of the "cart" template.
type cartFragment struct {
	View
	EmptyTitle string
	EmptyHint  string
}

// Display is the rendered cart panel. It implements cart.Syncer: every
// Sync rebuilds the view and re-renders the fragment from scratch.
type Display struct {
	mu    sync.RWMutex
	view  View
	html  template.HTML
	syncs int
	lg    *zap.Logger
}

// NewDisplay renders an empty cart.
func NewDisplay(lg *zap.Logger) *Display {
	if lg == nil {
		lg = zap.NewNop()
	}
	d := &Display{lg: lg}
	d.view, d.html = d.render(nil)
	return d
}

// Sync implements cart.Syncer.
func (d *Display) Sync(items []cart.LineItem) {
	view, html := d.render(items)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.view, d.html = view, html
	d.syncs++
}

// Current returns the latest view and its markup.
func (d *Display) Current() (View, template.HTML) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view, d.html
}

// Syncs returns how many times the display was resynced.
func (d *Display) Syncs() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.syncs
}

func (d *Display) render(items []cart.LineItem) (View, template.HTML) {
	view := Build(items)
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "cart", cartFragment{
		View:       view,
		EmptyTitle: EmptyTitle,
		EmptyHint:  EmptyHint,
	}); err != nil {
		// Templates are static, so this only happens on a broken build.
		d.lg.Error("Render cart", zap.Error(err))
		return view, ""
	}
	return view, template.HTML(buf.String())
}
