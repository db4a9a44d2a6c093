package ui

import "sync"

// Panel is the cart side panel. While open, the overlay is shown and page
// scrolling is locked.
type Panel struct {
	mu   sync.Mutex
	open bool
}

// Open shows the panel and overlay.
func (p *Panel) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
}

// Close hides the panel and overlay and restores scrolling.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

// IsOpen reports whether the panel is visible.
func (p *Panel) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// ScrollLocked reports whether page scrolling is suppressed.
func (p *Panel) ScrollLocked() bool { return p.IsOpen() }

// Key is a keyboard event.
type Key struct {
	Name string
	Ctrl bool
	Meta bool
}

// HandleKey applies the panel shortcuts: Escape closes the panel and
// Ctrl/Cmd+K opens it. It reports whether the default browser handling
// must be suppressed, which is only the case for the open shortcut.
func (p *Panel) HandleKey(k Key) (preventDefault bool) {
	switch {
	case k.Name == "Escape":
		p.Close()
		return false
	case (k.Ctrl || k.Meta) && k.Name == "k":
		p.Open()
		return true
	default:
		return false
	}
}

// Page holds page-level state that is not owned by the cart.
type Page struct {
	mu        sync.Mutex
	scrollTop bool
}

// ScrollToTop requests that the next render scrolls the page to the top.
func (p *Page) ScrollToTop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollTop = true
}

// TakeScrollToTop returns and resets the pending scroll request.
func (p *Page) TakeScrollToTop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.scrollTop
	p.scrollTop = false
	return v
}
