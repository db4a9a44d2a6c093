package ui

import (
	"html/template"
	"io"

	"github.com/go-faster/errors"

	"github.com/xenking/foodman/internal/chat"
	"github.com/xenking/foodman/internal/domain/catalog"
	"github.com/xenking/foodman/internal/money"
	"github.com/xenking/foodman/internal/notify"
)

// ProductCard is a menu entry with its add-to-cart control.
type ProductCard struct {
	ID          int64
	Name        string
	Price       string
	Image       string
	Category    string
	Description string
}

// Cards builds the menu from catalog products.
func Cards(products []catalog.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, ProductCard{
			ID:          p.ID,
			Name:        p.Name,
			Price:       money.Format(p.Price),
			Image:       p.Image,
			Category:    p.Category,
			Description: p.Description,
		})
	}
	return cards
}

// ChatView is the rendered chat widget.
type ChatView struct {
	Open     bool
	Messages []chat.Message
}

// PageData is everything the main page shows.
type PageData struct {
	Products  []ProductCard
	Cart      View
	CartHTML  template.HTML
	PanelOpen bool
	Toast     *notify.Toast
	Chat      ChatView

	// Processing reloads the page until the pending order is placed.
	Processing bool
	ScrollTop  bool
}

// RenderPage writes the main page.
func RenderPage(w io.Writer, data PageData) error {
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return errors.Wrap(err, "render page")
	}
	return nil
}

// ConfirmData is a yes/no prompt posted back to Action.
type ConfirmData struct {
	Prompt string
	Action string
}

// RenderConfirm writes a confirmation page.
func RenderConfirm(w io.Writer, data ConfirmData) error {
	if err := templates.ExecuteTemplate(w, "confirm", data); err != nil {
		return errors.Wrap(err, "render confirm")
	}
	return nil
}
