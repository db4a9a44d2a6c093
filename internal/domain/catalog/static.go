package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

var _ Repository = (*Static)(nil)

// Static is an immutable in-memory menu.
type Static struct {
	products []Product
	byID     map[int64]int
}

// NewStatic returns a Static catalog over products, keeping their order.
// Duplicate ids are rejected.
func NewStatic(products []Product) (*Static, error) {
	s := &Static{
		products: make([]Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	for i, p := range products {
		if _, dup := s.byID[p.ID]; dup {
			return nil, errors.Errorf("duplicate product id %d", p.ID)
		}
		if p.Price.IsNegative() {
			return nil, errors.Errorf("product %d has negative price", p.ID)
		}
		s.products[i] = p
		s.byID[p.ID] = i
	}
	return s, nil
}

// ParseMenu decodes a JSON array of products as stored in db/seed/menu.json.
func ParseMenu(data []byte) ([]Product, error) {
	var products []Product
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var p Product
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				p.ID, err = d.Int64()
			case "name":
				p.Name, err = d.Str()
			case "price":
				p.Price, err = decodeDecimal(d)
			case "category":
				p.Category, err = d.Str()
			case "image":
				p.Image, err = d.Str()
			case "description":
				p.Description, err = d.Str()
			default:
				err = d.Skip()
			}
			if err != nil {
				return errors.Wrap(err, key)
			}
			return nil
		}); err != nil {
			return err
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode menu")
	}
	return products, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	if n.Str() {
		return decimal.Zero, errors.New("price must be a JSON number")
	}
	return decimal.NewFromString(n.String())
}

// List returns all products in menu order.
func (s *Static) List(context.Context) ([]Product, error) {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// GetByID returns a single product by its identifier.
func (s *Static) GetByID(_ context.Context, id int64) (*Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := s.products[i]
	return &p, nil
}
