package persistence

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/foodman/internal/domain/cart"
)

// Encode serializes items as a JSON array of
// {"id","name","price","image","quantity"} objects.
func Encode(items []cart.LineItem) string {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(it.ID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("price")
		e.Num(jx.Num(it.Price.String()))
		e.FieldStart("image")
		e.Str(it.Image)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.String()
}

// Decode parses the persisted form. Any deviation from the expected shape or
// from the cart invariants is an error.
func Decode(data string) ([]cart.LineItem, error) {
	items := []cart.LineItem{}
	seen := make(map[int64]struct{})

	d := jx.DecodeStr(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		it, err := decodeItem(d)
		if err != nil {
			return err
		}
		if _, dup := seen[it.ID]; dup {
			return errors.Errorf("duplicate id %d", it.ID)
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, err
	}
	if d.Next() != jx.Invalid {
		return nil, errors.New("trailing data after array")
	}
	return items, nil
}

func decodeItem(d *jx.Decoder) (cart.LineItem, error) {
	var (
		it       cart.LineItem
		hasID    bool
		hasPrice bool
		hasQty   bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			it.ID, err = d.Int64()
			hasID = true
		case "name":
			it.Name, err = d.Str()
		case "price":
			it.Price, err = decodePrice(d)
			hasPrice = true
		case "image":
			it.Image, err = d.Str()
		case "quantity":
			it.Quantity, err = d.Int()
			hasQty = true
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	}); err != nil {
		return it, err
	}

	switch {
	case !hasID || !hasPrice || !hasQty:
		return it, errors.New("item is missing id, price or quantity")
	case it.Quantity < 1:
		return it, errors.Errorf("item %d has quantity %d", it.ID, it.Quantity)
	case it.Price.IsNegative():
		return it, errors.Errorf("item %d has negative price", it.ID)
	}
	return it, nil
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	if n.Str() {
		return decimal.Zero, errors.New("price must be a JSON number")
	}
	return decimal.NewFromString(n.String())
}
