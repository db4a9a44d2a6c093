// Package persistence reads and writes a cart as one serialized value under a
// fixed storage key.
package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/domain/cart"
	"github.com/xenking/foodman/internal/storage"
)

// DefaultKey is the storage key the cart lives under.
const DefaultKey = "foodmanCart"

var _ cart.Persister = (*Adapter)(nil)

// Adapter implements cart.Persister over a storage.KV.
type Adapter struct {
	kv  storage.KV
	key string
	lg  *zap.Logger
}

// New returns an Adapter storing the cart under key in kv.
func New(kv storage.KV, key string, lg *zap.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Adapter{kv: kv, key: key, lg: lg}
}

// Load returns the persisted items. Absent, unreadable or malformed values
// all yield an empty cart; the cause is only logged.
func (a *Adapter) Load(ctx context.Context) []cart.LineItem {
	raw, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.lg.Error("Read cart", zap.String("key", a.key), zap.Error(err))
		return []cart.LineItem{}
	}
	if !ok {
		return []cart.LineItem{}
	}

	items, err := Decode(raw)
	if err != nil {
		a.lg.Warn("Discarding malformed cart",
			zap.String("key", a.key),
			zap.Int("size", len(raw)),
			zap.Error(err),
		)
		return []cart.LineItem{}
	}
	return items
}

// Save replaces the persisted value with the full items sequence.
func (a *Adapter) Save(ctx context.Context, items []cart.LineItem) error {
	if err := a.kv.Set(ctx, a.key, Encode(items)); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
