// Package storage provides the key-value media that durable client state and
// session-scoped state are written to.
//
// A KV plays the role of a browser's localStorage or sessionStorage: values
// are opaque strings, a write replaces the whole value, and reads of an absent
// key are not an error.
package storage

import (
	"context"
	"strings"
)

// KV is a string key-value store.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent; err is reserved for failures of the medium itself.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping reports whether the medium is reachable.
	Ping(ctx context.Context) error
}

// Namespace scopes every key of kv under ns, so that several clients can
// share one medium without seeing each other's values.
func Namespace(kv KV, ns string) KV {
	return &namespaced{kv: kv, prefix: ns + "/"}
}

type namespaced struct {
	kv     KV
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.kv.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Ping(ctx context.Context) error {
	return n.kv.Ping(ctx)
}

// Prefix returns the namespace prefix of kv, or "" when kv is not namespaced.
func Prefix(kv KV) string {
	if n, ok := kv.(*namespaced); ok {
		return strings.TrimSuffix(n.prefix, "/")
	}
	return ""
}
