package chat

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/foodman/internal/storage"
)

// SessionKey is where the chat id lives in session-scoped storage.
const SessionKey = "chatId"

const (
	idPrefix   = "chat_"
	idLength   = 9
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// SessionID returns the chat id of the current session, generating and
// storing one on first use.
func SessionID(ctx context.Context, kv storage.KV) (string, error) {
	id, ok, err := kv.Get(ctx, SessionKey)
	if err != nil {
		return "", errors.Wrap(err, "get chat id")
	}
	if ok && id != "" {
		return id, nil
	}

	id = newID()
	if err := kv.Set(ctx, SessionKey, id); err != nil {
		return "", errors.Wrap(err, "store chat id")
	}
	return id, nil
}

func newID() string {
	src := uuid.New()
	b := make([]byte, 0, len(idPrefix)+idLength)
	b = append(b, idPrefix...)
	for i := range idLength {
		b = append(b, idAlphabet[int(src[i])%len(idAlphabet)])
	}
	return string(b)
}
