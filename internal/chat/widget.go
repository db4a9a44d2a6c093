package chat

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xenking/foodman/internal/storage"
)

// From identifies the author of a transcript entry.
type From string

const (
	FromUser From = "user"
	FromBot  From = "bot"
)

// Message is one transcript entry.
type Message struct {
	From From
	Text string
}

// Sender delivers a message and returns the reply.
type Sender interface {
	Send(ctx context.Context, chatID, message string) (string, error)
}

// Widget is the chat window of one session.
type Widget struct {
	sender  Sender
	session storage.KV
	lg      *zap.Logger

	mu       sync.Mutex
	open     bool
	messages []Message

	idMu     sync.Mutex
	inflight sync.WaitGroup
}

// NewWidget creates a closed widget with an empty transcript. The chat id
// is kept in session.
func NewWidget(sender Sender, session storage.KV, lg *zap.Logger) *Widget {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Widget{sender: sender, session: session, lg: lg}
}

func (w *Widget) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = true
}

func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = false
}

func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Messages returns a copy of the transcript.
func (w *Widget) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// Send appends the user message and asks the webhook for a reply in the
// background. Blank input is ignored. It reports whether a message was
// sent.
//
// Failures are logged and leave no transcript entry.
func (w *Widget) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	w.append(Message{From: FromUser, Text: text})

	ctx = context.WithoutCancel(ctx)
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()

		id, err := w.sessionID(ctx)
		if err != nil {
			w.lg.Error("Chat session", zap.Error(err))
			return
		}
		reply, err := w.sender.Send(ctx, id, text)
		if err != nil {
			w.lg.Error("Chat message failed", zap.String("chat_id", id), zap.Error(err))
			return
		}
		w.append(Message{From: FromBot, Text: reply})
	}()
	return true
}

// Wait blocks until all in-flight messages are answered or failed.
func (w *Widget) Wait() {
	w.inflight.Wait()
}

func (w *Widget) sessionID(ctx context.Context) (string, error) {
	w.idMu.Lock()
	defer w.idMu.Unlock()
	return SessionID(ctx, w.session)
}

func (w *Widget) append(m Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, m)
}
