// Package chat implements the support chat widget and its webhook client.
package chat

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Fallback is the bot reply used when the webhook answers without output.
const Fallback = "Sorry, I couldn't understand that."

// DefaultRoute is sent with every message unless configured otherwise.
const DefaultRoute = "general"

// ErrStatus is returned when the webhook answers with a non-2xx status.
var ErrStatus = errors.New("unexpected webhook status")

const maxReplySize = 1 << 20

// ClientConfig configures a Client.
type ClientConfig struct {
	WebhookURL     string
	Route          string
	Timeout        time.Duration
	Transport      http.RoundTripper
	TracerProvider trace.TracerProvider
}

// Client posts chat messages to the webhook.
type Client struct {
	http   *http.Client
	url    string
	route  string
	tracer trace.Tracer
}

// NewClient creates a webhook client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Route == "" {
		cfg.Route = DefaultRoute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(cfg.Transport,
				otelhttp.WithTracerProvider(cfg.TracerProvider),
			),
		},
		url:    cfg.WebhookURL,
		route:  cfg.Route,
		tracer: cfg.TracerProvider.Tracer("foodman/chat"),
	}
}

// Send posts one message and returns the bot reply.
func (c *Client) Send(ctx context.Context, chatID, message string) (_ string, rerr error) {
	ctx, span := c.tracer.Start(ctx, "chat.Send", trace.WithAttributes(
		attribute.String("chat.id", chatID),
		attribute.String("chat.route", c.route),
	))
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(encodeRequest(chatID, message, c.route)))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "post message")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Wrapf(ErrStatus, "%d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return "", errors.Wrap(err, "read reply")
	}
	reply, err := decodeReply(body)
	if err != nil {
		return "", errors.Wrap(err, "decode reply")
	}
	return reply, nil
}

func encodeRequest(chatID, message, route string) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("chatId")
	e.Str(chatID)
	e.FieldStart("message")
	e.Str(message)
	e.FieldStart("route")
	e.Str(route)
	e.ObjEnd()
	return e.Bytes()
}

// decodeReply extracts the "output" string. Any valid JSON without one
// yields Fallback.
func decodeReply(body []byte) (string, error) {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		if err := d.Validate(); err != nil {
			return "", err
		}
		return Fallback, nil
	}

	var output string
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "output" || d.Next() != jx.String {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, key)
		}
		output = v
		return nil
	}); err != nil {
		return "", err
	}
	if output == "" {
		return Fallback, nil
	}
	return output, nil
}
