package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const (
	// feedReadLimit caps a single feed message. Events are small; a
	// folder transfer's app data is the largest field.
	feedReadLimit = 1 << 20

	feedReconnectMin = time.Second
	feedReconnectMax = time.Minute

	// jitterDivisor controls the range of random jitter added to
	// reconnect backoff: jitter is uniform in [0, backoff/jitterDivisor).
	jitterDivisor = 2

	reconnectBackoffMultiplier = 2
)

//go:generate mockgen -source=feed.go -destination=mock_wsconn_test.go -package=transfer -mock_names=wsConn=MockWSConn,publisher=MockPublisher

// wsConn abstracts the WebSocket connection so the feed can be tested
// without a real server. *websocket.Conn satisfies this interface.
type wsConn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Close(code websocket.StatusCode, reason string) error
}

type publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Feed reads transfer events from the engine's WebSocket endpoint and
// publishes them to a Hub, reconnecting with backoff when the connection
// drops.
type Feed struct {
	url    string
	token  string
	hub    publisher
	logger *slog.Logger

	dial         func(ctx context.Context) (wsConn, error)
	reconnectMin time.Duration
	reconnectMax time.Duration
}

// NewFeed creates a feed for url, authenticating with token.
func NewFeed(url, token string, hub publisher, logger *slog.Logger) *Feed {
	f := &Feed{
		url:          url,
		token:        token,
		hub:          hub,
		logger:       logger,
		reconnectMin: feedReconnectMin,
		reconnectMax: feedReconnectMax,
	}
	f.dial = f.dialWebsocket

	return f
}

func (f *Feed) dialWebsocket(ctx context.Context) (wsConn, error) {
	conn, _, err := websocket.Dial(ctx, f.url, &websocket.DialOptions{ //nolint:bodyclose // websocket.Dial closes the response body internally
		HTTPHeader: http.Header{
			"Authorization": []string{"Bearer " + f.token},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dialing transfer feed: %w", err)
	}

	conn.SetReadLimit(feedReadLimit)

	return conn, nil
}

// Run connects and relays events until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) error {
	backoff := f.reconnectMin

	for {
		conn, err := f.dial(ctx)
		if err == nil {
			f.logger.Info("transfer feed connected", slog.String("url", f.url))
			backoff = f.reconnectMin

			err = f.consume(ctx, conn)
			conn.Close(websocket.StatusNormalClosure, "bye")
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		f.logger.Warn("transfer feed disconnected, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("backoff", backoff),
		)

		jitter := time.Duration(rand.Int64N(int64(backoff)/jitterDivisor + 1)) //nolint:gosec // G404: math/rand is fine for reconnect jitter, no security impact

		timer := time.NewTimer(backoff + jitter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = min(backoff*reconnectBackoffMultiplier, f.reconnectMax)
	}
}

// consume relays messages from one connection until it fails.
func (f *Feed) consume(ctx context.Context, conn wsConn) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("reading transfer feed: %w", err)
		}

		if typ != websocket.MessageText {
			continue
		}

		e, ok, err := decodeEvent(data)
		if err != nil {
			f.logger.Warn("dropping malformed transfer event", slog.String("error", err.Error()))
			continue
		}

		if !ok {
			continue
		}

		if err := f.hub.Publish(ctx, e); err != nil {
			return err
		}
	}
}
