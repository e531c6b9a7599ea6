package comfy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra"
)

// ErrStreamTimeout reports that no event arrived within the wait passed to
// Next. The stream is still open; callers typically poll history and retry.
var ErrStreamTimeout = errors.New("comfy: event stream timed out")

const (
	defaultDialAttempts     = 3
	defaultDialRetryDelay   = 5 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
)

// Dialer opens push-event connections to the worker with bounded retry.
// Fixed inter-attempt delay, no jitter.
type Dialer struct {
	client   *Client
	logger   infra.Logger
	attempts int
	delay    time.Duration
	timeout  time.Duration
}

// NewDialer builds a dialer for the worker behind client.
func NewDialer(client *Client, logger infra.Logger) *Dialer {
	return &Dialer{
		client:   client,
		logger:   logger,
		attempts: defaultDialAttempts,
		delay:    defaultDialRetryDelay,
		timeout:  defaultHandshakeTimeout,
	}
}

// Dial opens the event stream for clientID, retrying up to the attempt bound.
// Exhausting retries fails with CONNECTION_ERROR carrying the last cause.
func (d *Dialer) Dial(ctx context.Context, clientID string) (*Conn, error) {
	wsDialer := websocket.Dialer{HandshakeTimeout: d.timeout}
	target := d.client.WSURL(clientID)

	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		ws, resp, err := wsDialer.DialContext(ctx, target, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err == nil {
			d.logger.Debug().Str("client_id", clientID).Msg("comfy: event stream connected")
			return &Conn{ws: ws}, nil
		}
		lastErr = err
		if attempt < d.attempts {
			d.logger.Warn().Err(err).Int("attempt", attempt).Msg("comfy: event stream connect failed")
			select {
			case <-time.After(d.delay):
			case <-ctx.Done():
				return nil, domain.WrapE(domain.KindConnectionError, "connect canceled", ctx.Err())
			}
		}
	}
	return nil, domain.WrapE(domain.KindConnectionError,
		fmt.Sprintf("failed to connect to worker after %d attempts", d.attempts), lastErr)
}

// Conn is one open push-event stream. Close is safe to call from any exit
// path; only the first call tears the socket down.
type Conn struct {
	ws        *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// Next blocks up to wait for the next typed event. Frames the tracker does
// not consume (status pings, binary previews) are skipped without resetting
// the wait. A quiet stream returns ErrStreamTimeout; anything else means the
// stream is no longer usable.
func (c *Conn) Next(wait time.Duration) (Event, error) {
	if err := c.ws.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return Event{}, fmt.Errorf("comfy: set read deadline: %w", err)
	}
	for {
		msgType, raw, err := c.ws.ReadMessage()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return Event{}, ErrStreamTimeout
			}
			return Event{}, fmt.Errorf("comfy: event stream closed: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if ev, ok := ParseEvent(raw); ok {
			return ev, nil
		}
	}
}

// Close releases the underlying socket exactly once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
