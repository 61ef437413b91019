package market

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Stream maintains a WebSocket connection to the backend quote feed and
// publishes incoming quotes to a Hub, reconnecting with backoff when the
// connection drops.
type Stream struct {
	url     string
	apiKey  string
	symbols []string
	hub     *Hub
}

// NewStream creates a Stream for the given feed URL and symbol set.
func NewStream(url, apiKey string, symbols []string, hub *Hub) *Stream {
	return &Stream{
		url:     url,
		apiKey:  apiKey,
		symbols: normalizeSymbols(symbols),
		hub:     hub,
	}
}

// StreamURL derives the quote feed WebSocket URL from an http(s) backend
// base URL when no explicit stream URL is configured.
func StreamURL(backendURL string) string {
	u := strings.TrimRight(backendURL, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return u + "/ws/market"
}

type streamMsg struct {
	Action  string   `json:"action"`
	Key     string   `json:"key,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}

func authMsg(key string) streamMsg { return streamMsg{Action: "auth", Key: key} }

func subscribeMsg(symbols []string) streamMsg {
	return streamMsg{Action: "subscribe", Symbols: symbols}
}

const (
	// healthyAfter is how long a connection must stay up before its
	// eventual drop restarts the reconnect schedule from the beginning.
	healthyAfter = time.Minute
	maxBackoff   = 30 * time.Second
)

// reconnectDelay picks the wait before the next dial attempt: the prior
// delay doubled up to the cap, restarting at 1s on the first failure and
// after any connection that stayed up for healthyAfter.
func reconnectDelay(prev, connectedFor time.Duration) time.Duration {
	if prev <= 0 || connectedFor >= healthyAfter {
		return time.Second
	}
	next := prev * 2
	if next > maxBackoff {
		next = maxBackoff
	}
	return next
}

// Run connects and pumps quotes until the context is cancelled. Failed
// connections retry with exponential backoff.
func (s *Stream) Run(ctx context.Context) error {
	var backoff time.Duration
	for {
		started := time.Now()
		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		backoff = reconnectDelay(backoff, time.Since(started))
		if err != nil {
			log.Printf("market: stream disconnected: %v (reconnecting in %s)", err, backoff)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func (s *Stream) runOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if s.apiKey != "" {
		if err := conn.WriteJSON(authMsg(s.apiKey)); err != nil {
			return err
		}
	}
	if err := conn.WriteJSON(subscribeMsg(s.symbols)); err != nil {
		return err
	}

	// Close the connection when the context ends so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var q Quote
		if err := conn.ReadJSON(&q); err != nil {
			return err
		}
		if q.Symbol == "" {
			continue
		}
		q.Symbol = strings.ToUpper(q.Symbol)
		s.hub.Publish(q)
	}
}
