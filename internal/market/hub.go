package market

import "sync"

// Hub fans streamed quotes out to subscribers. Slow subscribers drop
// updates rather than stall the stream reader.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Quote]struct{}
	last map[string]Quote
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[chan Quote]struct{}),
		last: make(map[string]Quote),
	}
}

// Publish delivers a quote to every subscriber and records it as the
// symbol's latest value.
func (h *Hub) Publish(q Quote) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[q.Symbol] = q
	for ch := range h.subs {
		select {
		case ch <- q:
		default:
		}
	}
}

// Subscribe returns a channel receiving future quotes.
func (h *Hub) Subscribe() chan Quote {
	ch := make(chan Quote, 256)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (h *Hub) Unsubscribe(ch chan Quote) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Last returns the most recent quote seen for a symbol.
func (h *Hub) Last(symbol string) (Quote, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	q, ok := h.last[symbol]
	return q, ok
}
