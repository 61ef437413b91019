package gateway

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEvent is the envelope pushed to dashboard WebSocket clients.
type wsEvent struct {
	Type string `json:"type"` // "notification" or "quote"
	Data any    `json:"data"`
}

const wsPingInterval = 30 * time.Second

// handleWebSocket streams notifications and live quotes to one client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gateway: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	notifications := s.deps.Center.Subscribe()
	defer s.deps.Center.Unsubscribe(notifications)

	quotes := s.deps.Hub.Subscribe()
	defer s.deps.Hub.Unsubscribe(quotes)

	// Reader goroutine: the client sends nothing meaningful, but reading
	// is how we learn the connection closed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-s.baseCtx.Done():
			return
		case n := <-notifications:
			if err := conn.WriteJSON(wsEvent{Type: "notification", Data: n}); err != nil {
				return
			}
		case q := <-quotes:
			if err := conn.WriteJSON(wsEvent{Type: "quote", Data: q}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
