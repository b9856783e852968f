package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/airframe/internal/app"
	"github.com/ayusman/airframe/internal/studio"
)

const (
	// eventBuffer is how many feedback events a slow client may fall behind.
	eventBuffer = 16
	writeWait   = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler broadcasts action feedback to websocket clients.
type EventsHandler struct {
	log     *slog.Logger
	cancel  func()
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan studio.Feedback
	closed  bool
}

// NewEventsHandler creates an EventsHandler subscribed to a's feedback.
func NewEventsHandler(a *app.App, log *slog.Logger) *EventsHandler {
	h := &EventsHandler{
		log:     log,
		clients: make(map[*websocket.Conn]chan studio.Feedback),
	}
	h.cancel = a.Subscribe(h.broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch := make(chan studio.Feedback, eventBuffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[conn] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Reads detect the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case fb, ok := <-ch:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(fb); err != nil {
				return
			}
		}
	}
}

// broadcast queues fb for every client. Clients whose queue is full miss it.
func (h *EventsHandler) broadcast(fb studio.Feedback) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, ch := range h.clients {
		select {
		case ch <- fb:
		default:
			h.log.Debug("websocket client lagging, event dropped", slog.String("remote", conn.RemoteAddr().String()))
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unsubscribes from the app and disconnects every client.
func (h *EventsHandler) Close() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for conn, ch := range h.clients {
		close(ch)
		delete(h.clients, conn)
	}
}
