package server

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeDeadline = 5 * time.Second
	// eventBacklog bounds the events waiting to be written. Older events are dropped when subscribers fall behind.
	eventBacklog = 256
)

// EventHub fans events out to websocket subscribers. Broadcast only hands the event to the hub goroutine, so the
// simulation never waits on a slow client.
type EventHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]chan struct{}

	events   chan []byte
	shutdown chan struct{}
	once     sync.Once
}

func NewEventHub() *EventHub {
	h := &EventHub{
		conns:    make(map[*websocket.Conn]chan struct{}),
		events:   make(chan []byte, eventBacklog),
		shutdown: make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *EventHub) Broadcast(data []byte) {
	select {
	case h.events <- data:
	default:
		log.Warn().Msg("event backlog full, dropping event")
	}
}

func (h *EventHub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *EventHub) run() {
	for {
		select {
		case data := <-h.events:
			h.write(data)
		case <-h.shutdown:
			h.mu.Lock()
			for conn, done := range h.conns {
				close(done)
				delete(h.conns, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *EventHub) write(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, done := range h.conns {
		err := conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err == nil {
			err = conn.WriteMessage(websocket.TextMessage, data)
		}
		if err != nil {
			log.Warn().Err(err).Msg("dropping event subscriber")
			close(done)
			delete(h.conns, conn)
		}
	}
}

// serve keeps a subscriber registered until it disconnects or the hub shuts down.
func (h *EventHub) serve(conn *websocket.Conn) {
	done := make(chan struct{})
	h.mu.Lock()
	h.conns[conn] = done
	h.mu.Unlock()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	select {
	case <-done:
	case <-closed:
		h.mu.Lock()
		if d, ok := h.conns[conn]; ok {
			close(d)
			delete(h.conns, conn)
		}
		h.mu.Unlock()
	}
}

func (h *EventHub) Shutdown() {
	h.once.Do(func() { close(h.shutdown) })
}
