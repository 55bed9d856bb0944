package feed

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/types"
)

// Server broadcasts wire-encoded combat events to websocket viewers.
// It implements bus.Listener; subscribe it to the kinds worth replicating.
type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// client is one connected viewer with a bounded outbound queue.
type client struct {
	out chan []byte
}

// NewServer creates a broadcast server. A nil logger discards output.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(nopWriter{}, "", 0)
	}
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: map[*client]struct{}{},
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// HandleEvent encodes one event and fans it out. Clients too slow to
// drain their queue are dropped rather than blocking the bus.
func (s *Server) HandleEvent(e types.CombatEvent) {
	b, err := bus.Encode(e)
	if err != nil {
		s.log.Printf("[feed] encode failed: %v", err)
		return
	}

	s.mu.Lock()
	for c := range s.clients {
		select {
		case c.out <- b:
		default:
			delete(s.clients, c)
			close(c.out)
			s.log.Printf("[feed] dropped slow client")
		}
	}
	s.mu.Unlock()
}

// Clients returns the number of connected viewers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects all viewers and rejects new ones.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for c := range s.clients {
		close(c.out)
		delete(s.clients, c)
	}
}

// Handler upgrades HTTP requests to websocket viewer connections. Viewers
// are write-only: inbound messages are read and discarded until close.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{out: make(chan []byte, 256)}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.clients[c] = struct{}{}
		s.mu.Unlock()

		detach := func() {
			s.mu.Lock()
			if _, ok := s.clients[c]; ok {
				delete(s.clients, c)
				close(c.out)
			}
			s.mu.Unlock()
		}

		done := make(chan struct{})

		// Writer goroutine.
		go func() {
			defer close(done)
			for b := range c.out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		}()

		// Reader loop, only to detect disconnect.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		detach()
		<-done
	}
}
