// Package ws is the thin real-time transport: it adapts websocket
// connections into event sinks and decodes client messages into
// service calls. No workspace or execution logic lives here.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"code-lab/domain/event"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

type outbound struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Session is one live connection. It implements contract.EventSink:
// events are queued on a buffered channel drained by a single writer
// goroutine, since the websocket connection allows only one concurrent
// writer.
type Session struct {
	ID   string
	log  *slog.Logger
	conn *websocket.Conn
	out  chan outbound
	done chan struct{}
	once sync.Once
}

func NewSession(log *slog.Logger, conn *websocket.Conn, bufferSize int) *Session {
	return &Session{
		ID:   uuid.NewString(),
		log:  log,
		conn: conn,
		out:  make(chan outbound, bufferSize),
		done: make(chan struct{}),
	}
}

// Consume queues the event for delivery. A session whose buffer stays
// full past the gateway's sink timeout loses the event; the broadcast
// moves on to the other members.
func (s *Session) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.out <- outbound{Event: e.Name(), Payload: e}:
		return nil
	case <-s.done:
		return fmt.Errorf("session %s closed", s.ID)
	case <-ctx.Done():
		return fmt.Errorf("session %s too slow, event %s dropped: %w", s.ID, e.Name(), ctx.Err())
	}
}

// WritePump drains the outbound queue onto the wire and keeps the
// connection alive with pings. It exits on context cancellation, on
// session close, or on the first write error.
func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case msg := <-s.out:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				s.log.Debug("Session write failed", "session", s.ID, "err", err)
				return
			}
		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
