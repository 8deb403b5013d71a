package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// SubscriberConn is the subset of *websocket.Conn the hub writes to.
type SubscriberConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// subscriber owns a single writer goroutine so concurrent broadcasts never
// interleave frames on one connection.
type subscriber struct {
	id        uint64
	conn      SubscriberConn
	queue     chan []byte
	done      chan struct{}
	closeOnce sync.Once
	onFailure func(id uint64, err error)
}

func newSubscriber(id uint64, conn SubscriberConn, buffer int, onFailure func(uint64, error)) *subscriber {
	sub := &subscriber{
		id:        id,
		conn:      conn,
		queue:     make(chan []byte, buffer),
		done:      make(chan struct{}),
		onFailure: onFailure,
	}
	go sub.run()
	return sub
}

// enqueue reports false when the subscriber is closed or its queue is full.
func (s *subscriber) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.queue <- data:
		return true
	default:
		return false
	}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.queue:
			if err := s.write(data); err != nil {
				if s.onFailure != nil {
					s.onFailure(s.id, err)
				}
				return
			}
		}
	}
}

func (s *subscriber) write(data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *subscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
