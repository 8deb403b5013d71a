package server

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"outbreak/server/internal/net/proto"
	"outbreak/server/logging"
)

// newTestHub builds a paused hub over a small world.
func newTestHub(t *testing.T, humans, zombies int, publisher logging.Publisher) *Hub {
	t.Helper()
	cfg := DefaultHubConfig()
	cfg.World.HumanCount = humans
	cfg.World.ZombieCount = zombies
	cfg.World.Seed = "hub-test"
	hub, err := NewHub(cfg, publisher)
	if err != nil {
		t.Fatalf("failed to construct hub: %v", err)
	}
	t.Cleanup(hub.Close)
	return hub
}

type fakeConn struct {
	mu          sync.Mutex
	messages    [][]byte
	writeErr    error
	deadlineErr error
	closed      bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.messages = append(c.messages, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadlineErr
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

// waitForFrames polls until conn has received at least n frames.
func waitForFrames(t *testing.T, conn *fakeConn, n int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if frames := conn.frames(); len(frames) >= n {
			return frames
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, got %d", n, len(conn.frames()))
	return nil
}

func decodeType(t *testing.T, frame []byte) string {
	t.Helper()
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}
	return envelope.Type
}

func decodeState(t *testing.T, frame []byte) proto.StateMessage {
	t.Helper()
	var state proto.StateMessage
	if err := json.Unmarshal(frame, &state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if state.Type != proto.TypeState {
		t.Fatalf("expected state frame, got %q", state.Type)
	}
	return state
}

var errBrokenPipe = errors.New("broken pipe")
