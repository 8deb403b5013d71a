package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"outbreak/server/internal/net/proto"
	"outbreak/server/internal/telemetry"
	"outbreak/server/internal/world"
	"outbreak/server/logging"
	loggingsim "outbreak/server/logging/simulation"
)

// Hub drives the world at a fixed cadence and fans state out to websocket
// subscribers. All world access goes through the hub mutex.
type Hub struct {
	mu      sync.Mutex
	cfg     HubConfig
	world   *world.World
	history *History
	dt      float64
	running bool

	subscribers map[uint64]*subscriber
	nextID      atomic.Uint64

	publisher     logging.Publisher
	logger        telemetry.Logger
	overrunStreak uint64
}

// NewHub builds the world from cfg.World and wires the hub as its observer.
func NewHub(cfg HubConfig, publisher logging.Publisher) (*Hub, error) {
	normalized := cfg.normalized()
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	h := &Hub{
		cfg:         normalized,
		history:     NewHistory(normalized.HistoryLimit),
		dt:          normalized.Dt,
		running:     normalized.AutoStart,
		subscribers: make(map[uint64]*subscriber),
		publisher:   publisher,
		logger:      normalized.Logger,
	}

	w, err := world.New(normalized.World, world.Deps{Publisher: publisher, Observer: h.record})
	if err != nil {
		return nil, fmt.Errorf("construct world: %w", err)
	}
	h.world = w
	return h, nil
}

// record is the world observer; it runs while the hub mutex is held.
func (h *Hub) record(report world.Report) {
	h.history.Append(report)
}

func (h *Hub) State() proto.StateMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stateLocked()
}

func (h *Hub) History() proto.HistoryMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.history.Message()
}

func (h *Hub) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *Hub) Dt() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dt
}

func (h *Hub) stateLocked() proto.StateMessage {
	report := h.world.Report()
	bounds := h.world.Bounds()
	snapshot := h.world.Snapshot()

	agents := make([]proto.Agent, len(snapshot))
	for i, agent := range snapshot {
		agents[i] = proto.Agent{
			ID:   agent.ID.String(),
			Kind: agent.Kind.String(),
			X:    agent.Position.X(),
			Y:    agent.Position.Y(),
		}
	}

	return proto.StateMessage{
		Ver:     proto.Version,
		Type:    proto.TypeState,
		Running: h.running,
		Dt:      h.dt,
		Population: proto.Population{
			Humans:  report.Humans,
			Zombies: report.Zombies,
			Time:    report.Time,
			Tick:    report.Tick,
		},
		Bounds: proto.Bounds{
			Left:   bounds.Left,
			Top:    bounds.Top,
			Right:  bounds.Right,
			Bottom: bounds.Bottom,
		},
		Agents: agents,
	}
}

// Reset pauses the loop, clears the history and respawns the population. A
// positive biteRadius becomes the default for the new zombies.
func (h *Hub) Reset(humans, zombies int, biteRadius float64) proto.StateMessage {
	h.mu.Lock()
	h.running = false
	h.history.Clear()
	if biteRadius > 0 {
		h.world.SetDefaultBiteRadius(biteRadius)
	}
	h.world.Reset(humans, zombies)
	msg := h.stateLocked()
	h.broadcastLocked(msg)
	h.mu.Unlock()
	return msg
}

func (h *Hub) Start() {
	h.setRunning(true)
}

func (h *Hub) Pause() {
	h.setRunning(false)
}

// Stop pauses the loop and publishes the full population history.
func (h *Hub) Stop() proto.HistoryMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setRunningLocked(false)
	msg := h.history.Message()
	h.broadcastLocked(msg)
	return msg
}

func (h *Hub) setRunning(running bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setRunningLocked(running)
}

func (h *Hub) setRunningLocked(running bool) {
	h.running = running
	h.broadcastLocked(h.stateLocked())
}

func (h *Hub) SetDt(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: dt must be positive", proto.ErrInvalidCommand)
	}
	h.mu.Lock()
	h.dt = dt
	h.mu.Unlock()
	return nil
}

// SetDefaultBiteRadius applies to zombies spawned or converted afterwards.
func (h *Hub) SetDefaultBiteRadius(radius float64) error {
	if radius <= 0 {
		return fmt.Errorf("%w: biteRadius must be positive", proto.ErrInvalidCommand)
	}
	h.mu.Lock()
	h.world.SetDefaultBiteRadius(radius)
	h.mu.Unlock()
	return nil
}

// Advance runs one tick regardless of the running flag and broadcasts the
// resulting state.
func (h *Hub) Advance() proto.StateMessage {
	msg, _ := h.advance()
	return msg
}

func (h *Hub) advance() (proto.StateMessage, time.Duration) {
	h.mu.Lock()
	start := time.Now()
	h.world.Step(h.dt)
	elapsed := time.Since(start)
	msg := h.stateLocked()
	h.broadcastLocked(msg)
	h.mu.Unlock()
	return msg, elapsed
}

// RunSimulation drives the fixed-rate tick loop until ctx is cancelled.
// Ticks are skipped while the hub is paused.
func (h *Hub) RunSimulation(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !h.Running() {
				continue
			}
			msg, elapsed := h.advance()
			h.checkTickBudget(ctx, msg.Population.Tick, elapsed)
		}
	}
}

func (h *Hub) checkTickBudget(ctx context.Context, tick uint64, elapsed time.Duration) {
	budget := h.cfg.TickInterval
	if elapsed <= budget {
		h.overrunStreak = 0
		return
	}
	h.overrunStreak++
	loggingsim.TickBudgetOverrun(ctx, h.publisher, tick, loggingsim.TickBudgetOverrunPayload{
		DurationMillis: elapsed.Milliseconds(),
		BudgetMillis:   budget.Milliseconds(),
		Ratio:          float64(elapsed) / float64(budget),
		Streak:         h.overrunStreak,
	}, nil)
}

// Subscribe registers conn and queues the current state as its first
// message. The returned id is used to unsubscribe.
func (h *Hub) Subscribe(conn SubscriberConn) uint64 {
	id := h.nextID.Add(1)
	sub := newSubscriber(id, conn, h.cfg.SubscriberBuffer, h.handleWriteFailure)

	h.mu.Lock()
	defer h.mu.Unlock()
	data, err := json.Marshal(h.stateLocked())
	if err != nil {
		h.logger.Printf("failed to marshal initial state for subscriber %d: %v", id, err)
	} else {
		sub.enqueue(data)
	}
	h.subscribers[id] = sub
	return id
}

func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	sub := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Send queues payload for a single subscriber.
func (h *Hub) Send(id uint64, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("failed to marshal message for subscriber %d: %v", id, err)
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := h.subscribers[id]
	if sub == nil {
		return false
	}
	return sub.enqueue(data)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[uint64]*subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (h *Hub) handleWriteFailure(id uint64, err error) {
	h.logger.Printf("failed to send update to subscriber %d: %v", id, err)
	h.Unsubscribe(id)
}

// broadcastLocked queues payload for every subscriber. Callers hold h.mu so
// frames reach each queue in the order the state changed; enqueue never
// blocks.
func (h *Hub) broadcastLocked(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("failed to marshal broadcast: %v", err)
		return
	}

	for _, sub := range h.subscribers {
		if !sub.enqueue(data) {
			h.logger.Printf("subscriber %d backlog full, dropping update", sub.id)
		}
	}
}
