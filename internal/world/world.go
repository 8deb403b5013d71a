package world

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"outbreak/server/logging"
	loggingsim "outbreak/server/logging/simulation"
)

// View is the read-only spatial query surface offered to decisions. Agents
// returned by a View must not be retained past the current tick.
type View interface {
	NearestHuman(point Vec2) (*Agent, bool)
	AgentsWithinRadius(point Vec2, radius float64, kind Kind) []*Agent
}

// Report is the population summary emitted after every reset and step.
type Report struct {
	Humans  int
	Zombies int
	Time    float64
	Tick    uint64
}

// Observer receives reports synchronously from Reset and Step.
type Observer func(Report)

// Deps bundles runtime dependencies required to construct a World instance.
type Deps struct {
	Publisher logging.Publisher
	RNG       RNGFactory
	Observer  Observer
}

type pendingConversion struct {
	victim *Agent
	biter  *Agent
}

// World owns the roster, the pending conversions and the tick pipeline. It
// is not safe for concurrent use; drivers serialise calls.
type World struct {
	publisher logging.Publisher
	rng       *rand.Rand
	ids       *rand.Rand
	observer  Observer

	bounds            Rect
	defaultBiteRadius float64
	workers           int

	agents  []*Agent
	pending []pendingConversion
	queued  map[*Agent]struct{}

	time float64
	tick uint64
}

// New constructs a world with normalized configuration and seeded RNG, then
// spawns the configured population.
func New(cfg Config, deps Deps) (*World, error) {
	normalized := cfg.normalized()

	factory := deps.RNG
	if factory == nil {
		factory = NewDeterministicRNG
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	rng := factory(normalized.Seed, rngLabelWorld)
	if rng == nil {
		return nil, fmt.Errorf("rng factory returned nil for %q", rngLabelWorld)
	}
	ids := factory(normalized.Seed, rngLabelIDs)
	if ids == nil {
		return nil, fmt.Errorf("rng factory returned nil for %q", rngLabelIDs)
	}

	w := &World{
		publisher:         publisher,
		rng:               rng,
		ids:               ids,
		observer:          deps.Observer,
		bounds:            normalized.Bounds,
		defaultBiteRadius: normalized.DefaultBiteRadius,
		workers:           normalized.DecideWorkers,
		queued:            make(map[*Agent]struct{}),
	}

	w.Reset(normalized.HumanCount, normalized.ZombieCount)
	return w, nil
}

// SetObserver replaces the report callback. A nil observer disables reports.
func (w *World) SetObserver(observer Observer) {
	w.observer = observer
}

func (w *World) Bounds() Rect {
	return w.bounds
}

// SetBounds changes the plane used by later spawns and integrations. Invalid
// rectangles are ignored.
func (w *World) SetBounds(bounds Rect) {
	if !bounds.Valid() {
		return
	}
	w.bounds = bounds
}

// SetDefaultBiteRadius affects zombies created afterwards only.
func (w *World) SetDefaultBiteRadius(radius float64) {
	w.defaultBiteRadius = radius
}

func (w *World) DefaultBiteRadius() float64 {
	return w.defaultBiteRadius
}

func (w *World) Time() float64 {
	return w.time
}

func (w *World) Tick() uint64 {
	return w.tick
}

// Reset clears the roster and spawns a fresh population at random positions.
// Counts are bounded by ClampPopulation.
func (w *World) Reset(humans, zombies int) {
	clear(w.agents)
	w.agents = w.agents[:0]
	w.clearPending()
	w.time = 0
	w.tick = 0

	humans, zombies = ClampPopulation(humans, zombies)
	w.spawnRandom(KindHuman, humans, HumanSpawnSpeed)
	w.spawnRandom(KindZombie, zombies, ZombieSpawnSpeed)

	loggingsim.WorldReset(context.Background(), w.publisher, w.tick, loggingsim.WorldResetPayload{
		Humans:     humans,
		Zombies:    zombies,
		BiteRadius: w.defaultBiteRadius,
		Width:      w.bounds.Width(),
		Height:     w.bounds.Height(),
	}, nil)

	w.report()
}

// Spawn places a single agent, clamped into bounds. Zombies copy the current
// default bite radius.
func (w *World) Spawn(kind Kind, position, velocity Vec2) uuid.UUID {
	agent := w.newAgent(kind, w.bounds.Clamp(position), velocity)
	w.agents = append(w.agents, agent)
	return agent.id
}

func (w *World) spawnRandom(kind Kind, count int, speed float64) {
	for i := 0; i < count; i++ {
		position := Vec2{
			RandomRange(w.rng, w.bounds.Left, w.bounds.Right),
			RandomRange(w.rng, w.bounds.Top, w.bounds.Bottom),
		}
		heading := Vec2{RandomRange(w.rng, -1, 1), RandomRange(w.rng, -1, 1)}
		w.agents = append(w.agents, w.newAgent(kind, position, unitOrX(heading).Mul(speed)))
	}
}

func (w *World) newAgent(kind Kind, position, velocity Vec2) *Agent {
	if kind == KindZombie {
		return newZombie(w.newID(), position, velocity, w.defaultBiteRadius)
	}
	return newHuman(w.newID(), position, velocity)
}

func (w *World) newID() uuid.UUID {
	return uuid.Must(uuid.NewRandomFromReader(w.ids))
}

// unitOrX normalizes v, falling back to +X for degenerate headings.
func unitOrX(v Vec2) Vec2 {
	if v.Len() < 1e-6 {
		return Vec2{1, 0}
	}
	return v.Normalize()
}

// NearestHuman returns the human closest to point. Ties go to the agent
// found first in roster order.
func (w *World) NearestHuman(point Vec2) (*Agent, bool) {
	var closest *Agent
	best := 0.0
	for _, agent := range w.agents {
		if agent.kind != KindHuman {
			continue
		}
		d := Distance(agent.state.Position, point)
		if closest == nil || d < best {
			closest = agent
			best = d
		}
	}
	return closest, closest != nil
}

// AgentsWithinRadius lists agents of kind whose distance to point is at most
// radius, in roster order.
func (w *World) AgentsWithinRadius(point Vec2, radius float64, kind Kind) []*Agent {
	var result []*Agent
	for _, agent := range w.agents {
		if agent.kind != kind {
			continue
		}
		if Distance(agent.state.Position, point) <= radius {
			result = append(result, agent)
		}
	}
	return result
}

func (w *World) HumanCount() int {
	return w.count(KindHuman)
}

func (w *World) ZombieCount() int {
	return w.count(KindZombie)
}

func (w *World) count(kind Kind) int {
	n := 0
	for _, agent := range w.agents {
		if agent.kind == kind {
			n++
		}
	}
	return n
}

// Len returns the roster size.
func (w *World) Len() int {
	return len(w.agents)
}

// Snapshot copies every agent in roster order.
func (w *World) Snapshot() []AgentSnapshot {
	out := make([]AgentSnapshot, len(w.agents))
	for i, agent := range w.agents {
		out[i] = agent.snapshot()
	}
	return out
}

// Agent looks up a live agent by id.
func (w *World) Agent(id uuid.UUID) (AgentSnapshot, bool) {
	for _, agent := range w.agents {
		if agent.id == id {
			return agent.snapshot(), true
		}
	}
	return AgentSnapshot{}, false
}

func (w *World) Report() Report {
	humans, zombies := 0, 0
	for _, agent := range w.agents {
		switch agent.kind {
		case KindHuman:
			humans++
		case KindZombie:
			zombies++
		}
	}
	return Report{Humans: humans, Zombies: zombies, Time: w.time, Tick: w.tick}
}

func (w *World) report() {
	r := w.Report()
	loggingsim.Population(context.Background(), w.publisher, r.Tick, loggingsim.PopulationPayload{
		Humans:  r.Humans,
		Zombies: r.Zombies,
		Time:    r.Time,
	}, nil)
	if w.observer != nil {
		w.observer(r)
	}
}

func entityRef(agent *Agent) logging.EntityRef {
	kind := logging.EntityKindHuman
	if agent.kind == KindZombie {
		kind = logging.EntityKindZombie
	}
	return logging.EntityRef{ID: agent.id.String(), Kind: kind}
}
