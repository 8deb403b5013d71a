package world

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"outbreak/server/logging"
	loggingsim "outbreak/server/logging/simulation"
	"outbreak/server/logging/sinks"
)

func TestNewSpawnsConfiguredPopulation(t *testing.T) {
	w := newTestWorld(t, Config{HumanCount: 30, ZombieCount: 4, Seed: "spawn"}, Deps{})

	if w.HumanCount() != 30 || w.ZombieCount() != 4 {
		t.Fatalf("expected 30 humans and 4 zombies, got %d/%d", w.HumanCount(), w.ZombieCount())
	}

	snapshot := w.Snapshot()
	for i, agent := range snapshot {
		wantKind := KindHuman
		wantSpeed := HumanSpawnSpeed
		if i >= 30 {
			wantKind = KindZombie
			wantSpeed = ZombieSpawnSpeed
		}
		if agent.Kind != wantKind {
			t.Fatalf("agent %d: expected humans before zombies, got %v", i, agent.Kind)
		}
		if !w.Bounds().Contains(agent.Position) {
			t.Fatalf("agent %d spawned outside bounds at %v", i, agent.Position)
		}
		if !approxEqual(agent.Velocity.Len(), wantSpeed) {
			t.Fatalf("agent %d: expected spawn speed %v, got %v", i, wantSpeed, agent.Velocity.Len())
		}
		if agent.Status != StatusIdle {
			t.Fatalf("agent %d: expected idle status at spawn, got %v", i, agent.Status)
		}
	}
}

func TestNewRejectsNilRNG(t *testing.T) {
	_, err := New(Config{}, Deps{RNG: func(string, string) *rand.Rand { return nil }})
	if err == nil {
		t.Fatalf("expected error for nil rng")
	}
}

func TestResetTreatsNegativeCountsAsZero(t *testing.T) {
	w := newTestWorld(t, Config{HumanCount: 3, ZombieCount: 3}, Deps{})
	w.Step(0.1)

	w.Reset(-2, -7)

	if w.Len() != 0 {
		t.Fatalf("expected empty roster, got %d agents", w.Len())
	}
	if w.Time() != 0 || w.Tick() != 0 {
		t.Fatalf("expected clock reset, got time=%v tick=%d", w.Time(), w.Tick())
	}
}

func TestResetCapsPopulation(t *testing.T) {
	w := newEmptyWorld(t, DefaultBounds())

	w.Reset(MaxPopulation, 2_000_000_000)

	if w.Len() != MaxPopulation {
		t.Fatalf("expected roster capped at %d, got %d", MaxPopulation, w.Len())
	}
	if w.ZombieCount() != 0 {
		t.Fatalf("expected zombies trimmed to fit the cap, got %d", w.ZombieCount())
	}
}

func TestResetUsesCurrentDefaultBiteRadius(t *testing.T) {
	w := newTestWorld(t, Config{ZombieCount: 2}, Deps{})
	w.SetDefaultBiteRadius(1.5)
	w.Reset(0, 2)

	for _, agent := range w.Snapshot() {
		if agent.BiteRadius != 1.5 {
			t.Fatalf("expected bite radius 1.5, got %v", agent.BiteRadius)
		}
	}
}

func TestSpawnClampsIntoBounds(t *testing.T) {
	w := newEmptyWorld(t, NewRect(0, 0, 10, 10))

	id := w.Spawn(KindHuman, Vec2{-5, 25}, Vec2{1, 1})
	agent, ok := w.Agent(id)
	if !ok {
		t.Fatalf("expected spawned agent to be found")
	}
	if agent.Position != (Vec2{0, 10}) {
		t.Fatalf("expected clamped position (0,10), got %v", agent.Position)
	}
}

func TestSetBoundsIgnoresInvalidRect(t *testing.T) {
	w := newEmptyWorld(t, NewRect(0, 0, 10, 10))
	w.SetBounds(Rect{Left: 5, Right: 5, Top: 0, Bottom: 10})
	if w.Bounds() != NewRect(0, 0, 10, 10) {
		t.Fatalf("expected invalid bounds to be ignored, got %+v", w.Bounds())
	}
}

func TestNearestHumanPrefersFirstOnTie(t *testing.T) {
	w := newEmptyWorld(t, NewRect(0, 0, 10, 10))
	first := w.Spawn(KindHuman, Vec2{3, 5}, Vec2{})
	w.Spawn(KindHuman, Vec2{7, 5}, Vec2{})
	w.Spawn(KindZombie, Vec2{5, 5}, Vec2{})

	nearest, ok := w.NearestHuman(Vec2{5, 5})
	if !ok {
		t.Fatalf("expected a nearest human")
	}
	if nearest.ID() != first {
		t.Fatalf("expected the first human in roster order to win the tie")
	}
}

func TestNearestHumanWithoutHumans(t *testing.T) {
	w := newEmptyWorld(t, NewRect(0, 0, 10, 10))
	w.Spawn(KindZombie, Vec2{5, 5}, Vec2{})

	if _, ok := w.NearestHuman(Vec2{1, 1}); ok {
		t.Fatalf("expected no human in a zombie-only world")
	}
}

func TestAgentsWithinRadiusIsInclusive(t *testing.T) {
	w := newEmptyWorld(t, NewRect(0, 0, 20, 20))
	edge := w.Spawn(KindHuman, Vec2{8, 5}, Vec2{})
	w.Spawn(KindHuman, Vec2{8.5, 5}, Vec2{})
	w.Spawn(KindZombie, Vec2{6, 5}, Vec2{})

	found := w.AgentsWithinRadius(Vec2{5, 5}, 3, KindHuman)
	if len(found) != 1 || found[0].ID() != edge {
		t.Fatalf("expected only the human exactly at the radius, got %d agents", len(found))
	}
}

func TestResetPublishesEvents(t *testing.T) {
	sink := sinks.NewMemorySink()
	w := newTestWorld(t, Config{HumanCount: 2, ZombieCount: 1}, Deps{Publisher: sink})

	resets := sink.EventsOfType(loggingsim.EventWorldReset)
	if len(resets) != 1 {
		t.Fatalf("expected one reset event, got %d", len(resets))
	}
	payload, ok := resets[0].Payload.(loggingsim.WorldResetPayload)
	if !ok {
		t.Fatalf("expected reset payload, got %T", resets[0].Payload)
	}
	if payload.Humans != 2 || payload.Zombies != 1 || payload.Width != DefaultWidth {
		t.Fatalf("unexpected reset payload: %+v", payload)
	}

	w.Step(0.1)
	populations := sink.EventsOfType(loggingsim.EventPopulation)
	if len(populations) != 2 {
		t.Fatalf("expected population events for reset and tick, got %d", len(populations))
	}
	if populations[1].Tick != 1 || populations[1].Severity != logging.SeverityDebug {
		t.Fatalf("unexpected population event: %+v", populations[1])
	}
}

func TestObserverSeesEveryReport(t *testing.T) {
	var reports []Report
	w := newTestWorld(t, Config{HumanCount: 1}, Deps{Observer: func(r Report) { reports = append(reports, r) }})
	w.Step(0.1)
	w.Step(0.1)

	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if reports[2].Tick != 2 || !approxEqual(reports[2].Time, 0.2) {
		t.Fatalf("unexpected final report %+v", reports[2])
	}
}

func TestAgentLookupMissing(t *testing.T) {
	w := newEmptyWorld(t, NewRect(0, 0, 10, 10))
	if _, ok := w.Agent(uuid.New()); ok {
		t.Fatalf("expected unknown id to be missing")
	}
}
