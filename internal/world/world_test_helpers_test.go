package world

import (
	"math"
	"math/rand"
	"testing"
)

// constSource makes rand.Rand.Float64 return exactly 0.5, i.e. zero jitter.
type constSource struct{}

func (constSource) Int63() int64 { return 1 << 62 }
func (constSource) Seed(int64)   {}

// neutralWorldRNG pins the decision stream to 0.5 while keeping ids unique.
func neutralWorldRNG(rootSeed, label string) *rand.Rand {
	if label == rngLabelWorld {
		return rand.New(constSource{})
	}
	return NewDeterministicRNG(rootSeed, label)
}

// sequenceRand replays a fixed list of draws.
type sequenceRand struct {
	values []float64
	next   int
}

func (s *sequenceRand) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func newTestWorld(t *testing.T, cfg Config, deps Deps) *World {
	t.Helper()
	w, err := New(cfg, deps)
	if err != nil {
		t.Fatalf("failed to construct world: %v", err)
	}
	return w
}

// newEmptyWorld builds a world with no agents over bounds and the neutral RNG.
func newEmptyWorld(t *testing.T, bounds Rect) *World {
	t.Helper()
	return newTestWorld(t, Config{Bounds: bounds, Seed: "scenario"}, Deps{RNG: neutralWorldRNG})
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func approxVec(a, b Vec2) bool {
	return approxEqual(a.X(), b.X()) && approxEqual(a.Y(), b.Y())
}
