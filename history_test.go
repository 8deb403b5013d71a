package server

import (
	"testing"

	"outbreak/server/internal/world"
)

func TestHistoryDiscardsOldestPastLimit(t *testing.T) {
	history := NewHistory(3)
	for i := 0; i < 5; i++ {
		history.Append(world.Report{Humans: 10 - i, Zombies: i, Time: float64(i)})
	}

	if history.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", history.Len())
	}
	msg := history.Message()
	if msg.Time[0] != 2 || msg.Time[2] != 4 {
		t.Fatalf("expected samples 2..4 to remain, got %v", msg.Time)
	}
	if msg.Humans[0] != 8 || msg.Zombies[2] != 4 {
		t.Fatalf("unexpected series humans=%v zombies=%v", msg.Humans, msg.Zombies)
	}
}

func TestHistoryPeakPopulation(t *testing.T) {
	history := NewHistory(0)
	if peak := history.PeakPopulation(); peak != 1 {
		t.Fatalf("expected empty history peak of 1, got %d", peak)
	}
	history.Append(world.Report{Humans: 4, Zombies: 1})
	history.Append(world.Report{Humans: 2, Zombies: 7})
	if peak := history.PeakPopulation(); peak != 7 {
		t.Fatalf("expected peak 7, got %d", peak)
	}
	if msg := history.Message(); msg.Peak != 7 {
		t.Fatalf("expected history message to carry peak 7, got %d", msg.Peak)
	}
}

func TestHistoryMessageIsDetached(t *testing.T) {
	history := NewHistory(0)
	history.Append(world.Report{Humans: 1})
	msg := history.Message()
	history.Clear()
	history.Append(world.Report{Humans: 9})

	if msg.Humans[0] != 1 {
		t.Fatalf("expected earlier message to be unaffected, got %v", msg.Humans)
	}
	if history.Len() != 1 {
		t.Fatalf("expected one sample after clear and append, got %d", history.Len())
	}
}
