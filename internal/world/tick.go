package world

import (
	"context"
	"math/rand"
	"slices"

	"golang.org/x/sync/errgroup"

	loggingsim "outbreak/server/logging/simulation"
)

// Step advances the simulation by dt. The phases run strictly in order:
// decide, integrate, resolve conversions, clear busy flags, report.
func (w *World) Step(dt float64) {
	w.time += dt
	w.tick++

	w.decideAll()

	for _, agent := range w.agents {
		agent.Integrate(dt, w.bounds)
	}

	w.resolveConversions()

	for _, agent := range w.agents {
		agent.busy = false
	}

	w.report()
}

// decideAll runs every decision against the pre-integration roster. Spawns
// only happen in resolveConversions, so the roster is stable here.
func (w *World) decideAll() {
	roster := w.agents
	if w.workers > 1 {
		w.decideParallel(roster)
		return
	}
	for _, agent := range roster {
		if victim := agent.decide(w, w.rng); victim != nil {
			w.queueBite(victim, agent)
		}
	}
}

// decideParallel splits the roster into fixed batches, each with its own RNG
// forked in batch order, so the outcome does not depend on scheduling.
func (w *World) decideParallel(roster []*Agent) {
	size := defaultDecideBatchSize
	batches := (len(roster) + size - 1) / size
	if batches == 0 {
		return
	}

	rngs := make([]*rand.Rand, batches)
	for i := range rngs {
		rngs[i] = forkRNG(w.rng)
	}
	bites := make([][]pendingConversion, batches)

	var group errgroup.Group
	group.SetLimit(w.workers)
	for i := 0; i < batches; i++ {
		i := i
		start := i * size
		end := min(start+size, len(roster))
		group.Go(func() error {
			for _, agent := range roster[start:end] {
				if victim := agent.decide(w, rngs[i]); victim != nil {
					bites[i] = append(bites[i], pendingConversion{victim: victim, biter: agent})
				}
			}
			return nil
		})
	}
	_ = group.Wait()

	for _, batch := range bites {
		for _, bite := range batch {
			w.queueBite(bite.victim, bite.biter)
		}
	}
}

// queueBite records a conversion for the end of the tick. Duplicate victims
// and non-humans are ignored.
func (w *World) queueBite(victim, biter *Agent) {
	if victim == nil || victim.kind != KindHuman {
		return
	}
	if _, exists := w.queued[victim]; exists {
		return
	}
	w.queued[victim] = struct{}{}
	w.pending = append(w.pending, pendingConversion{victim: victim, biter: biter})
}

// resolveConversions replaces each bitten human with a zombie carrying the
// human's integrated position and velocity. Stale entries are dropped.
func (w *World) resolveConversions() {
	for _, conversion := range w.pending {
		idx := slices.Index(w.agents, conversion.victim)
		if idx < 0 || w.agents[idx].kind != KindHuman {
			continue
		}

		human := w.agents[idx]
		w.agents = slices.Delete(w.agents, idx, idx+1)

		zombie := newZombie(w.newID(), human.state.Position, human.state.Velocity, w.defaultBiteRadius)
		w.agents = append(w.agents, zombie)

		w.publishConversion(conversion, zombie)
	}
	w.clearPending()
}

func (w *World) clearPending() {
	clear(w.pending)
	w.pending = w.pending[:0]
	clear(w.queued)
}

func (w *World) publishConversion(conversion pendingConversion, zombie *Agent) {
	victim := conversion.victim
	payload := loggingsim.ConversionPayload{
		ZombieID:   zombie.id.String(),
		X:          zombie.state.Position.X(),
		Y:          zombie.state.Position.Y(),
		BiteRadius: zombie.biteRadius,
	}
	actor := entityRef(victim)
	if conversion.biter != nil {
		actor = entityRef(conversion.biter)
	}
	loggingsim.Conversion(context.Background(), w.publisher, w.tick, actor, entityRef(victim), payload, nil)
}
