package world

const (
	// ZombieSpeed is both the pursuit and the wander speed.
	ZombieSpeed = 8.0
	// ZombieSpawnSpeed is the initial heading magnitude given at reset.
	ZombieSpawnSpeed = 4.0
	zombieJitter     = 3.0
)

// decideZombie chases the nearest human, bites it when in range, or wanders
// when no humans remain. The returned agent is the bite victim, if any.
func decideZombie(a *Agent, view View, rng Rand) *Agent {
	target, ok := view.NearestHuman(a.state.Position)
	if !ok {
		zombieWander(a, rng)
		return nil
	}

	diff := target.Position().Sub(a.state.Position)
	distance := diff.Len()

	if distance <= a.biteRadius {
		var victim *Agent
		if !a.busy {
			victim = target
			a.busy = true
		}
		a.state.Velocity = Vec2{}
		return victim
	}

	if distance > velocityEpsilon {
		a.state.Velocity = diff.Mul(a.speed / distance)
	}
	return nil
}

// zombieWander mirrors the human jitter but keeps a near-zero result as is.
func zombieWander(a *Agent, rng Rand) {
	jitter := Vec2{randomSymmetric(rng, zombieJitter), randomSymmetric(rng, zombieJitter)}
	vel := a.state.Velocity.Add(jitter)

	if length := vel.Len(); length > velocityEpsilon {
		vel = vel.Mul(a.speed / length)
	}

	a.state.Velocity = vel
}
