package world

const (
	// HumanSpeed is the cruise speed humans rescale to after each decision.
	HumanSpeed = 12.0
	// HumanSpawnSpeed is the initial heading magnitude given at reset.
	HumanSpawnSpeed = 8.0
	humanJitter     = 4.0

	// velocityEpsilon guards normalisation against near-zero vectors.
	velocityEpsilon = 1e-3
)

// decideHuman perturbs the current heading and rescales it to cruise speed.
// Humans never look at other agents.
func decideHuman(a *Agent, rng Rand) {
	a.state.Status = StatusMoving

	jitter := Vec2{randomSymmetric(rng, humanJitter), randomSymmetric(rng, humanJitter)}
	vel := a.state.Velocity.Add(jitter)

	if length := vel.Len(); length > velocityEpsilon {
		vel = vel.Mul(a.speed / length)
	} else {
		// Near-total cancellation: pick a fresh, unnormalised heading.
		vel = Vec2{randomSymmetric(rng, a.speed), randomSymmetric(rng, a.speed)}
	}

	a.state.Velocity = vel
}
