package world

import "strings"

const (
	DefaultSeed            = "outbreak"
	DefaultBiteRadius      = 6.0
	DefaultWidth           = 120.0
	DefaultHeight          = 80.0
	DefaultDecideWorkers   = 1
	defaultDecideBatchSize = 64
	maxDecideWorkers       = 256

	// MaxPopulation caps humans plus zombies for a single reset.
	MaxPopulation = 10000
)

// ClampPopulation treats negative counts as zero and trims the pair so the
// total stays within MaxPopulation. Humans are kept first.
func ClampPopulation(humans, zombies int) (int, int) {
	humans = min(max(humans, 0), MaxPopulation)
	zombies = min(max(zombies, 0), MaxPopulation-humans)
	return humans, zombies
}

// Config describes the population and geometry used when the world is
// constructed. Counts are applied by New through Reset.
type Config struct {
	HumanCount        int     `json:"humanCount"`
	ZombieCount       int     `json:"zombieCount"`
	DefaultBiteRadius float64 `json:"defaultBiteRadius"`
	Bounds            Rect    `json:"bounds"`
	Seed              string  `json:"seed"`
	// DecideWorkers > 1 runs the decision phase across goroutines.
	DecideWorkers int `json:"decideWorkers"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	normalized.HumanCount, normalized.ZombieCount = ClampPopulation(normalized.HumanCount, normalized.ZombieCount)
	if normalized.DefaultBiteRadius <= 0 {
		normalized.DefaultBiteRadius = DefaultBiteRadius
	}
	if !normalized.Bounds.Valid() {
		normalized.Bounds = DefaultBounds()
	}
	if normalized.DecideWorkers <= 0 {
		normalized.DecideWorkers = DefaultDecideWorkers
	}
	if normalized.DecideWorkers > maxDecideWorkers {
		normalized.DecideWorkers = maxDecideWorkers
	}
	return normalized
}

// Normalized returns the configuration with defaults applied.
func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

// DefaultBounds is the 120x80 plane anchored at the origin.
func DefaultBounds() Rect {
	return NewRect(0, 0, DefaultWidth, DefaultHeight)
}

func DefaultConfig() Config {
	return Config{
		HumanCount:        0,
		ZombieCount:       0,
		DefaultBiteRadius: DefaultBiteRadius,
		Bounds:            DefaultBounds(),
		Seed:              DefaultSeed,
		DecideWorkers:     DefaultDecideWorkers,
	}
}
