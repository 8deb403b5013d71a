package world

import (
	"hash/fnv"
	"math/rand"
)

const (
	rngLabelWorld = "world"
	rngLabelIDs   = "ids"
)

// Rand is the random source agent decisions draw from.
type Rand interface {
	Float64() float64
}

// RNGFactory produces deterministic RNG instances for world subsystems.
type RNGFactory func(rootSeed, label string) *rand.Rand

func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	seedValue := DeterministicSeedValue(rootSeed, label)
	return rand.New(rand.NewSource(seedValue))
}

// RandomRange draws uniformly from [min, max].
func RandomRange(rng Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

// randomSymmetric draws uniformly from [-span, span].
func randomSymmetric(rng Rand, span float64) float64 {
	return (rng.Float64()*2 - 1) * span
}

// forkRNG derives an independent stream from parent. Successive forks of the
// same parent are reproducible for a given parent state.
func forkRNG(parent *rand.Rand) *rand.Rand {
	return rand.New(rand.NewSource(parent.Int63()))
}
