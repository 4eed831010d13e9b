package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// RNG wraps math/rand.Rand with deterministic position tracking. The
// position counts draws from the underlying source, so a session can be
// resumed exactly from (seed, position). RNG satisfies dice.Source.
type RNG struct {
	seed int64
	src  *countedSource
	rand *rand.Rand
}

// countedSource counts every value drawn from the wrapped source.
type countedSource struct {
	rand.Source
	draws int64
}

func (s *countedSource) Int63() int64 {
	s.draws++
	return s.Source.Int63()
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	src := &countedSource{Source: rand.NewSource(seed)}
	return &RNG{
		seed: seed,
		src:  src,
		rand: rand.New(src),
	}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Intn returns a random integer in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	return r.rand.Intn(n)
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.rand.Intn(sides) + 1
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of source draws made since creation.
func (r *RNG) Position() int64 {
	return r.src.draws
}

// RestoreRNG creates an RNG and advances it to the given position, so the
// next draw matches the one a live session would have made.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for rng.src.draws < position {
		rng.src.Int63()
	}
	return rng
}
