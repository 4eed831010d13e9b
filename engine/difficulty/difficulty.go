// Package difficulty composes effective targets from a base difficulty and
// named situational modifiers, and converts between the traditional and
// success-counting difficulty scales.
package difficulty

import "github.com/nathoo/dicecore/types"

// MinTarget is the lowest effective target any check can have.
const MinTarget = 1

// TraditionalPerSuccess is the traditional-scale width of one required net
// success.
const TraditionalPerSuccess = 6

// Target is a composed difficulty on the success-counting scale.
type Target struct {
	Base        int
	Modifiers   []types.Modifier
	Raw         int // Base + sum of modifier values
	Effective   int // Raw raised to the floor
	Floored     bool
	Traditional int // source rating when converted, else 0
}

// Compose aggregates base and mods into a Target floored at MinTarget.
func Compose(base int, mods ...types.Modifier) Target {
	return ComposeWithFloor(MinTarget, base, mods...)
}

// ComposeWithFloor is Compose with a feature-specific floor. Floors below
// MinTarget are raised to MinTarget.
func ComposeWithFloor(floor, base int, mods ...types.Modifier) Target {
	if floor < MinTarget {
		floor = MinTarget
	}
	t := Target{Base: base, Raw: base}
	for _, m := range mods {
		t.Raw += m.Value
	}
	if len(mods) > 0 {
		t.Modifiers = append([]types.Modifier(nil), mods...)
	}
	t.Effective = t.Raw
	if t.Effective < floor {
		t.Effective = floor
		t.Floored = true
	}
	return t
}

// SuccessCounting converts a traditional-scale rating to the number of net
// successes required: max(1, ceil(traditional/6)).
func SuccessCounting(traditional int) int {
	if traditional <= 0 {
		return MinTarget
	}
	n := (traditional + TraditionalPerSuccess - 1) / TraditionalPerSuccess
	if n < MinTarget {
		return MinTarget
	}
	return n
}

// FromTraditional converts rating to the success-counting scale and then
// applies mods, which are already on the success-counting scale.
func FromTraditional(rating int, mods ...types.Modifier) Target {
	t := Compose(SuccessCounting(rating), mods...)
	t.Traditional = rating
	return t
}

// Modifiers accumulates named modifiers, skipping zero values so a Target
// lists only what applied.
type Modifiers []types.Modifier

// Add appends a modifier when value is non-zero.
func (m *Modifiers) Add(name string, value int) {
	if value == 0 {
		return
	}
	*m = append(*m, types.Modifier{Name: name, Value: value})
}

// Sum returns the total of all modifier values.
func (m Modifiers) Sum() int {
	total := 0
	for _, mod := range m {
		total += mod.Value
	}
	return total
}

// Disclosure reports how much an analysis roll uncovered.
type Disclosure struct {
	DifficultyRevealed   bool
	ConsequencesRevealed bool
	HintRevealed         bool
}

// Reveal applies the progressive information thresholds: net >= target-2
// reveals the difficulty, net >= target reveals consequences and
// net >= target+2 reveals a hint.
func Reveal(net, target int) Disclosure {
	return Disclosure{
		DifficultyRevealed:   net >= target-2,
		ConsequencesRevealed: net >= target,
		HintRevealed:         net >= target+2,
	}
}
