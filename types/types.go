// Package types defines the shared data structures for the dicecore engine.
// Apart from a few Outcome helpers this package holds only type definitions.
package types

import "fmt"

// Feature names the gameplay feature a check belongs to. Features select
// per-feature outcome thresholds and label journal entries and spans.
type Feature string

const (
	FeatureCheck        Feature = "check"
	FeatureContest      Feature = "contest"
	FeatureClimb        Feature = "climb"
	FeatureLeap         Feature = "leap"
	FeatureBalance      Feature = "balance"
	FeatureCrashLanding Feature = "crash_landing"
	FeatureStealth      Feature = "stealth"
	FeatureTrapDetect   Feature = "trap_detect"
	FeatureTrapAnalyze  Feature = "trap_analyze"
	FeatureTrapDisarm   Feature = "trap_disarm"
	FeatureBypass       Feature = "bypass"
	FeatureWillSave     Feature = "will_save"
	FeaturePersuasion   Feature = "persuasion"
	FeatureIntimidation Feature = "intimidation"
	FeatureNegotiation  Feature = "negotiation"
	FeatureScout        Feature = "scout"
	FeatureSynergy      Feature = "synergy"

	// FeatureDamage labels sum-based damage rolls, which are journaled
	// for RNG position tracking but never classified.
	FeatureDamage Feature = "damage"
)

// Outcome is the six-tier classified result of a check. The constants are
// ordered so that comparisons follow the tier order.
type Outcome int

const (
	CriticalFailure Outcome = iota
	Failure
	MarginalSuccess
	FullSuccess
	ExceptionalSuccess
	CriticalSuccess
)

var outcomeNames = [...]string{
	CriticalFailure:    "CriticalFailure",
	Failure:            "Failure",
	MarginalSuccess:    "MarginalSuccess",
	FullSuccess:        "FullSuccess",
	ExceptionalSuccess: "ExceptionalSuccess",
	CriticalSuccess:    "CriticalSuccess",
}

// String returns the tier name. It panics on a value outside the six tiers.
func (o Outcome) String() string {
	if o < CriticalFailure || o > CriticalSuccess {
		panic(fmt.Sprintf("types: unknown outcome %d", int(o)))
	}
	return outcomeNames[o]
}

// IsSuccess reports whether the outcome is MarginalSuccess or better.
func (o Outcome) IsSuccess() bool { return o >= MarginalSuccess }

// IsCritical reports whether the outcome is CriticalSuccess.
func (o Outcome) IsCritical() bool { return o == CriticalSuccess }

// ParseOutcome returns the outcome with the given tier name.
func ParseOutcome(name string) (Outcome, bool) {
	for i, n := range outcomeNames {
		if n == name {
			return Outcome(i), true
		}
	}
	return 0, false
}

// Roll is the raw result of one dice pool roll. It is produced once by the
// roller and never mutated.
type Roll struct {
	Pool      int   // dice actually rolled, before explosions
	Faces     []int // every die face in roll order, explosions included
	Successes int
	Botches   int
	Net       int // Successes - Botches; may be negative
	Fumble    bool
	Critical  bool
	Exploded  int
}

// Modifier is one named, signed adjustment to a difficulty or dice pool.
type Modifier struct {
	Name  string
	Value int
}

// DiceExpr describes Count dice of Sides faces, e.g. 3d10.
type DiceExpr struct {
	Count int
	Sides int
}

// IsZero reports whether the expression rolls no dice.
func (d DiceExpr) IsZero() bool { return d.Count == 0 }

func (d DiceExpr) String() string {
	if d.Count == 0 {
		return "0"
	}
	return fmt.Sprintf("%dd%d", d.Count, d.Sides)
}

// Status is a named condition applied for a number of rounds.
type Status struct {
	Name   string
	Rounds int
}

// Effect is a single atomic arena mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Condition is a predicate over an emitted event and the arena. Inner is
// set only for "not".
type Condition struct {
	Type   string
	Params map[string]any
	Inner  *Condition
}

// EventHandler runs its effects when an event of EventType is emitted and
// every condition holds.
type EventHandler struct {
	EventType  string
	Conditions []Condition
	Effects    []Effect
}
