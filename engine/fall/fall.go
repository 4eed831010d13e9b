// Package fall computes fall damage dice and crash-landing mitigation.
package fall

import (
	"fmt"

	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Source names what caused a fall.
type Source string

const (
	SourceClimbing      Source = "climbing"
	SourceLeaping       Source = "leaping"
	SourceBalance       Source = "balance"
	SourceEnvironmental Source = "environmental"
	SourceTrap          Source = "trap"
)

// Config holds the fall damage constants.
type Config struct {
	FeetPerDie       int    // height per damage die and per crash target step
	MaxDice          int    // cap on height-derived dice, before bonus dice
	MinimumHeight    int    // falls shorter than this deal no damage
	CrashBase        int    // crash-landing target before height
	FeatherfallMaxDC int    // featherfall auto-succeeds at or below this target
	DamageSides      int    // faces per damage die
	DamageType       string // damage type reported on results
}

// DefaultConfig returns 1d10 bludgeoning per 10 ft, capped at 10 dice.
func DefaultConfig() Config {
	return Config{
		FeetPerDie:       10,
		MaxDice:          10,
		MinimumHeight:    10,
		CrashBase:        2,
		FeatherfallMaxDC: 3,
		DamageSides:      10,
		DamageType:       "bludgeoning",
	}
}

// Validate rejects non-positive step sizes and negative caps.
func (c Config) Validate() error {
	switch {
	case c.FeetPerDie < 1:
		return errs.Invalid("fall: feet per die must be positive, got %d", c.FeetPerDie)
	case c.MaxDice < 0:
		return errs.Invalid("fall: max dice must be non-negative, got %d", c.MaxDice)
	case c.MinimumHeight < 0:
		return errs.Invalid("fall: minimum height must be non-negative, got %d", c.MinimumHeight)
	case c.CrashBase < 1:
		return errs.Invalid("fall: crash base must be positive, got %d", c.CrashBase)
	case c.DamageSides < 1:
		return errs.Invalid("fall: damage sides must be positive, got %d", c.DamageSides)
	}
	return nil
}

// Fall describes one fall before any mitigation.
type Fall struct {
	HeightFeet int
	Source     Source
	BonusDice  int
	Reason     string
}

// New validates and builds a Fall.
func New(height int, source Source, bonusDice int) (Fall, error) {
	if height < 0 {
		return Fall{}, errs.Invalid("fall: height must be non-negative, got %d", height)
	}
	if bonusDice < 0 {
		return Fall{}, errs.Invalid("fall: bonus dice must be non-negative, got %d", bonusDice)
	}
	if source == "" {
		return Fall{}, errs.Invalid("fall: source is required")
	}
	return Fall{HeightFeet: height, Source: source, BonusDice: bonusDice}, nil
}

// CausesDamage reports whether the fall is tall enough to hurt.
func (f Fall) CausesDamage(cfg Config) bool {
	return f.HeightFeet >= cfg.MinimumHeight
}

// Dice returns the damage dice: one per FeetPerDie of height, capped at
// MaxDice, plus bonus dice. Falls below MinimumHeight deal nothing, bonus
// dice included: a fumble penalty only adds to a fall that already hurts.
func (f Fall) Dice(cfg Config) int {
	if !f.CausesDamage(cfg) {
		return 0
	}
	n := f.HeightFeet / cfg.FeetPerDie
	if n > cfg.MaxDice {
		n = cfg.MaxDice
	}
	return n + f.BonusDice
}

// DamageExpr returns the damage dice as an expression.
func (f Fall) DamageExpr(cfg Config) types.DiceExpr {
	return types.DiceExpr{Count: f.Dice(cfg), Sides: cfg.DamageSides}
}

// CrashTarget returns the crash-landing target: CrashBase + height/FeetPerDie.
func (f Fall) CrashTarget(cfg Config) int {
	return cfg.CrashBase + f.HeightFeet/cfg.FeetPerDie
}

// CrashResult is the outcome of a crash-landing attempt.
type CrashResult struct {
	Attempted    bool
	Auto         bool // featherfall
	Target       int
	Net          int
	Outcome      types.Outcome
	Margin       int
	OriginalDice int
	DiceReduced  int
	FinalDice    int
	Succeeded    bool
	NegatedAll   bool
}

// ReducedDamage reports whether any dice were removed.
func (c CrashResult) ReducedDamage() bool { return c.DiceReduced > 0 }

// CrashLanding removes one damage die per net success above target, never
// leaving fewer than zero dice.
func CrashLanding(target, net int, outcome types.Outcome, originalDice int) (CrashResult, error) {
	if target < 1 {
		return CrashResult{}, errs.Invalid("fall: crash target must be at least 1, got %d", target)
	}
	if originalDice < 0 {
		return CrashResult{}, errs.Invalid("fall: original dice must be non-negative, got %d", originalDice)
	}
	margin := net - target
	reduced := 0
	if margin > 0 {
		reduced = margin
	}
	final := originalDice - reduced
	if final < 0 {
		final = 0
	}
	return CrashResult{
		Attempted:    true,
		Target:       target,
		Net:          net,
		Outcome:      outcome,
		Margin:       margin,
		OriginalDice: originalDice,
		DiceReduced:  reduced,
		FinalDice:    final,
		Succeeded:    margin >= 0,
		NegatedAll:   final == 0 && originalDice > 0,
	}, nil
}

// Featherfall treats the crash landing as exactly meeting target: the
// landing is stable but no dice are removed. ok is false when target is
// above cfg.FeatherfallMaxDC.
func Featherfall(target, originalDice int, cfg Config) (res CrashResult, ok bool) {
	if target > cfg.FeatherfallMaxDC || target < 1 || originalDice < 0 {
		return CrashResult{}, false
	}
	return CrashResult{
		Attempted:    true,
		Auto:         true,
		Target:       target,
		Net:          target,
		Outcome:      types.MarginalSuccess,
		OriginalDice: originalDice,
		FinalDice:    originalDice,
		Succeeded:    true,
	}, true
}

// NoAttempt is the result when no crash landing is tried.
func NoAttempt(originalDice int) CrashResult {
	return CrashResult{OriginalDice: originalDice, FinalDice: originalDice}
}

// Narrative describes a crash landing.
func (c CrashResult) Narrative() string {
	switch {
	case !c.Attempted:
		return fmt.Sprintf("You hit the ground hard: %d damage dice.", c.FinalDice)
	case c.Auto:
		return "You drift down and land steady on your feet."
	case c.NegatedAll:
		return "You tuck and roll, walking away unharmed."
	case c.ReducedDamage():
		return fmt.Sprintf("You break your fall, shedding %d of %d damage dice.", c.DiceReduced, c.OriginalDice)
	case c.Succeeded:
		return "You land on your feet but the impact still hurts."
	default:
		return "You fail to break your fall."
	}
}
