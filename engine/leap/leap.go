// Package leap resolves jumps across gaps.
package leap

import (
	"fmt"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/fall"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// DeathDefyingBonusFeet is the extra reach granted by Death-Defying Leap.
const DeathDefyingBonusFeet = 10

// Fumble penalty bundle.
const (
	FumbleBonusFallDice = 1
	FumbleStress        = 2
	DisorientedRounds   = 2
)

// Context is one leap attempt.
type Context struct {
	DistanceFeet int
	DepthFeet    int
	RunningStart bool
	Encumbrance  int
	SlickTakeoff bool
	DeathDefying bool
}

// NewContext validates a leap context.
func NewContext(distance, depth int) (Context, error) {
	c := Context{DistanceFeet: distance, DepthFeet: depth}
	if err := c.Validate(); err != nil {
		return Context{}, err
	}
	return c, nil
}

// Validate rejects non-positive distances and negative depths.
func (c Context) Validate() error {
	switch {
	case c.DistanceFeet <= 0:
		return errs.Invalid("leap: distance must be positive, got %d", c.DistanceFeet)
	case c.DepthFeet < 0:
		return errs.Invalid("leap: depth must be non-negative, got %d", c.DepthFeet)
	case c.Encumbrance < 0:
		return errs.Invalid("leap: encumbrance must be non-negative, got %d", c.Encumbrance)
	}
	return nil
}

// EffectiveDistance is the distance after Death-Defying Leap's reach.
func (c Context) EffectiveDistance() int {
	d := c.DistanceFeet
	if c.DeathDefying {
		d -= DeathDefyingBonusFeet
	}
	return d
}

// BaseDC maps the effective distance to a band.
func (c Context) BaseDC() int {
	switch d := c.EffectiveDistance(); {
	case d <= 5:
		return 1
	case d <= 10:
		return 2
	case d <= 15:
		return 3
	case d <= 20:
		return 4
	default:
		return 5
	}
}

// Target composes the leap difficulty.
func (c Context) Target() difficulty.Target {
	var m difficulty.Modifiers
	if c.RunningStart {
		m.Add("running start", -1)
	}
	m.Add("encumbrance", c.Encumbrance)
	if c.SlickTakeoff {
		m.Add("slick takeoff", 1)
	}
	return difficulty.Compose(c.BaseDC(), m...)
}

// Result is the consequence of one leap.
type Result struct {
	Context       Context
	Outcome       types.Outcome
	Margin        int
	Landed        bool
	Teetering     bool
	FallTriggered bool
	Fall          fall.Fall
	Stress        int
	Statuses      []types.Status
	Narrative     string
}

// Resolve applies a classified outcome to the leap.
func Resolve(c Context, out types.Outcome, margin int) Result {
	r := Result{Context: c, Outcome: out, Margin: margin}

	switch out {
	case types.CriticalSuccess, types.ExceptionalSuccess:
		r.Landed = true
		r.Narrative = "You sail across and land cleanly."
	case types.FullSuccess:
		r.Landed = true
		r.Narrative = "You clear the gap."
	case types.MarginalSuccess:
		r.Landed = true
		r.Teetering = true
		r.Narrative = "You catch the far edge and haul yourself up."
	case types.Failure:
		r.FallTriggered = true
		r.Fall = fall.Fall{HeightFeet: c.DepthFeet, Source: fall.SourceLeaping, Reason: "fell short"}
		r.Narrative = "You come up short and drop into the gap."
	case types.CriticalFailure:
		r.FallTriggered = true
		r.Fall = fall.Fall{
			HeightFeet: c.DepthFeet,
			Source:     fall.SourceLeaping,
			BonusDice:  FumbleBonusFallDice,
			Reason:     "botched takeoff",
		}
		r.Stress = FumbleStress
		r.Statuses = []types.Status{{Name: "Disoriented", Rounds: DisorientedRounds}}
		r.Narrative = "Your footing gives way mid-leap and you tumble into the gap, head spinning."
	default:
		panic(fmt.Sprintf("leap: unknown outcome %d", int(out)))
	}
	return r
}
