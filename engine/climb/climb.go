// Package climb advances multi-stage climbs one check at a time.
package climb

import (
	"fmt"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/fall"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Status is the state of a climb after one check.
type Status int

const (
	InProgress Status = iota
	Completed
	SlippedToGround
	Fallen
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "InProgress"
	case Completed:
		return "Completed"
	case SlippedToGround:
		return "SlippedToGround"
	case Fallen:
		return "Fallen"
	default:
		panic(fmt.Sprintf("climb: unknown status %d", int(s)))
	}
}

// Context is one climbing attempt.
type Context struct {
	TotalStages  int
	CurrentStage int
	FeetPerStage int
	BaseDC       int
	Wet          bool
	ClimbingGear bool
	Encumbrance  int
}

// NewContext validates a climb context.
func NewContext(total, current, feetPerStage, baseDC int) (Context, error) {
	c := Context{TotalStages: total, CurrentStage: current, FeetPerStage: feetPerStage, BaseDC: baseDC}
	if err := c.Validate(); err != nil {
		return Context{}, err
	}
	return c, nil
}

// Validate rejects impossible stage positions and negative dimensions.
func (c Context) Validate() error {
	switch {
	case c.TotalStages < 1:
		return errs.Invalid("climb: total stages must be at least 1, got %d", c.TotalStages)
	case c.CurrentStage < 0 || c.CurrentStage >= c.TotalStages:
		return errs.Invalid("climb: current stage %d outside [0,%d)", c.CurrentStage, c.TotalStages)
	case c.FeetPerStage < 0:
		return errs.Invalid("climb: feet per stage must be non-negative, got %d", c.FeetPerStage)
	case c.BaseDC < 1:
		return errs.Invalid("climb: base difficulty must be at least 1, got %d", c.BaseDC)
	case c.Encumbrance < 0:
		return errs.Invalid("climb: encumbrance must be non-negative, got %d", c.Encumbrance)
	}
	return nil
}

// Target composes the climb difficulty.
func (c Context) Target() difficulty.Target {
	var m difficulty.Modifiers
	if c.Wet {
		m.Add("wet surface", 1)
	}
	if c.ClimbingGear {
		m.Add("climbing gear", -1)
	}
	m.Add("encumbrance", c.Encumbrance)
	return difficulty.Compose(c.BaseDC, m...)
}

// HeightFeet returns the climber's current height.
func (c Context) HeightFeet() int {
	return c.CurrentStage * c.FeetPerStage
}

// Result is the consequence of one climbing check.
type Result struct {
	Context        Context
	Outcome        types.Outcome
	Margin         int
	PreviousStage  int
	NewStage       int
	StageDelta     int
	Status         Status
	FallTriggered  bool
	FallHeightFeet int
	Narrative      string
}

// Fall returns the fall this result triggered, if any.
func (r Result) Fall() (fall.Fall, bool) {
	if !r.FallTriggered {
		return fall.Fall{}, false
	}
	return fall.Fall{HeightFeet: r.FallHeightFeet, Source: fall.SourceClimbing, Reason: "lost grip"}, true
}

// Resolve applies a classified outcome to the climb.
func Resolve(c Context, out types.Outcome, margin int) Result {
	r := Result{
		Context:       c,
		Outcome:       out,
		Margin:        margin,
		PreviousStage: c.CurrentStage,
		Status:        InProgress,
	}

	switch out {
	case types.CriticalSuccess:
		r.NewStage = c.CurrentStage + 2
		r.Narrative = "You scale the surface with practiced ease."
	case types.ExceptionalSuccess, types.FullSuccess, types.MarginalSuccess:
		r.NewStage = c.CurrentStage + 1
		r.Narrative = "You find a hold and pull yourself higher."
	case types.Failure:
		r.NewStage = c.CurrentStage - 1
		r.Narrative = "Your grip slips and you slide back down."
	case types.CriticalFailure:
		r.NewStage = 0
		r.Status = Fallen
		r.FallTriggered = true
		r.FallHeightFeet = c.HeightFeet()
		r.Narrative = "Your hold crumbles and you plummet."
	default:
		panic(fmt.Sprintf("climb: unknown outcome %d", int(out)))
	}

	switch {
	case r.Status == Fallen:
	case r.NewStage >= c.TotalStages:
		r.NewStage = c.TotalStages
		r.Status = Completed
		r.Narrative = "You haul yourself over the top."
	case r.NewStage < 0:
		r.NewStage = 0
		r.Status = SlippedToGround
		r.Narrative = "You slide all the way back to the ground."
	}
	r.StageDelta = r.NewStage - r.PreviousStage
	return r
}
