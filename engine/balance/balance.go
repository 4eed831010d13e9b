// Package balance resolves traversals across narrow or unstable surfaces.
package balance

import (
	"fmt"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/fall"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// CheckRequiredBelowInches is the surface width below which a balance
// check is needed at all.
const CheckRequiredBelowInches = 24

// Width is the surface width category.
type Width int

const (
	Wide Width = iota
	Narrow
	Cable
	RazorEdge
)

func (w Width) String() string {
	switch w {
	case Wide:
		return "wide"
	case Narrow:
		return "narrow"
	case Cable:
		return "cable"
	case RazorEdge:
		return "razor edge"
	default:
		panic(fmt.Sprintf("balance: unknown width %d", int(w)))
	}
}

// BaseDC returns the width's base difficulty.
func (w Width) BaseDC() int {
	switch w {
	case Wide:
		return 2
	case Narrow:
		return 3
	case Cable:
		return 4
	case RazorEdge:
		return 5
	default:
		panic(fmt.Sprintf("balance: unknown width %d", int(w)))
	}
}

// WidthFromInches categorizes a measured width.
func WidthFromInches(in int) Width {
	switch {
	case in >= 12:
		return Wide
	case in >= 6:
		return Narrow
	case in >= 3:
		return Cable
	default:
		return RazorEdge
	}
}

// RequiresCheck reports whether a surface this wide needs a balance check.
func RequiresCheck(widthInches int) bool {
	return widthInches < CheckRequiredBelowInches
}

// Stability is how much the surface moves.
type Stability int

const (
	Stable Stability = iota
	Unstable
	Swaying
)

// Modifier returns the stability's difficulty modifier.
func (s Stability) Modifier() int {
	switch s {
	case Stable:
		return 0
	case Unstable:
		return 1
	case Swaying:
		return 2
	default:
		panic(fmt.Sprintf("balance: unknown stability %d", int(s)))
	}
}

func (s Stability) String() string {
	switch s {
	case Stable:
		return "stable"
	case Unstable:
		return "unstable"
	case Swaying:
		return "swaying"
	default:
		panic(fmt.Sprintf("balance: unknown stability %d", int(s)))
	}
}

// Condition is the surface's footing.
type Condition int

const (
	Dry Condition = iota
	Wet
	Icy
)

// Modifier returns the condition's difficulty modifier.
func (c Condition) Modifier() int {
	switch c {
	case Dry:
		return 0
	case Wet:
		return 1
	case Icy:
		return 2
	default:
		panic(fmt.Sprintf("balance: unknown condition %d", int(c)))
	}
}

func (c Condition) String() string {
	switch c {
	case Dry:
		return "dry"
	case Wet:
		return "wet"
	case Icy:
		return "icy"
	default:
		panic(fmt.Sprintf("balance: unknown condition %d", int(c)))
	}
}

// Surface is something to walk across.
type Surface struct {
	Width      Width
	Stability  Stability
	Condition  Condition
	LengthFeet int
	HeightFeet int
}

// NewSurface validates a surface.
func NewSurface(w Width, s Stability, c Condition, length, height int) (Surface, error) {
	if length < 0 {
		return Surface{}, errs.Invalid("balance: length must be non-negative, got %d", length)
	}
	if height < 0 {
		return Surface{}, errs.Invalid("balance: height must be non-negative, got %d", height)
	}
	return Surface{Width: w, Stability: s, Condition: c, LengthFeet: length, HeightFeet: height}, nil
}

// NarrowLedge is a stable, dry, narrow ledge.
func NarrowLedge(length, height int) (Surface, error) {
	return NewSurface(Narrow, Stable, Dry, length, height)
}

// CrumblingLedge is a narrow ledge that shifts underfoot.
func CrumblingLedge(length, height int) (Surface, error) {
	return NewSurface(Narrow, Unstable, Dry, length, height)
}

// RopeBridge is a narrow, swaying span.
func RopeBridge(length, height int) (Surface, error) {
	return NewSurface(Narrow, Swaying, Dry, length, height)
}

// WidePlank is a wide, stable board.
func WidePlank(length, height int) (Surface, error) {
	return NewSurface(Wide, Stable, Dry, length, height)
}

// SurfaceDC is the width difficulty plus stability and condition.
func (s Surface) SurfaceDC() int {
	return s.Width.BaseDC() + s.Stability.Modifier() + s.Condition.Modifier()
}

// FallCausesDamage reports whether falling off would hurt.
func (s Surface) FallCausesDamage(cfg fall.Config) bool {
	return s.HeightFeet >= cfg.MinimumHeight
}

func (s Surface) String() string {
	return fmt.Sprintf("%s %s surface, %d ft long, %d ft up (%s)",
		s.Stability, s.Width, s.LengthFeet, s.HeightFeet, s.Condition)
}

// Context is one balance check, possibly part of a long traverse.
type Context struct {
	Surface      Surface
	Wind         int
	Encumbrance  int
	BalancePole  bool
	TotalChecks  int
	CurrentCheck int
	BaseStamina  int
}

// NewContext builds a single-check context for s.
func NewContext(s Surface) Context {
	return Context{Surface: s, TotalChecks: 1, CurrentCheck: 1, BaseStamina: 1}
}

// LongTraverse builds a context for check current of total.
func LongTraverse(s Surface, total, current int) (Context, error) {
	c := NewContext(s)
	c.TotalChecks = total
	c.CurrentCheck = current
	if err := c.Validate(); err != nil {
		return Context{}, err
	}
	return c, nil
}

// Validate rejects negative modifiers and out-of-range check numbers.
func (c Context) Validate() error {
	switch {
	case c.Wind < 0:
		return errs.Invalid("balance: wind must be non-negative, got %d", c.Wind)
	case c.Encumbrance < 0:
		return errs.Invalid("balance: encumbrance must be non-negative, got %d", c.Encumbrance)
	case c.TotalChecks < 1:
		return errs.Invalid("balance: total checks must be at least 1, got %d", c.TotalChecks)
	case c.CurrentCheck < 1 || c.CurrentCheck > c.TotalChecks:
		return errs.Invalid("balance: check %d outside [1,%d]", c.CurrentCheck, c.TotalChecks)
	case c.BaseStamina < 0:
		return errs.Invalid("balance: base stamina must be non-negative, got %d", c.BaseStamina)
	case c.Surface.HeightFeet < 0 || c.Surface.LengthFeet < 0:
		return errs.Invalid("balance: surface dimensions must be non-negative")
	}
	return nil
}

// IsLongTraverse reports whether more than one check is required.
func (c Context) IsLongTraverse() bool { return c.TotalChecks > 1 }

// IsFinalCheck reports whether this is the last check of the traverse.
func (c Context) IsFinalCheck() bool { return c.CurrentCheck == c.TotalChecks }

// Target composes the balance difficulty.
func (c Context) Target() difficulty.Target {
	var m difficulty.Modifiers
	m.Add(c.Surface.Stability.String(), c.Surface.Stability.Modifier())
	m.Add(c.Surface.Condition.String(), c.Surface.Condition.Modifier())
	m.Add("wind", c.Wind)
	m.Add("encumbrance", c.Encumbrance)
	if c.BalancePole {
		m.Add("balance pole", -1)
	}
	return difficulty.Compose(c.Surface.Width.BaseDC(), m...)
}

// Result is the consequence of one balance check.
type Result struct {
	Context          Context
	Outcome          types.Outcome
	Margin           int
	Crossed          bool
	TraverseComplete bool
	Continues        bool
	StaminaCost      int
	FallTriggered    bool
	FallHeightFeet   int
	Narrative        string
}

// Fall returns the fall this result triggered, if any.
func (r Result) Fall() (fall.Fall, bool) {
	if !r.FallTriggered {
		return fall.Fall{}, false
	}
	return fall.Fall{HeightFeet: r.FallHeightFeet, Source: fall.SourceBalance, Reason: "lost balance"}, true
}

// Resolve applies a classified outcome to the balance check.
func Resolve(c Context, out types.Outcome, margin int) Result {
	r := Result{Context: c, Outcome: out, Margin: margin, StaminaCost: c.BaseStamina}

	switch out {
	case types.CriticalSuccess:
		r.Crossed = true
		r.StaminaCost = 0
		r.Narrative = "You glide across without breaking stride."
	case types.ExceptionalSuccess, types.FullSuccess:
		r.Crossed = true
		r.Narrative = "You keep your balance and make it across."
	case types.MarginalSuccess:
		r.Crossed = true
		r.StaminaCost = 2 * c.BaseStamina
		r.Narrative = "You wobble badly but keep your feet."
	case types.Failure:
		r.FallTriggered = true
		r.FallHeightFeet = c.Surface.HeightFeet
		r.Narrative = "You lose your footing and fall."
	case types.CriticalFailure:
		r.FallTriggered = true
		r.FallHeightFeet = c.Surface.HeightFeet
		r.Narrative = "The surface lurches and throws you off."
	default:
		panic(fmt.Sprintf("balance: unknown outcome %d", int(out)))
	}

	if r.Crossed {
		r.TraverseComplete = c.IsFinalCheck()
		r.Continues = !r.TraverseComplete
	}
	return r
}
