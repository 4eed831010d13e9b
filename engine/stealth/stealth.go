// Package stealth resolves sneaking for individuals and parties, and
// describes the hidden-status abilities that stealth grants.
package stealth

import (
	"fmt"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Surface is how much noise the ground makes underfoot.
type Surface int

const (
	Silent Surface = iota
	NormalSurface
	Noisy
	VeryNoisy
)

// BaseDC returns the surface's base difficulty.
func (s Surface) BaseDC() int {
	switch s {
	case Silent:
		return 2
	case NormalSurface:
		return 3
	case Noisy:
		return 4
	case VeryNoisy:
		return 5
	default:
		panic(fmt.Sprintf("stealth: unknown surface %d", int(s)))
	}
}

func (s Surface) String() string {
	switch s {
	case Silent:
		return "silent"
	case NormalSurface:
		return "normal"
	case Noisy:
		return "noisy"
	case VeryNoisy:
		return "very_noisy"
	default:
		panic(fmt.Sprintf("stealth: unknown surface %d", int(s)))
	}
}

// ParseSurface accepts the names produced by Surface.String.
func ParseSurface(name string) (Surface, error) {
	for _, s := range []Surface{Silent, NormalSurface, Noisy, VeryNoisy} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, errs.Invalid("stealth: unknown surface %q", name)
}

// Context is the situation one stealth check is made in.
type Context struct {
	Surface          Surface
	DimLight         bool
	Illuminated      bool
	EnemiesAlerted   bool
	PsychicResonance bool
	ArmorPenalty     int
}

// Validate rejects a negative armor penalty.
func (c Context) Validate() error {
	if c.ArmorPenalty < 0 {
		return errs.Invalid("stealth: armor penalty must be non-negative, got %d", c.ArmorPenalty)
	}
	return nil
}

// Target composes the stealth difficulty.
func (c Context) Target() difficulty.Target {
	var m difficulty.Modifiers
	if c.DimLight {
		m.Add("dim light", -1)
	}
	if c.Illuminated {
		m.Add("illuminated", 2)
	}
	if c.EnemiesAlerted {
		m.Add("enemies alerted", 1)
	}
	if c.PsychicResonance {
		m.Add("psychic resonance", -2)
	}
	m.Add("armor", c.ArmorPenalty)
	return difficulty.Compose(c.Surface.BaseDC(), m...)
}

// Result is the consequence of a stealth check.
type Result struct {
	Outcome           types.Outcome
	Margin            int
	Hidden            bool
	Suspicious        bool
	Detected          bool
	SystemAlert       bool
	DetectionModifier int
	Narrative         string
}

// Resolve applies a classified outcome to a stealth check.
func Resolve(out types.Outcome, margin int) Result {
	r := Result{Outcome: out, Margin: margin}
	switch out {
	case types.CriticalSuccess:
		r.Hidden = true
		r.DetectionModifier = 2
		r.Narrative = "You vanish completely."
	case types.ExceptionalSuccess:
		r.Hidden = true
		r.DetectionModifier = 1
		r.Narrative = "You slip into the shadows unseen."
	case types.FullSuccess:
		r.Hidden = true
		r.Narrative = "You move quietly and stay hidden."
	case types.MarginalSuccess:
		r.Hidden = true
		r.Suspicious = true
		r.Narrative = "You stay hidden, but something heard you."
	case types.Failure:
		r.Detected = true
		r.Narrative = "You are spotted."
	case types.CriticalFailure:
		r.Detected = true
		r.SystemAlert = true
		r.Narrative = "You stumble into the open and trip a system alert."
	default:
		panic(fmt.Sprintf("stealth: unknown outcome %d", int(out)))
	}
	return r
}

// Member is one party member attempting to sneak.
type Member struct {
	ID   string
	Pool int
}

// WeakestLink returns the member with the lowest pool. Ties go to the
// member listed first.
func WeakestLink(members []Member) (Member, error) {
	if len(members) == 0 {
		return Member{}, errs.Invalid("stealth: party must have at least one member")
	}
	seen := make(map[string]bool, len(members))
	weakest := members[0]
	for i, m := range members {
		if m.ID == "" {
			return Member{}, errs.Invalid("stealth: party member %d has an empty id", i)
		}
		if seen[m.ID] {
			return Member{}, errs.Invalid("stealth: duplicate party member %q", m.ID)
		}
		if m.Pool < 0 {
			return Member{}, errs.Invalid("stealth: member %q has negative pool %d", m.ID, m.Pool)
		}
		seen[m.ID] = true
		if m.Pool < weakest.Pool {
			weakest = m
		}
	}
	return weakest, nil
}

// PartyResult is a single stealth result shared by every member.
type PartyResult struct {
	Result
	Roller  Member
	Members []string
}

// Party builds the shared party result from the weakest member's check.
func Party(members []Member, r Result) (PartyResult, error) {
	roller, err := WeakestLink(members)
	if err != nil {
		return PartyResult{}, err
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return PartyResult{Result: r, Roller: roller, Members: ids}, nil
}
