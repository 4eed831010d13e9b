// Package synergy chains a primary check to a conditionally executed
// secondary check according to a declared timing policy.
package synergy

import (
	"fmt"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Timing decides whether the secondary check runs.
type Timing int

const (
	Always Timing = iota
	OnPrimarySuccess
	OnPrimaryCritical
)

func (t Timing) String() string {
	switch t {
	case Always:
		return "always"
	case OnPrimarySuccess:
		return "on_primary_success"
	case OnPrimaryCritical:
		return "on_primary_critical"
	default:
		panic(fmt.Sprintf("synergy: unknown timing %d", int(t)))
	}
}

// ParseTiming returns the timing with the given name.
func ParseTiming(s string) (Timing, error) {
	for _, t := range []Timing{Always, OnPrimarySuccess, OnPrimaryCritical} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, errs.Invalid("synergy: unknown timing %q", s)
}

// Allows reports whether a primary outcome lets the secondary run.
func (t Timing) Allows(primary types.Outcome) bool {
	switch t {
	case Always:
		return true
	case OnPrimarySuccess:
		return primary.IsSuccess()
	case OnPrimaryCritical:
		return primary == types.CriticalSuccess
	default:
		panic(fmt.Sprintf("synergy: unknown timing %d", int(t)))
	}
}

// Kind identifies a declared synergy.
type Kind string

const (
	FindHiddenPath Kind = "find_hidden_path"
	TrackToLair    Kind = "track_to_lair"
	AvoidPatrol    Kind = "avoid_patrol"
	FindAndLoot    Kind = "find_and_loot"
)

// Kinds lists every declared synergy in a stable order.
func Kinds() []Kind {
	return []Kind{FindHiddenPath, TrackToLair, AvoidPatrol, FindAndLoot}
}

// Narratives are the closing lines for each status.
type Narratives struct {
	PrimaryFailed   string
	PrimaryFumbled  string
	Gated           string
	Full            string
	Partial         string
	SecondaryFumble string
}

// Definition declares one synergy.
type Definition struct {
	Kind             Kind
	Name             string
	PrimaryFeature   types.Feature
	PrimarySkill     string
	SecondaryFeature types.Feature
	SecondarySkill   string
	Timing           Timing
	PrimaryDC        int
	SecondaryDC      int
	Narratives       Narratives
}

// Validate rejects definitions with non-positive difficulties or no skills.
func (d Definition) Validate() error {
	if d.PrimaryDC < 1 || d.SecondaryDC < 1 {
		return errs.Invalid("synergy %s: difficulties must be at least 1, got %d/%d", d.Kind, d.PrimaryDC, d.SecondaryDC)
	}
	if d.PrimarySkill == "" || d.SecondarySkill == "" {
		return errs.Invalid("synergy %s: primary and secondary skills are required", d.Kind)
	}
	return nil
}

// Defaults returns the built-in synergy definitions.
func Defaults() map[Kind]Definition {
	return map[Kind]Definition{
		FindHiddenPath: {
			Kind:             FindHiddenPath,
			Name:             "Find Hidden Path",
			PrimaryFeature:   types.FeatureScout,
			PrimarySkill:     "navigation",
			SecondaryFeature: types.FeatureCheck,
			SecondarySkill:   "acrobatics",
			Timing:           OnPrimarySuccess,
			PrimaryDC:        4,
			SecondaryDC:      3,
			Narratives: Narratives{
				PrimaryFailed:   "You search the ruins but find no hidden way through.",
				PrimaryFumbled:  "You lose your bearings entirely while hunting for a hidden path.",
				Gated:           "You sense a hidden path but cannot pin it down.",
				Full:            "You find the hidden path and cross it unseen.",
				Partial:         "You find the hidden path but the terrain turns you back.",
				SecondaryFumble: "You find the hidden path and fall hard crossing it.",
			},
		},
		TrackToLair: {
			Kind:             TrackToLair,
			Name:             "Track to Lair",
			PrimaryFeature:   types.FeatureScout,
			PrimarySkill:     "tracking",
			SecondaryFeature: types.FeatureBypass,
			SecondarySkill:   "system-bypass",
			Timing:           OnPrimarySuccess,
			PrimaryDC:        3,
			SecondaryDC:      2,
			Narratives: Narratives{
				PrimaryFailed:   "The trail goes cold.",
				PrimaryFumbled:  "You follow a false trail into a dead end.",
				Gated:           "You reach the lair but the entrance stays sealed.",
				Full:            "You track the quarry home and slip inside undetected.",
				Partial:         "You reach the lair but cannot get past its entrance.",
				SecondaryFumble: "You reach the lair and set off its defenses.",
			},
		},
		AvoidPatrol: {
			Kind:             AvoidPatrol,
			Name:             "Avoid Patrol",
			PrimaryFeature:   types.FeatureScout,
			PrimarySkill:     "hazard-detection",
			SecondaryFeature: types.FeatureStealth,
			SecondarySkill:   "acrobatics",
			Timing:           OnPrimarySuccess,
			PrimaryDC:        3,
			SecondaryDC:      3,
			Narratives: Narratives{
				PrimaryFailed:   "You notice the patrol too late.",
				PrimaryFumbled:  "You walk straight into the patrol's path.",
				Gated:           "You spot the patrol but have nowhere to go.",
				Full:            "You spot the patrol and slip past it completely.",
				Partial:         "You spot the patrol but cannot get clear of it.",
				SecondaryFumble: "You spot the patrol and stumble into plain view.",
			},
		},
		FindAndLoot: {
			Kind:             FindAndLoot,
			Name:             "Find and Loot",
			PrimaryFeature:   types.FeatureScout,
			PrimarySkill:     "foraging",
			SecondaryFeature: types.FeatureBypass,
			SecondarySkill:   "system-bypass",
			Timing:           OnPrimarySuccess,
			PrimaryDC:        4,
			SecondaryDC:      3,
			Narratives: Narratives{
				PrimaryFailed:   "The area has been picked clean.",
				PrimaryFumbled:  "You disturb something that was better left buried.",
				Gated:           "You find a cache but cannot reach it.",
				Full:            "You find a sealed cache and crack it open.",
				Partial:         "You find a sealed cache but it will not open.",
				SecondaryFumble: "You find a cache and jam its lock for good.",
			},
		},
	}
}

// ExplorationContext describes what the current location supports.
type ExplorationContext struct {
	AllowsNavigation  bool
	HasActiveTracking bool
	HasPatrols        bool
	AllowsForaging    bool
}

// Available returns the synergies the location supports, in Kinds order.
func Available(ctx ExplorationContext, defs map[Kind]Definition) []Definition {
	var out []Definition
	for _, k := range Kinds() {
		def, ok := defs[k]
		if !ok {
			continue
		}
		var allowed bool
		switch k {
		case FindHiddenPath:
			allowed = ctx.AllowsNavigation
		case TrackToLair:
			allowed = ctx.HasActiveTracking
		case AvoidPatrol:
			allowed = ctx.HasPatrols
		case FindAndLoot:
			allowed = ctx.AllowsForaging
		}
		if allowed {
			out = append(out, def)
		}
	}
	return out
}

// Check is one classified check within a synergy.
type Check struct {
	Skill   string
	Roll    types.Roll
	Target  difficulty.Target
	Outcome types.Outcome
	Margin  int
}

// Status is the overall synergy result.
type Status int

const (
	PrimaryFailed Status = iota
	PartialSuccess
	FullSuccess
)

func (s Status) String() string {
	switch s {
	case PrimaryFailed:
		return "PrimaryFailed"
	case PartialSuccess:
		return "PartialSuccess"
	case FullSuccess:
		return "FullSuccess"
	default:
		panic(fmt.Sprintf("synergy: unknown status %d", int(s)))
	}
}

// Result is the outcome of one synergy attempt. Secondary is nil when the
// timing policy blocked it.
type Result struct {
	Kind      Kind
	Timing    Timing
	Primary   Check
	Secondary *Check
	Status    Status
	Narrative string
}

// SecondaryRan reports whether the secondary check was executed.
func (r Result) SecondaryRan() bool { return r.Secondary != nil }

// Resolve gates the secondary check on def.Timing. secondary is invoked at
// most once and only when the gate allows it; its target and roll are used
// as returned.
func Resolve(def Definition, primary Check, secondary func() (Check, error)) (Result, error) {
	res := Result{Kind: def.Kind, Timing: def.Timing, Primary: primary}

	if def.Timing.Allows(primary.Outcome) {
		sec, err := secondary()
		if err != nil {
			return Result{}, fmt.Errorf("synergy %s secondary: %w", def.Kind, err)
		}
		res.Secondary = &sec
	}

	n := def.Narratives
	switch {
	case !primary.Outcome.IsSuccess():
		res.Status = PrimaryFailed
		res.Narrative = n.PrimaryFailed
		if primary.Outcome == types.CriticalFailure {
			res.Narrative = n.PrimaryFumbled
		}
	case res.Secondary == nil:
		res.Status = PartialSuccess
		res.Narrative = n.Gated
	case res.Secondary.Outcome.IsSuccess():
		res.Status = FullSuccess
		res.Narrative = n.Full
	default:
		res.Status = PartialSuccess
		res.Narrative = n.Partial
		if res.Secondary.Outcome == types.CriticalFailure {
			res.Narrative = n.SecondaryFumble
		}
	}
	return res, nil
}
