package loader

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/nathoo/dicecore/engine/effects"
	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/rules"
	"github.com/nathoo/dicecore/engine/ruleset"
	"github.com/nathoo/dicecore/engine/synergy"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Events the engine emits. Handlers may also listen for names raised by
// EmitEvent.
var knownEvents = map[string]bool{
	"check_resolved":     true,
	"contest_resolved":   true,
	"alert_raised":       true,
	"zone_added":         true,
	"zone_expired":       true,
	"mark_added":         true,
	"mark_consumed":      true,
	"mark_expired":       true,
	"trap_detected":      true,
	"trap_triggered":     true,
	"trap_analyzed":      true,
	"trap_disarm_failed": true,
	"trap_disarmed":      true,
	"trap_destroyed":     true,
	"hidden":             true,
	"hidden_broken":      true,
	"encounter_resolved": true,
	"damage_taken":       true,
	"stress_taken":       true,
	"fell":               true,
	"synergy_resolved":   true,
	"turn_ended":         true,
}

// validate checks the compiled ruleset for unknown kinds, bad tuning and
// malformed handlers.
func validate(rs *ruleset.Ruleset) error {
	ve := &ValidationError{}

	for kind := range rs.Traps {
		if !slices.Contains(trap.Kinds(), kind) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unknown trap kind %q", kind))
		}
	}
	for term := range rs.Terminals {
		if !slices.Contains(ice.Terminals(), term) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unknown terminal %q", term))
		}
	}
	for kind := range rs.Synergies {
		if !slices.Contains(synergy.Kinds(), kind) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unknown synergy %q", kind))
		}
	}

	// Range checks only make sense once every kind is known.
	if len(ve.Errors) == 0 {
		if err := rs.Validate(); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	custom := map[string]bool{}
	for _, h := range rs.Handlers {
		for _, eff := range h.Effects {
			if eff.Type == effects.EmitEvent {
				if name, ok := eff.Params["event"].(string); ok {
					custom[name] = true
				}
			}
		}
	}

	for i, h := range rs.Handlers {
		if len(h.Effects) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"handler %d for %q has no effects", i, h.EventType))
		}
		if !knownEvents[h.EventType] && !custom[h.EventType] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"handler %d listens for %q, which nothing emits", i, h.EventType))
		}
		for _, c := range h.Conditions {
			if typ, ok := unknownCondition(c); ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"handler for %q uses unknown condition type %q", h.EventType, typ))
			}
		}
		for _, eff := range h.Effects {
			if !effects.Known(eff.Type) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"handler for %q uses unknown effect type %q", h.EventType, eff.Type))
			}
		}
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// unknownCondition returns the first unknown condition type in c,
// following "not" wrappers.
func unknownCondition(c types.Condition) (string, bool) {
	if !rules.Known(c.Type) {
		return c.Type, true
	}
	if c.Inner != nil {
		return unknownCondition(*c.Inner)
	}
	return "", false
}
