// Package ruleset defines the configuration value every engine component
// reads: dice and outcome tuning plus the trap, terminal and synergy
// tables and the event handlers loaded with them.
package ruleset

import (
	"fmt"
	"maps"

	"github.com/nathoo/dicecore/engine/dice"
	"github.com/nathoo/dicecore/engine/fall"
	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/outcome"
	"github.com/nathoo/dicecore/engine/synergy"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Mark kinds the engine places and checks.
const (
	MarkTrustShattered = "trust_shattered"
	MarkLockout        = "lockout"
	MarkBackdoor       = "backdoor"
)

// Ruleset is the complete tuning for one session.
type Ruleset struct {
	Name       string
	Dice       dice.Config
	Outcomes   outcome.Classifier
	Fall       fall.Config
	Balance    BalanceConfig
	Persuasion PersuasionConfig
	Traps      map[trap.Kind]trap.Definition
	Terminals  map[ice.Terminal]ice.Definition
	Synergies  map[synergy.Kind]synergy.Definition
	Handlers   []types.EventHandler
}

// BalanceConfig tunes balance checks.
type BalanceConfig struct {
	BaseStamina int
}

// PersuasionConfig tunes social checks. A TrustShatteredTurns of 0 keeps
// the mark until it is consumed.
type PersuasionConfig struct {
	TrustShatteredTurns int
}

// Default returns the built-in ruleset.
func Default() *Ruleset {
	social := outcome.Thresholds{Critical: 5, Exceptional: 3, Full: 1}
	return &Ruleset{
		Name: "default",
		Dice: dice.DefaultConfig(),
		Outcomes: outcome.Classifier{
			Default: outcome.DefaultThresholds(),
			PerFeature: map[types.Feature]outcome.Thresholds{
				types.FeatureIntimidation: social,
				types.FeatureNegotiation:  social,
			},
		},
		Fall:      fall.DefaultConfig(),
		Balance:   BalanceConfig{BaseStamina: 1},
		Traps:     trap.Defaults(),
		Terminals: ice.Defaults(),
		Synergies: synergy.Defaults(),
	}
}

// Clone returns a copy whose maps and slices can be modified independently.
func (r *Ruleset) Clone() *Ruleset {
	c := *r
	c.Outcomes.PerFeature = maps.Clone(r.Outcomes.PerFeature)
	c.Traps = maps.Clone(r.Traps)
	c.Terminals = maps.Clone(r.Terminals)
	c.Synergies = maps.Clone(r.Synergies)
	c.Handlers = append([]types.EventHandler(nil), r.Handlers...)
	return &c
}

// Validate checks every table and config in the ruleset.
func (r *Ruleset) Validate() error {
	if err := r.Dice.Validate(); err != nil {
		return fmt.Errorf("ruleset %s: dice: %w", r.Name, err)
	}
	if err := r.Outcomes.Default.Validate(); err != nil {
		return fmt.Errorf("ruleset %s: outcomes: %w", r.Name, err)
	}
	for f, t := range r.Outcomes.PerFeature {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("ruleset %s: thresholds for %s: %w", r.Name, f, err)
		}
	}
	if err := r.Fall.Validate(); err != nil {
		return fmt.Errorf("ruleset %s: fall: %w", r.Name, err)
	}
	if r.Balance.BaseStamina < 0 {
		return errs.Invalid("ruleset %s: balance stamina must be non-negative, got %d", r.Name, r.Balance.BaseStamina)
	}
	if r.Persuasion.TrustShatteredTurns < 0 {
		return errs.Invalid("ruleset %s: trust shattered turns must be non-negative, got %d", r.Name, r.Persuasion.TrustShatteredTurns)
	}
	for k, d := range r.Traps {
		if k != d.Kind {
			return errs.Invalid("ruleset %s: trap %s is filed under %s", r.Name, d.Kind, k)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("ruleset %s: %w", r.Name, err)
		}
	}
	for k, d := range r.Terminals {
		if k != d.Terminal {
			return errs.Invalid("ruleset %s: terminal %s is filed under %s", r.Name, d.Terminal, k)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("ruleset %s: %w", r.Name, err)
		}
	}
	for k, d := range r.Synergies {
		if k != d.Kind {
			return errs.Invalid("ruleset %s: synergy %s is filed under %s", r.Name, d.Kind, k)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("ruleset %s: %w", r.Name, err)
		}
	}
	return nil
}
