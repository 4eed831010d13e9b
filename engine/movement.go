package engine

import (
	"context"
	"strings"

	"github.com/nathoo/dicecore/engine/balance"
	"github.com/nathoo/dicecore/engine/climb"
	"github.com/nathoo/dicecore/engine/dice"
	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/effects"
	"github.com/nathoo/dicecore/engine/fall"
	"github.com/nathoo/dicecore/engine/leap"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Climb resolves one stage of a climb.
func (e *Engine) Climb(ctx context.Context, actor string, pool int, c climb.Context) (Report[climb.Result], error) {
	var rep Report[climb.Result]
	if err := c.Validate(); err != nil {
		return rep, err
	}
	a, err := e.roll(ctx, request{Feature: types.FeatureClimb, Actor: actor, Pool: pool, Target: c.Target()})
	if err != nil {
		return rep, err
	}
	res := climb.Resolve(c, a.Outcome, a.Margin)
	rep.Attempts, rep.Result = []Attempt{a}, res

	extra := []types.Event{resolved(a)}
	if f, ok := res.Fall(); ok {
		extra = append(extra, e.fell(actor, f))
	}
	rep.Step, err = e.commit([]types.Effect{say(res.Narrative)}, extra, effects.Context{Actor: actor})
	return rep, err
}

// Leap resolves a jump across a gap.
func (e *Engine) Leap(ctx context.Context, actor string, pool int, c leap.Context) (Report[leap.Result], error) {
	var rep Report[leap.Result]
	if err := c.Validate(); err != nil {
		return rep, err
	}
	a, err := e.roll(ctx, request{Feature: types.FeatureLeap, Actor: actor, Pool: pool, Target: c.Target()})
	if err != nil {
		return rep, err
	}
	res := leap.Resolve(c, a.Outcome, a.Margin)
	rep.Attempts, rep.Result = []Attempt{a}, res

	effs := []types.Effect{say(res.Narrative)}
	if res.Stress > 0 {
		effs = append(effs, types.Effect{Type: effects.Stress, Params: map[string]any{"target": "{actor}", "amount": res.Stress}})
	}
	for _, s := range res.Statuses {
		effs = append(effs, statusMark(s))
	}
	extra := []types.Event{resolved(a)}
	if res.FallTriggered {
		extra = append(extra, e.fell(actor, res.Fall))
	}
	rep.Step, err = e.commit(effs, extra, effects.Context{Actor: actor})
	return rep, err
}

// Balance resolves one balance check. The ruleset's base stamina cost
// replaces the context's.
func (e *Engine) Balance(ctx context.Context, actor string, pool int, c balance.Context) (Report[balance.Result], error) {
	var rep Report[balance.Result]
	c.BaseStamina = e.Ruleset.Balance.BaseStamina
	if err := c.Validate(); err != nil {
		return rep, err
	}
	a, err := e.roll(ctx, request{Feature: types.FeatureBalance, Actor: actor, Pool: pool, Target: c.Target()})
	if err != nil {
		return rep, err
	}
	res := balance.Resolve(c, a.Outcome, a.Margin)
	rep.Attempts, rep.Result = []Attempt{a}, res

	effs := []types.Effect{say(res.Narrative)}
	if res.StaminaCost > 0 {
		effs = append(effs, types.Effect{Type: effects.Stamina, Params: map[string]any{"target": "{actor}", "amount": res.StaminaCost}})
	}
	extra := []types.Event{resolved(a)}
	if f, ok := res.Fall(); ok {
		extra = append(extra, e.fell(actor, f))
	}
	rep.Step, err = e.commit(effs, extra, effects.Context{Actor: actor})
	return rep, err
}

// Landing selects how a falling character tries to land. A zero Landing
// makes no attempt.
type Landing struct {
	Pool        int // crash landing pool
	Featherfall bool
}

// FallResult is a fall after mitigation, with the damage rolled for it.
type FallResult struct {
	Fall   fall.Fall
	Crash  fall.CrashResult
	Damage dice.Damage
}

// Fall applies fall damage, after an optional crash landing or
// featherfall. Falls too short to hurt skip the landing entirely.
func (e *Engine) Fall(ctx context.Context, actor string, f fall.Fall, land Landing) (Report[FallResult], error) {
	var rep Report[FallResult]
	if _, err := fall.New(f.HeightFeet, f.Source, f.BonusDice); err != nil {
		return rep, err
	}
	if land.Pool < 0 {
		return rep, errs.Invalid("fall: crash landing pool must be non-negative, got %d", land.Pool)
	}

	cfg := e.Ruleset.Fall
	original := f.Dice(cfg)
	target := f.CrashTarget(cfg)
	var extra []types.Event

	var crash fall.CrashResult
	switch {
	case original == 0:
		if f.BonusDice > 0 {
			e.log.Printf("fall %dft: below %dft, %d bonus dice dropped", f.HeightFeet, cfg.MinimumHeight, f.BonusDice)
		}
		crash = fall.NoAttempt(0)
	case land.Featherfall:
		var ok bool
		crash, ok = fall.Featherfall(target, original, cfg)
		if !ok {
			e.log.Printf("featherfall refused: target %d above %d", target, cfg.FeatherfallMaxDC)
			return rep, errs.Policy("fall: featherfall cannot soften a landing at target %d", target)
		}
	case land.Pool > 0:
		a, err := e.roll(ctx, request{
			Feature: types.FeatureCrashLanding,
			Actor:   actor,
			Pool:    land.Pool,
			Target:  difficulty.Compose(target),
		})
		if err != nil {
			return rep, err
		}
		crash, err = fall.CrashLanding(target, a.Roll.Net, a.Outcome, original)
		if err != nil {
			return rep, err
		}
		rep.Attempts = []Attempt{a}
		extra = append(extra, resolved(a))
	default:
		crash = fall.NoAttempt(original)
	}

	dmg, err := e.DamageRoll(ctx, actor, types.DiceExpr{Count: crash.FinalDice, Sides: cfg.DamageSides})
	if err != nil {
		return rep, err
	}
	rep.Result = FallResult{Fall: f, Crash: crash, Damage: dmg}

	effs := []types.Effect{say(crash.Narrative())}
	if dmg.Total > 0 {
		effs = append(effs, types.Effect{Type: effects.Damage, Params: map[string]any{
			"target": "{actor}", "amount": dmg.Total, "type": cfg.DamageType,
		}})
	}
	rep.Step, err = e.commit(effs, extra, effects.Context{Actor: actor})
	return rep, err
}

// fell is the event announcing a fall that still needs landing.
func (e *Engine) fell(actor string, f fall.Fall) types.Event {
	return types.Event{Type: "fell", Data: map[string]any{
		"actor":  actor,
		"height": f.HeightFeet,
		"source": string(f.Source),
		"dice":   f.Dice(e.Ruleset.Fall),
	}}
}

func say(text string) types.Effect {
	return types.Effect{Type: effects.Say, Params: map[string]any{"text": text}}
}

// statusMark records a timed status as a mark the actor holds on itself.
func statusMark(s types.Status) types.Effect {
	return types.Effect{Type: effects.AddMark, Params: map[string]any{
		"kind":   strings.ToLower(s.Name),
		"actor":  "{actor}",
		"target": "{actor}",
		"turns":  s.Rounds,
	}}
}
