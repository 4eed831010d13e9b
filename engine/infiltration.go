package engine

import (
	"context"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/effects"
	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/ruleset"
	"github.com/nathoo/dicecore/engine/state"
	"github.com/nathoo/dicecore/engine/stealth"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// LockdownTurns is how long a lockdown zone from a trap lasts.
const LockdownTurns = 3

// Stealth resolves a solo stealth check. Being detected breaks any hidden
// status the actor holds.
func (e *Engine) Stealth(ctx context.Context, actor string, pool int, c stealth.Context) (Report[stealth.Result], error) {
	var rep Report[stealth.Result]
	if err := c.Validate(); err != nil {
		return rep, err
	}
	a, err := e.roll(ctx, request{Feature: types.FeatureStealth, Actor: actor, Pool: pool, Target: c.Target()})
	if err != nil {
		return rep, err
	}
	res := stealth.Resolve(a.Outcome, a.Margin)
	rep.Attempts, rep.Result = []Attempt{a}, res
	rep.Step, err = e.commit(stealthEffects(res, actor), []types.Event{resolved(a)}, effects.Context{Actor: actor})
	return rep, err
}

// PartyStealth rolls once for the whole party using the weakest member's
// pool and applies the shared result to everyone.
func (e *Engine) PartyStealth(ctx context.Context, members []stealth.Member, c stealth.Context) (Report[stealth.PartyResult], error) {
	var rep Report[stealth.PartyResult]
	if err := c.Validate(); err != nil {
		return rep, err
	}
	roller, err := stealth.WeakestLink(members)
	if err != nil {
		return rep, err
	}
	a, err := e.roll(ctx, request{Feature: types.FeatureStealth, Actor: roller.ID, Pool: roller.Pool, Target: c.Target()})
	if err != nil {
		return rep, err
	}
	res, err := stealth.Party(members, stealth.Resolve(a.Outcome, a.Margin))
	if err != nil {
		return rep, err
	}
	rep.Attempts, rep.Result = []Attempt{a}, res

	rep.Step, err = e.commit(stealthEffects(res.Result, res.Members...), []types.Event{resolved(a)}, effects.Context{Actor: roller.ID})
	return rep, err
}

// stealthEffects returns the narrative followed by the effects of r on
// every actor. A system alert raises the alert level once.
func stealthEffects(r stealth.Result, actors ...string) []types.Effect {
	effs := []types.Effect{say(r.Narrative)}
	if r.Detected {
		for _, actor := range actors {
			effs = append(effs, types.Effect{Type: effects.BreakHidden, Params: map[string]any{
				"actor": actor, "cause": string(stealth.BreakDetected),
			}})
		}
	}
	if r.SystemAlert {
		effs = append(effs, types.Effect{Type: effects.RaiseAlert, Params: map[string]any{"amount": 1}})
	}
	return effs
}

// Hide grants actor a hidden status from ability.
func (e *Engine) Hide(actor string, ability stealth.Ability) (Step, error) {
	return e.commit([]types.Effect{{Type: effects.Hide, Params: map[string]any{
		"actor": actor, "ability": ability.String(),
	}}}, nil, effects.Context{Actor: actor})
}

// BreakHidden ends actor's hidden status if cond breaks it.
func (e *Engine) BreakHidden(actor string, cond stealth.BreakCondition) (Step, error) {
	return e.commit([]types.Effect{{Type: effects.BreakHidden, Params: map[string]any{
		"actor": actor, "cause": string(cond),
	}}}, nil, effects.Context{Actor: actor})
}

// PlaceTrap arms a trap of the ruleset's kind in the arena.
func (e *Engine) PlaceTrap(kind trap.Kind) (*state.Trap, error) {
	def, ok := e.Ruleset.Traps[kind]
	if !ok {
		return nil, errs.Invalid("engine: ruleset %s has no trap %q", e.Ruleset.Name, kind)
	}
	return e.Arena.PlaceTrap(def)
}

// DetectTrap searches for an armed trap. Missing it sets it off on actor.
func (e *Engine) DetectTrap(ctx context.Context, actor string, h state.Handle, pool int, mods ...types.Modifier) (Report[trap.DetectResult], error) {
	var rep Report[trap.DetectResult]
	t, err := e.trapFor("detect", h, trap.Status.CanDetect)
	if err != nil {
		return rep, err
	}
	a, err := e.roll(ctx, request{
		Feature: types.FeatureTrapDetect,
		Actor:   actor,
		Subject: h.String(),
		Pool:    pool,
		Target:  t.Definition.DetectionTarget(mods...),
	})
	if err != nil {
		return rep, err
	}
	res := trap.ResolveDetect(t.Definition, a.Outcome, a.Margin)
	rep.Attempts, rep.Result = []Attempt{a}, res

	var effs []types.Effect
	if res.Detected {
		effs = []types.Effect{say(res.Narrative), trapEffect(effects.TrapDetect, h)}
	} else {
		effs, err = e.spring(ctx, actor, h, effects.TrapTrigger, *res.Trigger)
		if err != nil {
			return rep, err
		}
	}
	rep.Step, err = e.commit(effs, []types.Event{resolved(a)}, effects.Context{Actor: actor})
	return rep, err
}

// AnalyzeTrap studies a detected trap. Net successes against the disarm
// difficulty decide how much is revealed.
func (e *Engine) AnalyzeTrap(ctx context.Context, actor string, h state.Handle, pool int) (Report[trap.AnalyzeResult], error) {
	var rep Report[trap.AnalyzeResult]
	t, err := e.trapFor("analyze", h, trap.Status.CanAnalyze)
	if err != nil {
		return rep, err
	}
	target := difficulty.Compose(t.Definition.DisarmBase())
	target.Traditional = t.Definition.DisarmDC
	a, err := e.roll(ctx, request{
		Feature: types.FeatureTrapAnalyze,
		Actor:   actor,
		Subject: h.String(),
		Pool:    pool,
		Target:  target,
	})
	if err != nil {
		return rep, err
	}
	res := trap.ResolveAnalyze(t.Definition, a.Roll.Net, target.Effective)
	rep.Attempts, rep.Result = []Attempt{a}, res

	eff := trapEffect(effects.TrapAnalyze, h)
	eff.Params["hint"] = res.HintBonus
	rep.Step, err = e.commit([]types.Effect{eff}, []types.Event{resolved(a)}, effects.Context{Actor: actor})
	return rep, err
}

// DisarmTrap attempts to disarm a detected or analyzed trap with tool.
// Failed attempts and any analysis hint carry over from the arena.
func (e *Engine) DisarmTrap(ctx context.Context, actor string, h state.Handle, pool int, tool trap.Tool) (Report[trap.DisarmResult], error) {
	var rep Report[trap.DisarmResult]
	t, err := e.trapFor("disarm", h, trap.Status.CanDisarm)
	if err != nil {
		return rep, err
	}
	dc, err := trap.NewDisarmContext(t.Definition, tool, t.FailedAttempts, t.HintBonus)
	if err != nil {
		e.log.Printf("trap %s: %v", h, err)
		return rep, err
	}
	a, err := e.roll(ctx, request{
		Feature: types.FeatureTrapDisarm,
		Actor:   actor,
		Subject: h.String(),
		Pool:    max(0, pool+dc.PoolModifier()),
		Target:  dc.Target(),
	})
	if err != nil {
		return rep, err
	}
	res := trap.ResolveDisarm(dc, a.Outcome, a.Margin)
	rep.Attempts, rep.Result = []Attempt{a}, res

	var effs []types.Effect
	switch {
	case res.Disarmed:
		effs = []types.Effect{say(res.Narrative), trapEffect(effects.TrapDisarm, h)}
	case res.FailedAttempt:
		effs = []types.Effect{say(res.Narrative), trapEffect(effects.TrapFail, h)}
	case res.Destroyed:
		effs, err = e.spring(ctx, actor, h, effects.TrapDestroy, *res.Trigger)
		if err != nil {
			return rep, err
		}
	}
	rep.Step, err = e.commit(effs, []types.Event{resolved(a)}, effects.Context{Actor: actor})
	return rep, err
}

// ClearTrap destroys a trap that has already gone off, retiring it from
// the arena.
func (e *Engine) ClearTrap(actor string, h state.Handle) (Step, error) {
	t, err := e.trapFor("clear", h, trap.Status.CanClear)
	if err != nil {
		return Step{}, err
	}
	if t.Status == trap.Destroyed {
		return Step{}, nil
	}
	return e.commit([]types.Effect{trapEffect(effects.TrapDestroy, h)}, nil, effects.Context{Actor: actor})
}

func (e *Engine) trapFor(op string, h state.Handle, allowed func(trap.Status) bool) (*state.Trap, error) {
	t, err := e.Arena.Trap(h)
	if err != nil {
		return nil, err
	}
	if !allowed(t.Status) {
		e.log.Printf("trap %s: refused %s while %s", h, op, t.Status)
		return nil, errs.Policy("engine: cannot %s trap %s while %s", op, h, t.Status)
	}
	return t, nil
}

// spring moves the trap with move and returns the effects of it going
// off on actor: its narrative, rolled damage, alarm and lockdown.
func (e *Engine) spring(ctx context.Context, actor string, h state.Handle, move string, trig trap.Trigger) ([]types.Effect, error) {
	effs := []types.Effect{say(trig.Narrative), trapEffect(move, h)}
	if !trig.Damage.IsZero() {
		dmg, err := e.DamageRoll(ctx, actor, trig.Damage)
		if err != nil {
			return nil, err
		}
		effs = append(effs, types.Effect{Type: effects.Damage, Params: map[string]any{
			"target": "{actor}", "amount": dmg.Total, "type": trig.DamageType,
		}})
	}
	if trig.Alarm {
		effs = append(effs, types.Effect{Type: effects.RaiseAlert, Params: map[string]any{"amount": 1}})
	}
	if trig.Lockdown {
		effs = append(effs, types.Effect{Type: effects.AddZone, Params: map[string]any{
			"name": "lockdown", "kind": "lockdown", "turns": LockdownTurns,
		}})
	}
	return effs, nil
}

func trapEffect(typ string, h state.Handle) types.Effect {
	return types.Effect{Type: typ, Params: map[string]any{"trap": h}}
}

// Bypass attempts to get past a terminal's ICE. A terminal locked out for
// actor refuses the attempt. A backdoor left by an earlier win against
// active ICE adds a bonus die and is consumed. Lethal ICE is resisted with
// willPool against the fixed will save instead.
func (e *Engine) Bypass(ctx context.Context, actor string, terminal ice.Terminal, pool, willPool int) (Report[ice.Result], error) {
	var rep Report[ice.Result]
	def, ok := e.Ruleset.Terminals[terminal]
	if !ok {
		return rep, errs.Invalid("engine: ruleset %s has no terminal %q", e.Ruleset.Name, terminal)
	}
	subject := string(terminal)
	if _, locked := e.Arena.ActiveMark(ruleset.MarkLockout, actor, subject); locked {
		e.log.Printf("bypass %s: %s is locked out", subject, actor)
		return rep, errs.Policy("engine: %s is locked out of %s", actor, subject)
	}

	var effs []types.Effect
	var extra []types.Event
	var res ice.Result
	switch def.ICE {
	case ice.None:
		res = ice.Unguarded(def)
	case ice.Lethal:
		a, err := e.roll(ctx, request{Feature: types.FeatureWillSave, Actor: actor, Subject: subject, Pool: willPool, Target: ice.WillSaveTarget()})
		if err != nil {
			return rep, err
		}
		res = ice.ResolveLethal(def, a.Outcome, a.Margin)
		rep.Attempts = append(rep.Attempts, a)
		extra = append(extra, resolved(a))
	default:
		if _, ok := e.Arena.ActiveMark(ruleset.MarkBackdoor, actor, subject); ok {
			pool++
			effs = append(effs, types.Effect{Type: effects.ConsumeMark, Params: map[string]any{
				"kind": ruleset.MarkBackdoor, "actor": actor, "target": subject,
			}})
		}
		a, err := e.roll(ctx, request{Feature: types.FeatureBypass, Actor: actor, Subject: subject, Pool: pool, Target: def.Target()})
		if err != nil {
			return rep, err
		}
		res = ice.Resolve(def, a.Outcome, a.Margin)
		rep.Attempts = append(rep.Attempts, a)
		extra = append(extra, resolved(a))
	}
	rep.Result = res

	iceEffs, err := e.iceEffects(ctx, actor, subject, res)
	if err != nil {
		return rep, err
	}
	// The encounter exists only once every roll has succeeded.
	enc, err := e.Arena.OpenEncounter(actor, def)
	if err != nil {
		return rep, err
	}
	effs = append(effs, types.Effect{Type: effects.Resolve, Params: map[string]any{"encounter": enc.Handle, "result": res}})
	effs = append(effs, iceEffs...)
	rep.Step, err = e.commit(effs, extra, effects.Context{Actor: actor, Target: subject})
	return rep, err
}

func (e *Engine) iceEffects(ctx context.Context, actor, subject string, r ice.Result) ([]types.Effect, error) {
	effs := []types.Effect{say(r.Narrative)}
	mark := func(kind string, turns int) {
		effs = append(effs, types.Effect{Type: effects.AddMark, Params: map[string]any{
			"kind": kind, "actor": actor, "target": subject, "turns": turns,
		}})
	}
	if r.BonusDice > 0 {
		mark(ruleset.MarkBackdoor, 0)
	}
	switch {
	case r.PermanentLockout:
		mark(ruleset.MarkLockout, 0)
	case r.LockoutTurns > 0:
		mark(ruleset.MarkLockout, r.LockoutTurns)
	}
	if r.AlertIncrease > 0 {
		effs = append(effs, types.Effect{Type: effects.RaiseAlert, Params: map[string]any{"amount": r.AlertIncrease}})
	}
	if !r.Damage.IsZero() {
		dmg, err := e.DamageRoll(ctx, actor, r.Damage)
		if err != nil {
			return nil, err
		}
		effs = append(effs, types.Effect{Type: effects.Damage, Params: map[string]any{
			"target": "{actor}", "amount": dmg.Total, "type": r.DamageType,
		}})
	}
	if !r.Stress.IsZero() {
		st, err := e.DamageRoll(ctx, actor, r.Stress)
		if err != nil {
			return nil, err
		}
		effs = append(effs, types.Effect{Type: effects.Stress, Params: map[string]any{
			"target": "{actor}", "amount": st.Total,
		}})
	}
	return effs, nil
}

// AnalyzeTerminal probes a terminal. Net successes against its encounter
// difficulty decide how much is revealed.
func (e *Engine) AnalyzeTerminal(ctx context.Context, actor string, terminal ice.Terminal, pool int) (Report[ice.Analysis], error) {
	var rep Report[ice.Analysis]
	def, ok := e.Ruleset.Terminals[terminal]
	if !ok {
		return rep, errs.Invalid("engine: ruleset %s has no terminal %q", e.Ruleset.Name, terminal)
	}
	target := def.Target()
	a, err := e.roll(ctx, request{Feature: types.FeatureBypass, Actor: actor, Subject: string(terminal), Pool: pool, Target: target})
	if err != nil {
		return rep, err
	}
	rep.Attempts = []Attempt{a}
	rep.Result = ice.AnalyzeTerminal(def, a.Roll.Net, target.Effective)
	return rep, nil
}
