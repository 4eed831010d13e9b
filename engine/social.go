package engine

import (
	"context"
	"fmt"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/effects"
	"github.com/nathoo/dicecore/engine/persuasion"
	"github.com/nathoo/dicecore/engine/ruleset"
	"github.com/nathoo/dicecore/engine/scout"
	"github.com/nathoo/dicecore/engine/synergy"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Persuade resolves a social check by actor against target. feature picks
// the thresholds: persuasion, intimidation or negotiation. Negotiations
// never drop below persuasion.NegotiationFloor. Shattered trust refuses
// further attempts until the mark expires or is consumed.
func (e *Engine) Persuade(ctx context.Context, feature types.Feature, actor, target string, pool int, c persuasion.Context) (Report[persuasion.Result], error) {
	var rep Report[persuasion.Result]
	switch feature {
	case types.FeaturePersuasion, types.FeatureIntimidation, types.FeatureNegotiation:
	default:
		return rep, errs.Invalid("engine: %s is not a social feature", feature)
	}
	if err := c.Validate(); err != nil {
		return rep, err
	}
	if _, ok := e.Arena.ActiveMark(ruleset.MarkTrustShattered, actor, target); ok {
		e.log.Printf("%s: %s no longer trusts %s", feature, target, actor)
		return rep, errs.Policy("engine: %s will not hear %s out", target, actor)
	}

	dc := c.Target()
	if feature == types.FeatureNegotiation {
		dc = difficulty.ComposeWithFloor(persuasion.NegotiationFloor, dc.Base, dc.Modifiers...)
	}
	a, err := e.roll(ctx, request{Feature: feature, Actor: actor, Subject: target, Pool: pool, Target: dc})
	if err != nil {
		return rep, err
	}
	res := persuasion.Resolve(c, a.Outcome, a.Margin)
	rep.Attempts, rep.Result = []Attempt{a}, res

	effs := []types.Effect{say(res.Narrative)}
	if res.TrustShattered {
		effs = append(effs, types.Effect{Type: effects.AddMark, Params: map[string]any{
			"kind":   ruleset.MarkTrustShattered,
			"actor":  "{actor}",
			"target": "{target}",
			"turns":  e.Ruleset.Persuasion.TrustShatteredTurns,
		}})
	}
	rep.Step, err = e.commit(effs, []types.Event{resolved(a)}, effects.Context{Actor: actor, Target: target})
	return rep, err
}

// Scout surveys the terrain ahead. Equipment adds bonus dice to pool.
func (e *Engine) Scout(ctx context.Context, actor string, pool int, c scout.Context) (Report[scout.Result], error) {
	var rep Report[scout.Result]
	if _, err := scout.NewContext(c.Terrain, c.Visibility); err != nil {
		return rep, err
	}
	a, err := e.roll(ctx, request{Feature: types.FeatureScout, Actor: actor, Pool: pool + c.BonusDice(), Target: c.Target()})
	if err != nil {
		return rep, err
	}
	res := scout.Resolve(a.Outcome, a.Margin)
	rep.Attempts, rep.Result = []Attempt{a}, res
	rep.Step, err = e.commit([]types.Effect{say(res.Narrative)}, []types.Event{resolved(a)}, effects.Context{Actor: actor})
	return rep, err
}

// Synergy runs a two-skill synergy for actor. The secondary check is only
// rolled when the synergy's timing allows it.
func (e *Engine) Synergy(ctx context.Context, actor string, kind synergy.Kind, sc synergy.Context, primaryPool, secondaryPool int) (Report[synergy.Result], error) {
	var rep Report[synergy.Result]
	def, ok := e.Ruleset.Synergies[kind]
	if !ok {
		return rep, errs.Invalid("engine: ruleset %s has no synergy %q", e.Ruleset.Name, kind)
	}
	pt, st, err := synergy.Targets(def, sc)
	if err != nil {
		return rep, err
	}

	ctx, span := e.tracer.Start(ctx, "dicecore.synergy")
	defer span.End()

	check := func(feature types.Feature, skill string, pool int, target difficulty.Target) (synergy.Check, error) {
		if feature == "" {
			feature = types.FeatureSynergy
		}
		a, err := e.roll(ctx, request{Feature: feature, Actor: actor, Subject: skill, Pool: pool, Target: target})
		if err != nil {
			return synergy.Check{}, err
		}
		rep.Attempts = append(rep.Attempts, a)
		return synergy.Check{Skill: skill, Roll: a.Roll, Target: target, Outcome: a.Outcome, Margin: a.Margin}, nil
	}

	primary, err := check(def.PrimaryFeature, def.PrimarySkill, primaryPool, pt)
	if err != nil {
		fail(span, err)
		return rep, err
	}
	res, err := synergy.Resolve(def, primary, func() (synergy.Check, error) {
		return check(def.SecondaryFeature, def.SecondarySkill, secondaryPool, st)
	})
	if err != nil {
		fail(span, err)
		return rep, err
	}
	rep.Result = res
	e.log.Printf("synergy %s actor=%s status=%s", kind, actor, res.Status)

	extra := make([]types.Event, 0, len(rep.Attempts)+1)
	for _, a := range rep.Attempts {
		extra = append(extra, resolved(a))
	}
	extra = append(extra, types.Event{Type: "synergy_resolved", Data: map[string]any{
		"actor":  actor,
		"kind":   string(kind),
		"status": res.Status.String(),
	}})
	rep.Step, err = e.commit([]types.Effect{say(res.Narrative)}, extra, effects.Context{Actor: actor})
	if err != nil {
		return rep, fmt.Errorf("synergy %s: %w", kind, err)
	}
	return rep, nil
}
