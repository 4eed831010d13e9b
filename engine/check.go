package engine

import (
	"context"
	"fmt"

	"github.com/nathoo/dicecore/engine/contest"
	"github.com/nathoo/dicecore/engine/dice"
	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/effects"
	"github.com/nathoo/dicecore/journal"
	"github.com/nathoo/dicecore/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// request describes one roll to make.
type request struct {
	Feature types.Feature
	Actor   string
	Subject string
	Pool    int
	Target  difficulty.Target
	Mode    dice.Mode
}

// roll rolls the pool, classifies it when a target is set, then traces,
// logs and journals the attempt.
func (e *Engine) roll(ctx context.Context, req request) (Attempt, error) {
	ctx, span := e.tracer.Start(ctx, "dicecore."+string(req.Feature))
	defer span.End()

	a, err := e.rollInSpan(ctx, span, req)
	if err != nil {
		fail(span, err)
	}
	return a, err
}

func (e *Engine) rollInSpan(ctx context.Context, span trace.Span, req request) (Attempt, error) {
	span.SetAttributes(
		attribute.String("dicecore.feature", string(req.Feature)),
		attribute.String("dicecore.actor", req.Actor),
		attribute.Int("dicecore.pool", req.Pool),
	)

	pair, err := dice.RollWithAdvantage(e.RNG, req.Pool, e.Ruleset.Dice, req.Mode)
	if err != nil {
		return Attempt{}, fmt.Errorf("%s: %w", req.Feature, err)
	}
	a := Attempt{
		Feature: req.Feature,
		Actor:   req.Actor,
		Subject: req.Subject,
		Pool:    req.Pool,
		Roll:    pair.Kept,
		Target:  req.Target,
	}
	span.SetAttributes(
		attribute.Int("dicecore.net", a.Roll.Net),
		attribute.Bool("dicecore.fumble", a.Roll.Fumble),
	)

	entry := journal.Entry{
		Feature: string(req.Feature),
		Actor:   req.Actor,
		Target:  req.Subject,
		Pool:    a.Roll.Pool,
		Faces:   a.Roll.Faces,
		Net:     a.Roll.Net,
	}

	if req.Target.Effective > 0 {
		c, err := e.Ruleset.Outcomes.Classify(req.Feature, a.Roll, req.Target.Effective)
		if err != nil {
			return Attempt{}, fmt.Errorf("%s: %w", req.Feature, err)
		}
		a.Outcome, a.Margin = c.Outcome, c.Margin
		entry.DC, entry.Outcome, entry.Margin = c.Target, c.Outcome.String(), c.Margin
		span.SetAttributes(
			attribute.Int("dicecore.target", c.Target),
			attribute.String("dicecore.outcome", c.Outcome.String()),
			attribute.Int("dicecore.margin", c.Margin),
		)
		e.log.Printf("%s actor=%s pool=%d target=%d net=%d outcome=%s margin=%d",
			req.Feature, req.Actor, a.Roll.Pool, c.Target, a.Roll.Net, c.Outcome, c.Margin)
	} else {
		e.log.Printf("%s actor=%s pool=%d net=%d", req.Feature, req.Actor, a.Roll.Pool, a.Roll.Net)
	}

	if err := e.record(ctx, entry); err != nil {
		return a, err
	}
	return a, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// resolved is the check_resolved event for a classified attempt.
func resolved(a Attempt) types.Event {
	return types.Event{Type: "check_resolved", Data: map[string]any{
		"feature": string(a.Feature),
		"actor":   a.Actor,
		"target":  a.Subject,
		"outcome": a.Outcome.String(),
		"margin":  a.Margin,
	}}
}

// Roll rolls an unclassified pool for actor.
func (e *Engine) Roll(ctx context.Context, actor string, pool int) (types.Roll, error) {
	a, err := e.roll(ctx, request{Feature: types.FeatureCheck, Actor: actor, Pool: pool})
	return a.Roll, err
}

// Check rolls pool against target and classifies it with the thresholds
// for feature.
func (e *Engine) Check(ctx context.Context, feature types.Feature, actor string, pool int, target difficulty.Target) (Report[Attempt], error) {
	return e.CheckWithMode(ctx, feature, actor, pool, target, dice.Normal)
}

// CheckWithMode is Check rolled with advantage or disadvantage.
func (e *Engine) CheckWithMode(ctx context.Context, feature types.Feature, actor string, pool int, target difficulty.Target, mode dice.Mode) (Report[Attempt], error) {
	if target.Effective < 1 {
		return Report[Attempt]{}, fmt.Errorf("%s: target must be composed, got %d", feature, target.Effective)
	}
	a, err := e.roll(ctx, request{Feature: feature, Actor: actor, Pool: pool, Target: target, Mode: mode})
	if err != nil {
		return Report[Attempt]{}, err
	}
	rep := Report[Attempt]{Attempts: []Attempt{a}, Result: a}
	rep.Step, err = e.commit(nil, []types.Event{resolved(a)}, effects.Context{Actor: actor})
	return rep, err
}

// Side is one participant in a contest.
type Side struct {
	Actor string
	Pool  int
}

// Contest rolls both sides and compares net successes.
func (e *Engine) Contest(ctx context.Context, initiator, defender Side) (Report[contest.Result], error) {
	ctx, span := e.tracer.Start(ctx, "dicecore.contest")
	defer span.End()

	ia, err := e.roll(ctx, request{Feature: types.FeatureContest, Actor: initiator.Actor, Subject: defender.Actor, Pool: initiator.Pool})
	if err != nil {
		fail(span, err)
		return Report[contest.Result]{}, err
	}
	da, err := e.roll(ctx, request{Feature: types.FeatureContest, Actor: defender.Actor, Subject: initiator.Actor, Pool: defender.Pool})
	if err != nil {
		fail(span, err)
		return Report[contest.Result]{}, err
	}

	res := contest.Resolve(ia.Roll, da.Roll)
	span.SetAttributes(
		attribute.String("dicecore.contest.kind", res.Kind.String()),
		attribute.Int("dicecore.margin", res.Margin),
	)
	e.log.Printf("contest %s vs %s: %s margin=%d", initiator.Actor, defender.Actor, res.Kind, res.Margin)

	rep := Report[contest.Result]{Attempts: []Attempt{ia, da}, Result: res}
	ev := types.Event{Type: "contest_resolved", Data: map[string]any{
		"initiator": initiator.Actor,
		"defender":  defender.Actor,
		"kind":      res.Kind.String(),
		"winner":    res.Winner().String(),
		"margin":    res.Margin,
	}}
	rep.Step, err = e.commit(nil, []types.Event{ev}, effects.Context{Actor: initiator.Actor, Target: defender.Actor})
	return rep, err
}
