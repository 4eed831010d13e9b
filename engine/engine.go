// Package engine wires the dice roller, outcome classifier and feature
// calculators into one facade. Every resolution rolls, classifies,
// journals and traces a check, converts the feature result into effects,
// applies them to the arena and dispatches the resulting events once.
package engine

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/nathoo/dicecore/engine/dice"
	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/effects"
	"github.com/nathoo/dicecore/engine/events"
	"github.com/nathoo/dicecore/engine/ruleset"
	"github.com/nathoo/dicecore/engine/state"
	"github.com/nathoo/dicecore/journal"
	"github.com/nathoo/dicecore/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/nathoo/dicecore/engine"

// Recorder persists one journal entry per roll. *journal.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Engine holds the ruleset and the mutable arena. It is not safe for
// concurrent use.
type Engine struct {
	Ruleset *ruleset.Ruleset
	Arena   *state.Arena
	RNG     *RNG
	Session string

	seq      int64
	log      *log.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger resolutions are reported to.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithRecorder journals every roll to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithTracerProvider takes the engine tracer from tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracer = tp.Tracer(tracerName) }
}

// WithRuleset replaces the built-in ruleset.
func WithRuleset(rs *ruleset.Ruleset) Option {
	return func(e *Engine) { e.Ruleset = rs }
}

// WithSeed seeds a fresh RNG.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.RNG = NewRNG(seed) }
}

// WithRNG uses an existing RNG, typically one from RestoreRNG.
func WithRNG(r *RNG) Option {
	return func(e *Engine) { e.RNG = r }
}

// WithSession sets the journal session id.
func WithSession(id string) Option {
	return func(e *Engine) { e.Session = id }
}

// New creates an engine. Without WithSeed or WithRNG the RNG is seeded
// from crypto/rand.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		Ruleset: ruleset.Default(),
		Arena:   state.NewArena(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Ruleset == nil {
		return nil, fmt.Errorf("engine: ruleset is required")
	}
	if err := e.Ruleset.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.RNG == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.RNG = NewRNG(seed)
	}
	if e.Session == "" {
		e.Session = journal.NewSession()
	}
	if e.log == nil {
		e.log = log.New(io.Discard, "", 0)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	return e, nil
}

// RestoreRNG re-creates the RNG from seed and advances to position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
}

// Resume continues a journaled session after its last entry: the RNG is
// restored to the entry's position and numbering picks up after it.
func (e *Engine) Resume(last journal.Entry) {
	e.Session = last.Session
	e.seq = last.Seq
	e.RestoreRNG(last.Seed, last.Position)
}

// Seq returns the sequence number of the last journaled roll.
func (e *Engine) Seq() int64 { return e.seq }

// Step is everything one resolution changed: the effects applied, the
// events they emitted and any text produced along the way.
type Step struct {
	Output  []string
	Effects []types.Effect
	Events  []types.Event
}

func (s *Step) merge(o Step) {
	s.Output = append(s.Output, o.Output...)
	s.Effects = append(s.Effects, o.Effects...)
	s.Events = append(s.Events, o.Events...)
}

// Attempt is one journaled roll and its classification against a target.
// Unclassified rolls carry a zero Target.
type Attempt struct {
	Feature types.Feature
	Actor   string
	Subject string
	Pool    int
	Roll    types.Roll
	Target  difficulty.Target
	Outcome types.Outcome
	Margin  int
}

// Report pairs a feature result with the attempts behind it and the arena
// changes it caused.
type Report[T any] struct {
	Attempts []Attempt
	Result   T
	Step
}

// Attempt returns the first attempt, which is the deciding roll for
// single-roll features.
func (r Report[T]) Attempt() Attempt {
	if len(r.Attempts) == 0 {
		return Attempt{}
	}
	return r.Attempts[0]
}

// commit applies effs, dispatches their events plus extra to the ruleset
// handlers, and applies the handler effects without re-dispatching.
func (e *Engine) commit(effs []types.Effect, extra []types.Event, ectx effects.Context) (Step, error) {
	var st Step

	evts, out, err := effects.Apply(e.Arena, effs, ectx)
	st.Effects = append(st.Effects, effs...)
	st.Events = append(st.Events, evts...)
	st.Events = append(st.Events, extra...)
	st.Output = append(st.Output, out...)
	if err != nil {
		return st, err
	}

	handlerEffs := events.Dispatch(st.Events, e.Ruleset.Handlers, e.Arena)
	if len(handlerEffs) == 0 {
		return st, nil
	}
	evts2, out2, err := effects.Apply(e.Arena, handlerEffs, ectx)
	st.Effects = append(st.Effects, handlerEffs...)
	st.Events = append(st.Events, evts2...)
	st.Output = append(st.Output, out2...)
	return st, err
}

// EndTurn advances the arena one turn, expiring zones and marks, and
// dispatches zone_expired, mark_expired and turn_ended events.
func (e *Engine) EndTurn(ctx context.Context) (Step, error) {
	_, span := e.tracer.Start(ctx, "dicecore.end_turn")
	defer span.End()

	var evts []types.Event
	for _, x := range e.Arena.EndTurn() {
		evts = append(evts, types.Event{
			Type: x.Kind + "_expired",
			Data: map[string]any{x.Kind: x.Handle, "name": x.Name},
		})
	}
	evts = append(evts, types.Event{Type: "turn_ended", Data: map[string]any{"turn": e.Arena.Turn}})
	e.log.Printf("turn %d ended: %d expired", e.Arena.Turn, len(evts)-1)

	st, err := e.commit(nil, evts, effects.Context{})
	if err != nil {
		fail(span, err)
	}
	return st, err
}

// DamageRoll rolls sum-based damage and journals the faces.
func (e *Engine) DamageRoll(ctx context.Context, actor string, expr types.DiceExpr) (dice.Damage, error) {
	dmg, err := dice.RollDamage(e.RNG, expr)
	if err != nil {
		return dice.Damage{}, err
	}
	if len(dmg.Faces) > 0 {
		err = e.record(ctx, journal.Entry{
			Feature: string(types.FeatureDamage),
			Actor:   actor,
			Pool:    expr.Count,
			Faces:   dmg.Faces,
			Net:     dmg.Total,
		})
	}
	return dmg, err
}

// record stamps e with the session, sequence and RNG position and hands
// it to the recorder, if any.
func (e *Engine) record(ctx context.Context, entry journal.Entry) error {
	e.seq++
	if e.recorder == nil {
		return nil
	}
	entry.Session = e.Session
	entry.Seq = e.seq
	entry.Seed = e.RNG.Seed()
	entry.Position = e.RNG.Position()
	if err := e.recorder.Record(ctx, entry); err != nil {
		return fmt.Errorf("journal roll %d: %w", e.seq, err)
	}
	return nil
}
