// Package effects applies data-only effects to the arena. Every effect
// type is one atomic mutation and may emit events describing it.
package effects

import (
	"strings"

	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/state"
	"github.com/nathoo/dicecore/engine/stealth"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Effect types.
const (
	Say         = "say"
	RaiseAlert  = "raise_alert"
	AddZone     = "add_zone"
	AddMark     = "add_mark"
	ConsumeMark = "consume_mark"
	TrapDetect  = "trap_detect"
	TrapTrigger = "trap_trigger"
	TrapAnalyze = "trap_analyze"
	TrapFail    = "trap_fail"
	TrapDisarm  = "trap_disarm"
	TrapDestroy = "trap_destroy"
	Hide        = "hide"
	BreakHidden = "break_hidden"
	Resolve     = "resolve_encounter"
	Damage      = "damage"
	Stress      = "stress"
	Stamina     = "stamina"
	EmitEvent   = "emit_event"
	Stop        = "stop"
)

// Known reports whether typ is an effect type Apply understands.
func Known(typ string) bool {
	switch typ {
	case Say, RaiseAlert, AddZone, AddMark, ConsumeMark,
		TrapDetect, TrapTrigger, TrapAnalyze, TrapFail, TrapDisarm, TrapDestroy,
		Hide, BreakHidden, Resolve, Damage, Stress, Stamina, EmitEvent, Stop:
		return true
	}
	return false
}

// Context carries who the effects are about, for {actor} and {target}
// substitution in string params.
type Context struct {
	Actor  string
	Target string
}

// Apply applies effs to the arena in order and returns the events they
// emitted and any text produced by say effects. Application stops at the
// first error or stop effect.
func Apply(a *state.Arena, effs []types.Effect, ctx Context) ([]types.Event, []string, error) {
	var events []types.Event
	var output []string

	emit := func(typ string, data map[string]any) {
		events = append(events, types.Event{Type: typ, Data: data})
	}

	for _, eff := range effs {
		p := params{eff.Params, ctx}
		switch eff.Type {
		case Say:
			output = append(output, p.str("text"))

		case RaiseAlert:
			n := p.int("amount")
			level := a.RaiseAlert(n)
			emit("alert_raised", map[string]any{"amount": n, "level": level})

		case AddZone:
			z, err := a.AddZone(p.str("name"), p.str("kind"), p.int("turns"))
			if err != nil {
				return events, output, err
			}
			emit("zone_added", map[string]any{"zone": z.Handle, "name": z.Name, "kind": z.Kind})

		case AddMark:
			m, err := a.AddMark(p.str("kind"), p.str("actor"), p.str("target"), p.int("turns"))
			if err != nil {
				return events, output, err
			}
			emit("mark_added", map[string]any{"mark": m.Handle, "kind": m.Kind, "actor": m.Actor, "target": m.Target})

		case ConsumeMark:
			m, ok := a.ActiveMark(p.str("kind"), p.str("actor"), p.str("target"))
			if !ok {
				continue
			}
			if err := m.Consume(); err != nil {
				return events, output, err
			}
			emit("mark_consumed", map[string]any{"mark": m.Handle, "kind": m.Kind})

		case TrapDetect, TrapTrigger, TrapAnalyze, TrapFail, TrapDisarm, TrapDestroy:
			ev, err := applyTrap(a, eff.Type, p)
			if err != nil {
				return events, output, err
			}
			events = append(events, ev)

		case Hide:
			ability, err := parseAbility(p.str("ability"))
			if err != nil {
				return events, output, err
			}
			h, err := a.Hide(p.str("actor"), ability)
			if err != nil {
				return events, output, err
			}
			emit("hidden", map[string]any{"actor": h.Actor, "ability": h.Ability.String()})

		case BreakHidden:
			actor := p.str("actor")
			h, ok := a.HiddenFor(actor)
			if !ok {
				continue
			}
			cause := stealth.BreakCondition(p.str("cause"))
			if h.Break(cause) {
				emit("hidden_broken", map[string]any{"actor": actor, "cause": string(cause)})
			}

		case Resolve:
			enc, err := a.Encounter(p.handle("encounter"))
			if err != nil {
				return events, output, err
			}
			r, ok := eff.Params["result"].(ice.Result)
			if !ok {
				return events, output, errs.Invalid("effects: %s needs a result", Resolve)
			}
			if err := enc.Resolve(r); err != nil {
				return events, output, err
			}
			emit("encounter_resolved", map[string]any{"encounter": enc.Handle, "actor": enc.Actor, "evaded": r.Evaded})

		case Damage:
			target, n := p.str("target"), p.int("amount")
			total := a.Add(target, "damage", n)
			emit("damage_taken", map[string]any{"target": target, "amount": n, "type": p.str("type"), "total": total})

		case Stress:
			target, n := p.str("target"), p.int("amount")
			total := a.Add(target, "stress", n)
			emit("stress_taken", map[string]any{"target": target, "amount": n, "total": total})

		case Stamina:
			target, n := p.str("target"), p.int("amount")
			a.Add(target, "stamina_spent", n)

		case EmitEvent:
			emit(p.str("event"), map[string]any{"actor": ctx.Actor, "target": ctx.Target})

		case Stop:
			return events, output, nil

		default:
			return events, output, errs.Invalid("effects: unknown effect type %q", eff.Type)
		}
	}

	return events, output, nil
}

func applyTrap(a *state.Arena, typ string, p params) (types.Event, error) {
	t, err := a.Trap(p.handle("trap"))
	if err != nil {
		return types.Event{}, err
	}
	var evType string
	switch typ {
	case TrapDetect:
		evType = "trap_detected"
		err = t.Detect()
	case TrapTrigger:
		evType = "trap_triggered"
		err = t.Trigger()
	case TrapAnalyze:
		evType = "trap_analyzed"
		err = t.Analyze(p.int("hint"))
	case TrapFail:
		evType = "trap_disarm_failed"
		err = t.FailDisarm()
	case TrapDisarm:
		evType = "trap_disarmed"
		err = t.Disarm()
	case TrapDestroy:
		evType = "trap_destroyed"
		err = t.Destroy()
	}
	if err != nil {
		return types.Event{}, err
	}
	return types.Event{Type: evType, Data: map[string]any{
		"trap":   t.Handle,
		"kind":   string(t.Definition.Kind),
		"status": t.Status.String(),
		"actor":  p.ctx.Actor,
	}}, nil
}

func parseAbility(name string) (stealth.Ability, error) {
	for _, ab := range []stealth.Ability{stealth.SlipIntoShadow, stealth.OneWithTheStatic} {
		if ab.String() == name {
			return ab, nil
		}
	}
	return 0, errs.Invalid("effects: unknown hidden ability %q", name)
}

type params struct {
	m   map[string]any
	ctx Context
}

// str returns a string param with {actor} and {target} substituted.
func (p params) str(key string) string {
	s, _ := p.m[key].(string)
	s = strings.ReplaceAll(s, "{actor}", p.ctx.Actor)
	return strings.ReplaceAll(s, "{target}", p.ctx.Target)
}

func (p params) int(key string) int {
	return toInt(p.m[key])
}

func (p params) handle(key string) state.Handle {
	switch h := p.m[key].(type) {
	case state.Handle:
		return h
	default:
		return state.Handle(toInt(h))
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
