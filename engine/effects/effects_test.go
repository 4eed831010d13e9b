package effects

import (
	"testing"

	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/state"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

func testSetup(t *testing.T) (*state.Arena, *state.Trap, Context) {
	t.Helper()
	a := state.NewArena()
	tr, err := a.PlaceTrap(trap.Defaults()[trap.PressurePlate])
	if err != nil {
		t.Fatal(err)
	}
	return a, tr, Context{Actor: "ada", Target: "vek"}
}

func eff(typ string, kv ...any) types.Effect {
	p := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i].(string)] = kv[i+1]
	}
	return types.Effect{Type: typ, Params: p}
}

func TestApply_SayInterpolates(t *testing.T) {
	a, _, ctx := testSetup(t)
	_, out, err := Apply(a, []types.Effect{eff(Say, "text", "{actor} glares at {target}.")}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != "ada glares at vek." {
		t.Errorf("output = %q", out)
	}
}

func TestApply_RaiseAlert(t *testing.T) {
	a, _, ctx := testSetup(t)
	events, _, err := Apply(a, []types.Effect{
		eff(RaiseAlert, "amount", 2),
		eff(RaiseAlert, "amount", float64(1)),
	}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a.Alert != 3 {
		t.Errorf("Alert = %d, want 3", a.Alert)
	}
	if len(events) != 2 || events[1].Data["level"] != 3 {
		t.Errorf("events = %+v", events)
	}
}

func TestApply_TrapLifecycle(t *testing.T) {
	a, tr, ctx := testSetup(t)
	events, _, err := Apply(a, []types.Effect{
		eff(TrapDetect, "trap", tr.Handle),
		eff(TrapAnalyze, "trap", tr.Handle, "hint", 1),
		eff(TrapFail, "trap", tr.Handle),
		eff(TrapDisarm, "trap", tr.Handle),
	}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Status != trap.Disarmed || tr.FailedAttempts != 1 || tr.HintBonus != 1 {
		t.Errorf("trap = %+v", tr)
	}
	want := []string{"trap_detected", "trap_analyzed", "trap_disarm_failed", "trap_disarmed"}
	for i, w := range want {
		if events[i].Type != w {
			t.Errorf("event %d = %q, want %q", i, events[i].Type, w)
		}
	}
}

func TestApply_PolicyViolationStops(t *testing.T) {
	a, tr, ctx := testSetup(t)
	events, _, err := Apply(a, []types.Effect{
		eff(TrapAnalyze, "trap", tr.Handle),
		eff(RaiseAlert, "amount", 1),
	}, ctx)
	if !errs.IsPolicy(err) {
		t.Fatalf("err = %v, want policy violation", err)
	}
	if len(events) != 0 || a.Alert != 0 {
		t.Error("effects after the error should not apply")
	}
}

func TestApply_UnknownHandle(t *testing.T) {
	a, _, ctx := testSetup(t)
	_, _, err := Apply(a, []types.Effect{eff(TrapDetect, "trap", state.Handle(99))}, ctx)
	if !errs.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestApply_ZonesAndMarks(t *testing.T) {
	a, _, ctx := testSetup(t)
	_, _, err := Apply(a, []types.Effect{
		eff(AddZone, "name", "smoke", "kind", "obscured", "turns", 2),
		eff(AddMark, "kind", "trust_shattered", "actor", "{actor}", "target", "{target}"),
	}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Zones()) != 1 {
		t.Fatalf("zones = %d", len(a.Zones()))
	}
	if _, ok := a.ActiveMark("trust_shattered", "ada", "vek"); !ok {
		t.Fatal("mark not placed")
	}
	events, _, err := Apply(a, []types.Effect{eff(ConsumeMark, "kind", "trust_shattered", "actor", "ada", "target", "vek")}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != "mark_consumed" {
		t.Errorf("events = %+v", events)
	}
}

func TestApply_HideAndBreak(t *testing.T) {
	a, _, ctx := testSetup(t)
	_, _, err := Apply(a, []types.Effect{
		eff(Hide, "actor", "ada", "ability", "one_with_the_static"),
		eff(BreakHidden, "actor", "ada", "cause", "leave_zone"),
	}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.HiddenFor("ada"); ok {
		t.Error("leaving the zone should break one with the static")
	}
	if _, _, err := Apply(a, []types.Effect{eff(Hide, "actor", "ada", "ability", "invisibility")}, ctx); !errs.IsInvalid(err) {
		t.Errorf("err = %v", err)
	}
}

func TestApply_ResolveEncounter(t *testing.T) {
	a, _, ctx := testSetup(t)
	enc, err := a.OpenEncounter("ada", ice.Defaults()[ice.SecurityHub])
	if err != nil {
		t.Fatal(err)
	}
	res := ice.Result{Terminal: ice.SecurityHub, Evaded: true}
	effs := []types.Effect{{Type: Resolve, Params: map[string]any{"encounter": enc.Handle, "result": res}}}
	if _, _, err := Apply(a, effs, ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Apply(a, effs, ctx); !errs.IsPolicy(err) {
		t.Errorf("second resolve: err = %v", err)
	}
}

func TestApply_DamageAndStress(t *testing.T) {
	a, _, ctx := testSetup(t)
	events, _, err := Apply(a, []types.Effect{
		eff(Damage, "target", "ada", "amount", 7, "type", "psychic"),
		eff(Stress, "target", "ada", "amount", 3),
		eff(Stop),
		eff(Stress, "target", "ada", "amount", 3),
	}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a.Counter("ada", "damage") != 7 || a.Counter("ada", "stress") != 3 {
		t.Errorf("counters = %v", a.Counters)
	}
	if len(events) != 2 {
		t.Errorf("events = %d, want 2", len(events))
	}
}

func TestApply_UnknownType(t *testing.T) {
	a, _, ctx := testSetup(t)
	if _, _, err := Apply(a, []types.Effect{eff("teleport")}, ctx); !errs.IsInvalid(err) {
		t.Errorf("err = %v", err)
	}
	if Known("teleport") || !Known(RaiseAlert) {
		t.Error("Known mismatch")
	}
}
