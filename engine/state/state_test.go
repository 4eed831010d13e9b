package state

import (
	"testing"

	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/stealth"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/errs"
)

func placeTrap(t *testing.T, a *Arena, k trap.Kind) *Trap {
	t.Helper()
	tr, err := a.PlaceTrap(trap.Defaults()[k])
	if err != nil {
		t.Fatalf("PlaceTrap: %v", err)
	}
	return tr
}

func TestArena_HandlesAreUniqueAcrossKinds(t *testing.T) {
	a := NewArena()
	tr := placeTrap(t, a, trap.Tripwire)
	z, err := a.AddZone("fog", "obscured", 2)
	if err != nil {
		t.Fatal(err)
	}
	m, err := a.AddMark("lockout", "ada", "hub", 1)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Handle == z.Handle || z.Handle == m.Handle || tr.Handle == 0 {
		t.Errorf("handles %s %s %s", tr.Handle, z.Handle, m.Handle)
	}
	if _, err := a.Trap(z.Handle); !errs.IsNotFound(err) {
		t.Errorf("zone handle as trap: err = %v", err)
	}
}

func TestTrap_DetectAnalyzeDisarm(t *testing.T) {
	a := NewArena()
	tr := placeTrap(t, a, trap.Electrified)

	if err := tr.Analyze(1); !errs.IsPolicy(err) {
		t.Fatalf("analyze armed: err = %v", err)
	}
	if err := tr.Detect(); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if err := tr.Analyze(1); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if err := tr.FailDisarm(); err != nil {
		t.Fatalf("FailDisarm: %v", err)
	}
	if tr.Status != trap.DisarmInProgress || tr.FailedAttempts != 1 || tr.HintBonus != 1 {
		t.Errorf("trap = %+v", tr)
	}
	if err := tr.Disarm(); err != nil {
		t.Fatalf("Disarm: %v", err)
	}
	if err := tr.Disarm(); err != nil {
		t.Errorf("repeat disarm should be a no-op, got %v", err)
	}
	if err := tr.Destroy(); !errs.IsPolicy(err) {
		t.Errorf("destroy disarmed: err = %v", err)
	}
}

func TestTrap_DisarmSkipsAnalysis(t *testing.T) {
	tr := placeTrap(t, NewArena(), trap.Tripwire)
	if err := tr.Detect(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Disarm(); err != nil {
		t.Errorf("disarm from detected: %v", err)
	}
}

func TestTrap_TriggerThenDestroy(t *testing.T) {
	tr := placeTrap(t, NewArena(), trap.PressurePlate)
	if err := tr.Trigger(); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if err := tr.Disarm(); !errs.IsPolicy(err) {
		t.Errorf("disarm triggered: err = %v", err)
	}
	if err := tr.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := tr.Destroy(); err != nil {
		t.Errorf("repeat destroy should be a no-op, got %v", err)
	}
	if err := tr.Detect(); !errs.IsPolicy(err) {
		t.Errorf("detect destroyed: err = %v", err)
	}
}

func TestArena_EndTurnExpires(t *testing.T) {
	a := NewArena()
	z, _ := a.AddZone("smoke", "obscured", 2)
	timed, _ := a.AddMark("lockout", "ada", "hub", 1)
	lasting, _ := a.AddMark("trust_shattered", "ada", "vek", 0)

	exp := a.EndTurn()
	if len(exp) != 1 || exp[0].Handle != timed.Handle {
		t.Fatalf("turn 1 expiries = %+v", exp)
	}
	if z.Remaining != 1 || z.Status != ZoneActive {
		t.Errorf("zone after 1 turn = %+v", z)
	}
	exp = a.EndTurn()
	if len(exp) != 1 || exp[0].Kind != "zone" {
		t.Fatalf("turn 2 expiries = %+v", exp)
	}
	if a.Turn != 2 {
		t.Errorf("Turn = %d, want 2", a.Turn)
	}
	if lasting.Status != MarkActive {
		t.Error("untimed mark should not expire")
	}
	if err := timed.Consume(); !errs.IsPolicy(err) {
		t.Errorf("consume expired: err = %v", err)
	}
}

func TestArena_ActiveMark(t *testing.T) {
	a := NewArena()
	if _, ok := a.ActiveMark("trust_shattered", "ada", "vek"); ok {
		t.Fatal("unexpected mark")
	}
	m, _ := a.AddMark("trust_shattered", "ada", "vek", 0)
	if got, ok := a.ActiveMark("trust_shattered", "ada", "vek"); !ok || got != m {
		t.Fatal("mark not found")
	}
	if err := m.Consume(); err != nil {
		t.Fatal(err)
	}
	if err := m.Consume(); err != nil {
		t.Errorf("repeat consume should be a no-op, got %v", err)
	}
	if _, ok := a.ActiveMark("trust_shattered", "ada", "vek"); ok {
		t.Error("consumed mark is still active")
	}
}

func TestArena_InvalidEntities(t *testing.T) {
	a := NewArena()
	if _, err := a.AddZone("fog", "obscured", 0); !errs.IsInvalid(err) {
		t.Errorf("zero-turn zone: err = %v", err)
	}
	if _, err := a.AddMark("", "a", "b", 1); !errs.IsInvalid(err) {
		t.Errorf("kindless mark: err = %v", err)
	}
	if _, err := a.PlaceTrap(trap.Definition{Kind: "bear_trap", DetectionDC: 8, DisarmDC: 8}); !errs.IsInvalid(err) {
		t.Errorf("unknown trap: err = %v", err)
	}
}

func TestHidden_Break(t *testing.T) {
	a := NewArena()
	h, err := a.Hide("ada", stealth.SlipIntoShadow)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := a.Hide("ada", stealth.OneWithTheStatic)
	if again != h {
		t.Error("hiding twice should keep the existing status")
	}
	if h.Break(stealth.BreakLeaveZone) {
		t.Error("leaving the zone should not break slip into shadow")
	}
	if !h.Break(stealth.BreakAttack) || h.BrokenBy != stealth.BreakAttack {
		t.Errorf("attack should break: %+v", h)
	}
	if h.Break(stealth.BreakDetected) {
		t.Error("a broken status cannot break again")
	}
	if _, ok := a.HiddenFor("ada"); ok {
		t.Error("broken status is still active")
	}
}

func TestEncounter_ResolveOnce(t *testing.T) {
	a := NewArena()
	e, err := a.OpenEncounter("ada", ice.Defaults()[ice.SecurityHub])
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Resolve(ice.Result{Evaded: true}); err != nil {
		t.Fatal(err)
	}
	if err := e.Resolve(ice.Result{}); !errs.IsPolicy(err) {
		t.Errorf("second resolve: err = %v", err)
	}
	if !e.Result.Evaded {
		t.Error("first result should be kept")
	}
}

func TestArena_AlertAndCounters(t *testing.T) {
	a := NewArena()
	a.RaiseAlert(2)
	if got := a.RaiseAlert(-5); got != 0 {
		t.Errorf("alert = %d, want floor 0", got)
	}
	a.Add("ada", "stress", 3)
	if got := a.Add("ada", "stress", 2); got != 5 {
		t.Errorf("stress = %d, want 5", got)
	}
	if a.Counter("bo", "stress") != 0 {
		t.Error("unset counter should be 0")
	}
}
