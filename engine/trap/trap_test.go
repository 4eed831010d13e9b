package trap

import (
	"testing"

	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

func def(t *testing.T, k Kind) Definition {
	t.Helper()
	d, ok := Defaults()[k]
	if !ok {
		t.Fatalf("no default for %s", k)
	}
	return d
}

func TestDefaults_Valid(t *testing.T) {
	defs := Defaults()
	if len(defs) != len(Kinds()) {
		t.Fatalf("got %d defaults, want %d", len(defs), len(Kinds()))
	}
	for k, d := range defs {
		if err := d.Validate(); err != nil {
			t.Errorf("%s: %v", k, err)
		}
		if len(d.Salvage) != 2 {
			t.Errorf("%s: %d salvage components, want 2", k, len(d.Salvage))
		}
	}
}

func TestDefinition_ConvertedDifficulties(t *testing.T) {
	tests := []struct {
		kind           Kind
		detect, disarm int
	}{
		{Tripwire, 2, 2},
		{PressurePlate, 2, 2},
		{Electrified, 3, 3},
		{LaserGrid, 3, 4},
		{JotunDefense, 4, 4},
	}
	for _, tt := range tests {
		d := def(t, tt.kind)
		if got := d.DetectionTarget().Effective; got != tt.detect {
			t.Errorf("%s detect = %d, want %d", tt.kind, got, tt.detect)
		}
		if got := d.DisarmBase(); got != tt.disarm {
			t.Errorf("%s disarm = %d, want %d", tt.kind, got, tt.disarm)
		}
	}
}

func TestResolveDetect(t *testing.T) {
	d := def(t, Electrified)
	r := ResolveDetect(d, types.MarginalSuccess, 0)
	if !r.Detected || r.Triggered {
		t.Errorf("success: %+v", r)
	}
	r = ResolveDetect(d, types.Failure, -1)
	if r.Detected || !r.Triggered || r.Trigger == nil {
		t.Fatalf("failure: %+v", r)
	}
	if r.Trigger.Damage.String() != "3d10" || r.Trigger.DamageType != "lightning" {
		t.Errorf("trigger = %+v", *r.Trigger)
	}
}

func TestResolveAnalyze_Thresholds(t *testing.T) {
	d := def(t, PressurePlate)
	tests := []struct {
		net        int
		dc, conseq bool
		hint       int
	}{
		{0, false, false, 0},
		{1, true, false, 0},
		{3, true, true, 0},
		{5, true, true, 1},
	}
	for _, tt := range tests {
		r := ResolveAnalyze(d, tt.net, 3)
		if r.Disclosure.DifficultyRevealed != tt.dc || r.Disclosure.ConsequencesRevealed != tt.conseq {
			t.Errorf("net %d: %+v", tt.net, r.Disclosure)
		}
		if (r.Trigger != nil) != tt.conseq {
			t.Errorf("net %d: trigger revealed = %v", tt.net, r.Trigger != nil)
		}
		if r.HintBonus != tt.hint {
			t.Errorf("net %d: HintBonus = %d, want %d", tt.net, r.HintBonus, tt.hint)
		}
	}
}

func TestNewDisarmContext_BareHands(t *testing.T) {
	if _, err := NewDisarmContext(def(t, LaserGrid), BareHands, 0, 0); !errs.IsPolicy(err) {
		t.Errorf("laser grid bare hands: err = %v, want policy violation", err)
	}
	c, err := NewDisarmContext(def(t, Electrified), BareHands, 0, 0)
	if err != nil {
		t.Fatalf("electrified bare hands: %v", err)
	}
	if c.PoolModifier() != -2 {
		t.Errorf("PoolModifier = %d, want -2", c.PoolModifier())
	}
}

func TestNewDisarmContext_Invalid(t *testing.T) {
	d := def(t, Tripwire)
	if _, err := NewDisarmContext(d, Proper, -1, 0); !errs.IsInvalid(err) {
		t.Errorf("negative attempts: err = %v", err)
	}
	if _, err := NewDisarmContext(d, Tool(9), 0, 0); !errs.IsInvalid(err) {
		t.Errorf("unknown tool: err = %v", err)
	}
}

func TestDisarmContext_EscalationAndPool(t *testing.T) {
	c, err := NewDisarmContext(def(t, JotunDefense), Masterwork, 2, HintBonus)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Target().Effective; got != 6 {
		t.Errorf("Effective = %d, want 6", got)
	}
	if got := c.PoolModifier(); got != 3 {
		t.Errorf("PoolModifier = %d, want 3", got)
	}
}

func TestResolveDisarm(t *testing.T) {
	c, err := NewDisarmContext(def(t, PressurePlate), Proper, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	r := ResolveDisarm(c, types.CriticalSuccess, 5)
	if !r.Disarmed || len(r.Salvage) != 2 {
		t.Errorf("critical: %+v", r)
	}
	r = ResolveDisarm(c, types.FullSuccess, 0)
	if !r.Disarmed || r.Salvage != nil {
		t.Errorf("full: %+v", r)
	}
	r = ResolveDisarm(c, types.Failure, -1)
	if !r.FailedAttempt || r.NextTarget != 3 || r.Disarmed {
		t.Errorf("failure: %+v", r)
	}
	r = ResolveDisarm(c, types.CriticalFailure, -3)
	if !r.Destroyed || !r.Triggered || r.Trigger == nil {
		t.Errorf("fumble: %+v", r)
	}
}

func TestStatus_Transitions(t *testing.T) {
	if !Armed.CanDetect() || Detected.CanDetect() {
		t.Error("only armed traps can be searched for")
	}
	if !Detected.CanAnalyze() || Analyzed.CanAnalyze() {
		t.Error("only detected traps can be analyzed")
	}
	for _, s := range []Status{Detected, Analyzed, DisarmInProgress} {
		if !s.CanDisarm() {
			t.Errorf("%s should allow disarm", s)
		}
	}
	for _, s := range []Status{Armed, Disarmed, Triggered, Destroyed} {
		if s.CanDisarm() {
			t.Errorf("%s should not allow disarm", s)
		}
	}
	if !Disarmed.Terminal() || !Destroyed.Terminal() || Triggered.Terminal() {
		t.Error("unexpected terminal statuses")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("laser_grid"); err != nil || k != LaserGrid {
		t.Errorf("ParseKind = %v, %v", k, err)
	}
	if _, err := ParseKind("bear_trap"); !errs.IsInvalid(err) {
		t.Errorf("err = %v", err)
	}
}
