package balance

import (
	"strings"
	"testing"

	"github.com/nathoo/dicecore/engine/fall"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

func mustSurface(s Surface, err error) Surface {
	if err != nil {
		panic(err)
	}
	return s
}

func TestWidthFromInches(t *testing.T) {
	tests := []struct {
		in   int
		want Width
	}{
		{36, Wide},
		{12, Wide},
		{11, Narrow},
		{6, Narrow},
		{5, Cable},
		{3, Cable},
		{2, RazorEdge},
		{0, RazorEdge},
	}
	for _, tt := range tests {
		if got := WidthFromInches(tt.in); got != tt.want {
			t.Errorf("WidthFromInches(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if RequiresCheck(24) {
		t.Error("24 inches should not require a check")
	}
	if !RequiresCheck(23) {
		t.Error("23 inches should require a check")
	}
}

func TestTarget_CombinedModifiers(t *testing.T) {
	s := mustSurface(NewSurface(Narrow, Swaying, Wet, 20, 30))
	c := NewContext(s)
	c.Wind = 1
	c.Encumbrance = 1
	c.BalancePole = true

	if got := c.Target().Effective; got != 7 {
		t.Errorf("Effective = %d, want 7", got)
	}
}

func TestTarget_PoleFloorsAtOne(t *testing.T) {
	s := mustSurface(WidePlank(10, 2))
	c := NewContext(s)
	c.BalancePole = true
	got := c.Target()
	if got.Effective != 1 {
		t.Errorf("Effective = %d, want 1", got.Effective)
	}
}

func TestPresets(t *testing.T) {
	ledge := mustSurface(NarrowLedge(20, 30))
	if ledge.Width.BaseDC() != 3 || ledge.HeightFeet != 30 {
		t.Errorf("NarrowLedge = %+v", ledge)
	}
	if got := mustSurface(CrumblingLedge(10, 20)).SurfaceDC(); got != 4 {
		t.Errorf("CrumblingLedge DC = %d, want 4", got)
	}
	if got := mustSurface(RopeBridge(40, 60)).SurfaceDC(); got != 5 {
		t.Errorf("RopeBridge DC = %d, want 5", got)
	}
	if got := mustSurface(WidePlank(8, 4)).SurfaceDC(); got != 2 {
		t.Errorf("WidePlank DC = %d, want 2", got)
	}
}

func TestSurface_String(t *testing.T) {
	s := mustSurface(RopeBridge(30, 50))
	got := s.String()
	for _, want := range []string{"narrow", "30 ft long", "50 ft up", "swaying"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestSurface_FallCausesDamage(t *testing.T) {
	cfg := fall.DefaultConfig()
	if !mustSurface(NarrowLedge(10, 15)).FallCausesDamage(cfg) {
		t.Error("15 ft should cause damage")
	}
	if mustSurface(NarrowLedge(10, 5)).FallCausesDamage(cfg) {
		t.Error("5 ft should not cause damage")
	}
}

func TestNewSurface_RejectsNegative(t *testing.T) {
	if _, err := NewSurface(Narrow, Stable, Dry, -1, 10); !errs.IsInvalid(err) {
		t.Errorf("negative length: err = %v", err)
	}
	if _, err := NewSurface(Narrow, Stable, Dry, 10, -1); !errs.IsInvalid(err) {
		t.Errorf("negative height: err = %v", err)
	}
}

func TestResolve_FailureFalls(t *testing.T) {
	c := NewContext(mustSurface(NarrowLedge(20, 30)))
	for _, out := range []types.Outcome{types.Failure, types.CriticalFailure} {
		r := Resolve(c, out, -1)
		if r.Crossed || !r.FallTriggered {
			t.Errorf("%v: crossed=%v fall=%v", out, r.Crossed, r.FallTriggered)
		}
		if r.FallHeightFeet != 30 {
			t.Errorf("%v: FallHeightFeet = %d, want 30", out, r.FallHeightFeet)
		}
		f, ok := r.Fall()
		if !ok || f.Source != fall.SourceBalance || f.HeightFeet != 30 {
			t.Errorf("%v: Fall() = %+v, %v", out, f, ok)
		}
	}
}

func TestResolve_StaminaCost(t *testing.T) {
	c := NewContext(mustSurface(NarrowLedge(20, 30)))
	tests := []struct {
		out  types.Outcome
		want int
	}{
		{types.CriticalSuccess, 0},
		{types.ExceptionalSuccess, 1},
		{types.FullSuccess, 1},
		{types.MarginalSuccess, 2},
	}
	for _, tt := range tests {
		r := Resolve(c, tt.out, 0)
		if !r.Crossed {
			t.Errorf("%v: expected to cross", tt.out)
		}
		if r.StaminaCost != tt.want {
			t.Errorf("%v: StaminaCost = %d, want %d", tt.out, r.StaminaCost, tt.want)
		}
		if _, ok := r.Fall(); ok {
			t.Errorf("%v: unexpected fall", tt.out)
		}
	}
}

func TestLongTraverse(t *testing.T) {
	s := mustSurface(RopeBridge(90, 40))
	mid, err := LongTraverse(s, 3, 2)
	if err != nil {
		t.Fatalf("LongTraverse: %v", err)
	}
	if mid.IsFinalCheck() || !mid.IsLongTraverse() {
		t.Error("check 2 of 3 is not final")
	}
	r := Resolve(mid, types.FullSuccess, 0)
	if r.TraverseComplete || !r.Continues {
		t.Errorf("mid: complete=%v continues=%v", r.TraverseComplete, r.Continues)
	}

	last, err := LongTraverse(s, 3, 3)
	if err != nil {
		t.Fatalf("LongTraverse: %v", err)
	}
	r = Resolve(last, types.MarginalSuccess, 0)
	if !r.TraverseComplete || r.Continues {
		t.Errorf("last: complete=%v continues=%v", r.TraverseComplete, r.Continues)
	}

	if _, err := LongTraverse(s, 3, 4); !errs.IsInvalid(err) {
		t.Errorf("check beyond total: err = %v", err)
	}
}

func TestResolve_FailedCheckDoesNotContinue(t *testing.T) {
	c, err := LongTraverse(mustSurface(RopeBridge(90, 40)), 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	r := Resolve(c, types.Failure, -2)
	if r.Continues || r.TraverseComplete {
		t.Error("a fall ends the traverse")
	}
}
