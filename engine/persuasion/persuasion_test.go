package persuasion

import (
	"testing"

	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

func TestTarget(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want int
	}{
		{"moderate neutral", Context{Request: Moderate}, 3},
		{"extreme hostile", Context{Request: Extreme, Disposition: Hostile}, 7},
		{"friendly with evidence", Context{Request: Major, Disposition: Friendly, Evidence: true}, 2},
		{"opposed and repeated", Context{Request: Minor, Argument: Opposed, PreviousAttempts: 2, SameArgument: true}, 6},
		{"standing floors", Context{Request: Trivial, Disposition: Allied, FactionStanding: 3}, 1},
		{"bad standing", Context{Request: Minor, FactionStanding: -2, Stressed: true}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ctx.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if got := tt.ctx.Target().Effective; got != tt.want {
				t.Errorf("Effective = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	bad := []Context{
		{Request: 0},
		{Request: Minor, FactionStanding: 4},
		{Request: Minor, PreviousAttempts: -1},
		{Request: Minor, Disposition: 5},
	}
	for i, c := range bad {
		if err := c.Validate(); !errs.IsInvalid(err) {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
}

func TestResolve(t *testing.T) {
	c := Context{Request: Moderate, Disposition: Neutral, PreviousAttempts: 1}
	tests := []struct {
		out      types.Outcome
		granted  bool
		shift    int
		attempts int
		shatter  bool
	}{
		{types.CriticalSuccess, true, 2, 0, false},
		{types.ExceptionalSuccess, true, 1, 0, false},
		{types.FullSuccess, true, 1, 0, false},
		{types.MarginalSuccess, true, 0, 0, false},
		{types.Failure, false, 0, 2, false},
		{types.CriticalFailure, false, -2, 2, true},
	}
	for _, tt := range tests {
		r := Resolve(c, tt.out, 0)
		if r.Granted != tt.granted || r.DispositionShift != tt.shift || r.Attempts != tt.attempts || r.TrustShattered != tt.shatter {
			t.Errorf("%v: %+v", tt.out, r)
		}
	}
}

func TestResolve_DispositionClamped(t *testing.T) {
	r := Resolve(Context{Request: Minor, Disposition: Friendly}, types.CriticalSuccess, 5)
	if r.NewDisposition != Allied {
		t.Errorf("NewDisposition = %v, want allied", r.NewDisposition)
	}
	r = Resolve(Context{Request: Minor, Disposition: Unfriendly}, types.CriticalFailure, -2)
	if r.NewDisposition != Hostile {
		t.Errorf("NewDisposition = %v, want hostile", r.NewDisposition)
	}
}

func TestParse(t *testing.T) {
	if r, err := ParseRequest("major"); err != nil || r != Major {
		t.Errorf("ParseRequest = %v, %v", r, err)
	}
	if d, err := ParseDisposition("unfriendly"); err != nil || d != Unfriendly {
		t.Errorf("ParseDisposition = %v, %v", d, err)
	}
	if _, err := ParseDisposition("smitten"); !errs.IsInvalid(err) {
		t.Errorf("err = %v", err)
	}
}
