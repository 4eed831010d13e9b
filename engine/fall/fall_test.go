package fall

import (
	"testing"

	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

func TestFall_Dice(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		height, bonus, want int
	}{
		{0, 0, 0},
		{9, 0, 0},
		{9, 1, 0}, // below the minimum height nothing applies
		{10, 0, 1},
		{25, 0, 2},
		{60, 1, 7},
		{150, 0, 10},
		{150, 1, 11},
	}
	for _, tt := range tests {
		f, err := New(tt.height, SourceEnvironmental, tt.bonus)
		if err != nil {
			t.Fatalf("New(%d): %v", tt.height, err)
		}
		if got := f.Dice(cfg); got != tt.want {
			t.Errorf("height %d bonus %d: dice = %d, want %d", tt.height, tt.bonus, got, tt.want)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(-5, SourceClimbing, 0); !errs.IsInvalid(err) {
		t.Errorf("negative height: %v", err)
	}
	if _, err := New(10, SourceClimbing, -1); !errs.IsInvalid(err) {
		t.Errorf("negative bonus: %v", err)
	}
	if _, err := New(10, "", 0); !errs.IsInvalid(err) {
		t.Errorf("empty source: %v", err)
	}
}

func TestFall_CrashTarget(t *testing.T) {
	cfg := DefaultConfig()
	f, _ := New(50, SourceLeaping, 0)
	if got := f.CrashTarget(cfg); got != 7 {
		t.Errorf("CrashTarget(50ft) = %d, want 7", got)
	}
	f, _ = New(15, SourceLeaping, 0)
	if got := f.CrashTarget(cfg); got != 3 {
		t.Errorf("CrashTarget(15ft) = %d, want 3", got)
	}
}

func TestCrashLanding_Scenario(t *testing.T) {
	res, err := CrashLanding(7, 9, types.ExceptionalSuccess, 5)
	if err != nil {
		t.Fatalf("CrashLanding: %v", err)
	}
	if res.Margin != 2 {
		t.Errorf("Margin = %d, want 2", res.Margin)
	}
	if res.DiceReduced != 2 {
		t.Errorf("DiceReduced = %d, want 2", res.DiceReduced)
	}
	if res.FinalDice != 3 {
		t.Errorf("FinalDice = %d, want 3", res.FinalDice)
	}
	if !res.Succeeded || !res.ReducedDamage() || res.NegatedAll {
		t.Errorf("flags = %+v", res)
	}
}

func TestCrashLanding_NeverBelowZero(t *testing.T) {
	res, _ := CrashLanding(2, 12, types.CriticalSuccess, 3)
	if res.FinalDice != 0 {
		t.Errorf("FinalDice = %d, want 0", res.FinalDice)
	}
	if res.DiceReduced != 10 {
		t.Errorf("DiceReduced = %d, want the full margin 10", res.DiceReduced)
	}
	if !res.NegatedAll {
		t.Error("all damage should be negated")
	}
}

func TestCrashLanding_Failure(t *testing.T) {
	res, _ := CrashLanding(4, 1, types.Failure, 4)
	if res.Succeeded || res.DiceReduced != 0 || res.FinalDice != 4 {
		t.Errorf("got %+v", res)
	}
}

func TestCrashLanding_Monotonic(t *testing.T) {
	prevReduced, prevFinal := -1, 1<<30
	for net := -3; net <= 20; net++ {
		res, _ := CrashLanding(5, net, types.Failure, 6)
		if res.DiceReduced < prevReduced {
			t.Fatalf("net %d reduced %d < %d", net, res.DiceReduced, prevReduced)
		}
		if res.FinalDice > prevFinal || res.FinalDice < 0 {
			t.Fatalf("net %d final %d (prev %d)", net, res.FinalDice, prevFinal)
		}
		prevReduced, prevFinal = res.DiceReduced, res.FinalDice
	}
}

func TestCrashLanding_Invalid(t *testing.T) {
	if _, err := CrashLanding(0, 3, types.Failure, 2); !errs.IsInvalid(err) {
		t.Errorf("target 0: %v", err)
	}
	if _, err := CrashLanding(3, 3, types.Failure, -1); !errs.IsInvalid(err) {
		t.Errorf("negative dice: %v", err)
	}
}

func TestFeatherfall(t *testing.T) {
	cfg := DefaultConfig()
	res, ok := Featherfall(3, 2, cfg)
	if !ok {
		t.Fatal("target 3 should allow featherfall")
	}
	if !res.Auto || !res.Succeeded || res.Margin != 0 {
		t.Errorf("got %+v", res)
	}
	if res.FinalDice != 2 || res.DiceReduced != 0 {
		t.Errorf("featherfall must not reduce dice: %+v", res)
	}

	if _, ok := Featherfall(4, 2, cfg); ok {
		t.Error("target 4 is above the featherfall threshold")
	}
}

func TestNoAttempt(t *testing.T) {
	res := NoAttempt(4)
	if res.Attempted || res.FinalDice != 4 {
		t.Errorf("got %+v", res)
	}
	if res.Narrative() == "" {
		t.Error("narrative should not be empty")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg := DefaultConfig()
	cfg.FeetPerDie = 0
	if err := cfg.Validate(); !errs.IsInvalid(err) {
		t.Errorf("zero feet per die: %v", err)
	}
}
