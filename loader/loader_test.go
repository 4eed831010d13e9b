package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/ruleset"
	"github.com/nathoo/dicecore/engine/synergy"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/types"
)

func TestLoad_Minimal(t *testing.T) {
	rs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rs.Name != "minimal" {
		t.Errorf("Name = %q, want minimal", rs.Name)
	}
	def := ruleset.Default()
	if rs.Dice != def.Dice || rs.Fall != def.Fall {
		t.Error("unset sections should keep the defaults")
	}
	if len(rs.Traps) != len(trap.Kinds()) {
		t.Errorf("got %d traps, want the %d defaults", len(rs.Traps), len(trap.Kinds()))
	}
}

func TestLoad_Full(t *testing.T) {
	rs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if rs.Name != "grim" {
		t.Errorf("Name = %q", rs.Name)
	}
	if rs.Dice.SuccessMin != 7 || !rs.Dice.Explode || rs.Dice.MaxExplosions != 2 {
		t.Errorf("Dice = %+v", rs.Dice)
	}
	if rs.Dice.Sides != 10 {
		t.Errorf("Sides = %d, want default 10", rs.Dice.Sides)
	}
	if rs.Outcomes.Default.Critical != 6 || rs.Outcomes.Default.Exceptional != 3 {
		t.Errorf("Outcomes.Default = %+v", rs.Outcomes.Default)
	}
	if rs.Fall.MaxDice != 6 || rs.Fall.DamageType != "crushing" || rs.Fall.FeetPerDie != 10 {
		t.Errorf("Fall = %+v", rs.Fall)
	}
	if rs.Balance.BaseStamina != 2 || rs.Persuasion.TrustShatteredTurns != 5 {
		t.Errorf("Balance = %+v Persuasion = %+v", rs.Balance, rs.Persuasion)
	}

	// Thresholds overlay the current value for the feature.
	st := rs.Outcomes.For(types.FeatureStealth)
	if st.Exceptional != 4 || st.Critical != 6 || st.Full != 1 {
		t.Errorf("stealth thresholds = %+v", st)
	}
	if rs.Outcomes.For(types.FeatureIntimidation).Exceptional != 3 {
		t.Error("built-in intimidation thresholds should survive")
	}

	e := rs.Traps[trap.Electrified]
	if e.DisarmDC != 18 || e.DetectionDC != 14 {
		t.Errorf("electrified DCs = %d/%d", e.DetectionDC, e.DisarmDC)
	}
	if e.Damage.String() != "4d10" || e.DamageType != "lightning" {
		t.Errorf("electrified damage = %s %s", e.Damage, e.DamageType)
	}
	if len(e.Salvage) != 3 || e.Salvage[1] != "copper-coil" {
		t.Errorf("salvage = %v", e.Salvage)
	}

	hub := rs.Terminals[ice.SecurityHub]
	if hub.Rating != 18 || hub.ICE != ice.Lethal {
		t.Errorf("security hub = %+v", hub)
	}

	ap := rs.Synergies[synergy.AvoidPatrol]
	if ap.PrimaryDC != 2 || ap.Timing != synergy.Always || ap.SecondaryDC != 3 {
		t.Errorf("avoid patrol = %+v", ap)
	}
}

func TestLoad_Handlers(t *testing.T) {
	rs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rs.Handlers) != 4 {
		t.Fatalf("got %d handlers, want 4", len(rs.Handlers))
	}

	h := rs.Handlers[0]
	if h.EventType != "trap_triggered" || len(h.Effects) != 2 {
		t.Fatalf("handler 0 = %+v", h)
	}
	if h.Effects[0].Type != "raise_alert" || h.Effects[0].Params["amount"] != 1 {
		t.Errorf("effect 0 = %+v", h.Effects[0])
	}
	if h.Effects[1].Params["text"] != "Sirens wail somewhere below." {
		t.Errorf("effect 1 = %+v", h.Effects[1])
	}

	zone := rs.Handlers[1].Effects[0]
	if zone.Type != "add_zone" || zone.Params["turns"] != 3 || zone.Params["kind"] != "sealed" {
		t.Errorf("zone effect = %+v", zone)
	}

	mark := rs.Handlers[2].Effects[0]
	if mark.Params["actor"] != "{actor}" || mark.Params["turns"] != 2 {
		t.Errorf("mark effect = %+v", mark)
	}

	conds := rs.Handlers[3].Conditions
	if len(conds) != 3 {
		t.Fatalf("got %d conditions, want 3", len(conds))
	}
	if conds[0].Type != "feature_is" || conds[0].Params["feature"] != "bypass" {
		t.Errorf("condition 0 = %+v", conds[0])
	}
	if conds[1].Type != "not" || conds[1].Inner == nil || conds[1].Inner.Params["outcome"] != "MarginalSuccess" {
		t.Errorf("condition 1 = %+v", conds[1])
	}
	if conds[2].Type != "alert_gt" || conds[2].Params["value"] != 2 {
		t.Errorf("condition 2 = %+v", conds[2])
	}
}

func TestLoad_UnknownEffect(t *testing.T) {
	_, err := Load("testdata/bad_effect")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Error(), "teleport") {
		t.Errorf("error should name the effect: %v", ve)
	}
}

func TestLoad_UnknownTrapKind(t *testing.T) {
	_, err := Load("testdata/bad_kind")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Errors) != 1 || !strings.Contains(ve.Errors[0], "bear_trap") {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestLoad_BadThresholds(t *testing.T) {
	if _, err := Load("testdata/bad_thresholds"); err == nil {
		t.Fatal("expected inverted thresholds to fail")
	}
}

func TestLoad_Sandboxed(t *testing.T) {
	_, err := Load("testdata/sandbox")
	if err == nil {
		t.Fatal("dofile should not be available")
	}
	if !strings.Contains(err.Error(), "ruleset.lua") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestLoad_NoLuaFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load("testdata/does_not_exist"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"traps.lua", "ruleset.lua", "handlers.lua"})
	want := []string{"ruleset.lua", "handlers.lua", "traps.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedLuaFiles = %v, want %v", got, want)
		}
	}
}
