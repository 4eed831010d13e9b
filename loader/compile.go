// Package loader loads Lua rule files into a ruleset at startup.
// The Lua VM is discarded after loading, so no Lua runs during play.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/dicecore/engine/dice"
	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/outcome"
	"github.com/nathoo/dicecore/engine/ruleset"
	"github.com/nathoo/dicecore/engine/synergy"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawNamed holds a curried constructor's id and table before compilation.
type rawNamed struct {
	id    string
	table *lua.LTable
}

// rawHandler holds an event handler before compilation.
type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// has reports whether key is set in tbl.
func has(tbl *lua.LTable, key string) bool {
	return tbl != nil && tbl.RawGetString(key) != lua.LNil
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// overlayInt replaces *dst with the field's value when it is present.
func overlayInt(tbl *lua.LTable, key string, dst *int) {
	if has(tbl, key) {
		*dst = int(getNumber(tbl, key))
	}
}

// overlayBool replaces *dst with the field's value when it is a boolean.
func overlayBool(tbl *lua.LTable, key string, dst *bool) {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		*dst = bool(b)
	}
}

// overlayString replaces *dst with the field's value when it is present.
func overlayString(tbl *lua.LTable, key string, dst *string) {
	if has(tbl, key) {
		*dst = getString(tbl, key)
	}
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToStrings converts a Lua array of strings to a slice.
func tableToStrings(tbl *lua.LTable) []string {
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile overlays the collected Lua data onto the built-in ruleset.
func compile(coll *collector) (*ruleset.Ruleset, error) {
	rs := ruleset.Default().Clone()

	if coll.ruleset != nil {
		compileRuleset(coll.ruleset, rs)
	}

	for _, raw := range coll.thresholds {
		f := types.Feature(raw.id)
		t := rs.Outcomes.For(f)
		compileThresholds(raw.table, &t)
		if rs.Outcomes.PerFeature == nil {
			rs.Outcomes.PerFeature = map[types.Feature]outcome.Thresholds{}
		}
		rs.Outcomes.PerFeature[f] = t
	}

	for _, raw := range coll.traps {
		kind := trap.Kind(raw.id)
		def, ok := rs.Traps[kind]
		if !ok {
			def = trap.Definition{Kind: kind}
		}
		if err := compileTrap(raw.table, &def); err != nil {
			return nil, fmt.Errorf("compiling trap %s: %w", raw.id, err)
		}
		rs.Traps[kind] = def
	}

	for _, raw := range coll.terminals {
		term := ice.Terminal(raw.id)
		def, ok := rs.Terminals[term]
		if !ok {
			def = ice.Definition{Terminal: term}
		}
		if err := compileTerminal(raw.table, &def); err != nil {
			return nil, fmt.Errorf("compiling terminal %s: %w", raw.id, err)
		}
		rs.Terminals[term] = def
	}

	for _, raw := range coll.synergies {
		kind := synergy.Kind(raw.id)
		def, ok := rs.Synergies[kind]
		if !ok {
			def = synergy.Definition{Kind: kind}
		}
		if err := compileSynergy(raw.table, &def); err != nil {
			return nil, fmt.Errorf("compiling synergy %s: %w", raw.id, err)
		}
		rs.Synergies[kind] = def
	}

	for _, raw := range coll.handlers {
		rs.Handlers = append(rs.Handlers, compileHandler(raw))
	}

	return rs, nil
}

func compileRuleset(tbl *lua.LTable, rs *ruleset.Ruleset) {
	overlayString(tbl, "name", &rs.Name)
	if d := getTable(tbl, "dice"); d != nil {
		compileDice(d, &rs.Dice)
	}
	if o := getTable(tbl, "outcomes"); o != nil {
		compileThresholds(o, &rs.Outcomes.Default)
	}
	if f := getTable(tbl, "fall"); f != nil {
		overlayInt(f, "feet_per_die", &rs.Fall.FeetPerDie)
		overlayInt(f, "max_dice", &rs.Fall.MaxDice)
		overlayInt(f, "minimum_height", &rs.Fall.MinimumHeight)
		overlayInt(f, "crash_base", &rs.Fall.CrashBase)
		overlayInt(f, "featherfall_max_dc", &rs.Fall.FeatherfallMaxDC)
		overlayInt(f, "damage_sides", &rs.Fall.DamageSides)
		overlayString(f, "damage_type", &rs.Fall.DamageType)
	}
	if b := getTable(tbl, "balance"); b != nil {
		overlayInt(b, "base_stamina", &rs.Balance.BaseStamina)
	}
	if p := getTable(tbl, "persuasion"); p != nil {
		overlayInt(p, "trust_shattered_turns", &rs.Persuasion.TrustShatteredTurns)
	}
}

func compileDice(tbl *lua.LTable, cfg *dice.Config) {
	overlayInt(tbl, "sides", &cfg.Sides)
	overlayInt(tbl, "success_min", &cfg.SuccessMin)
	overlayInt(tbl, "botch_max", &cfg.BotchMax)
	overlayInt(tbl, "critical_net", &cfg.CriticalNet)
	overlayInt(tbl, "minimum_pool", &cfg.MinimumPool)
	overlayBool(tbl, "explode", &cfg.Explode)
	overlayInt(tbl, "max_explosions", &cfg.MaxExplosions)
}

func compileThresholds(tbl *lua.LTable, t *outcome.Thresholds) {
	overlayInt(tbl, "critical", &t.Critical)
	overlayInt(tbl, "exceptional", &t.Exceptional)
	overlayInt(tbl, "full", &t.Full)
}

func compileTrap(tbl *lua.LTable, def *trap.Definition) error {
	overlayInt(tbl, "detection", &def.DetectionDC)
	overlayInt(tbl, "disarm", &def.DisarmDC)
	if has(tbl, "damage") {
		expr, err := dice.ParseExpr(getString(tbl, "damage"))
		if err != nil {
			return err
		}
		def.Damage = expr
	}
	overlayString(tbl, "damage_type", &def.DamageType)
	overlayBool(tbl, "alarm", &def.Alarm)
	overlayBool(tbl, "lockdown", &def.Lockdown)
	overlayString(tbl, "narrative", &def.Narrative)
	if s := getTable(tbl, "salvage"); s != nil {
		def.Salvage = tableToStrings(s)
	}
	return nil
}

func compileTerminal(tbl *lua.LTable, def *ice.Definition) error {
	overlayInt(tbl, "rating", &def.Rating)
	if has(tbl, "ice") {
		t, err := ice.ParseType(getString(tbl, "ice"))
		if err != nil {
			return err
		}
		def.ICE = t
	}
	return nil
}

func compileSynergy(tbl *lua.LTable, def *synergy.Definition) error {
	overlayString(tbl, "name", &def.Name)
	overlayInt(tbl, "primary_dc", &def.PrimaryDC)
	overlayInt(tbl, "secondary_dc", &def.SecondaryDC)
	overlayString(tbl, "primary_skill", &def.PrimarySkill)
	overlayString(tbl, "secondary_skill", &def.SecondarySkill)
	if has(tbl, "timing") {
		t, err := synergy.ParseTiming(getString(tbl, "timing"))
		if err != nil {
			return err
		}
		def.Timing = t
	}
	return nil
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if effTbl, ok := v.(*lua.LTable); ok {
			effects = append(effects, compileEffect(effTbl))
		}
	})
	return effects
}

func compileEffect(tbl *lua.LTable) types.Effect {
	effType := getString(tbl, "type")
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})
	return types.Effect{
		Type:   effType,
		Params: params,
	}
}

func compileHandler(raw rawHandler) types.EventHandler {
	handler := types.EventHandler{
		EventType: raw.eventType,
	}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		handler.Conditions = compileConditions(condTbl)
	}
	if effTbl := getTable(raw.table, "effects"); effTbl != nil {
		handler.Effects = compileEffects(effTbl)
	}
	return handler
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conds []types.Condition
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if condTbl, ok := v.(*lua.LTable); ok {
			conds = append(conds, compileCondition(condTbl))
		}
	})
	return conds
}

func compileCondition(tbl *lua.LTable) types.Condition {
	cond := types.Condition{
		Type:   getString(tbl, "type"),
		Params: map[string]any{},
	}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		switch key := string(ks); key {
		case "type":
		case "inner":
			if innerTbl, ok := v.(*lua.LTable); ok {
				inner := compileCondition(innerTbl)
				cond.Inner = &inner
			}
		default:
			cond.Params[key] = toGoValue(v)
		}
	})
	return cond
}

// sortedLuaFiles returns .lua files with ruleset.lua first, then the rest
// in alphabetical order.
func sortedLuaFiles(files []string) []string {
	var rulesetFile string
	var others []string
	for _, f := range files {
		if f == "ruleset.lua" {
			rulesetFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if rulesetFile != "" {
		return append([]string{rulesetFile}, others...)
	}
	return others
}
