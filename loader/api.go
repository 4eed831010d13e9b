package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

// named returns a curried constructor: Name "id" { ... }.
func named(L *lua.LState, dst *[]rawNamed) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*dst = append(*dst, rawNamed{id: id, table: tbl})
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Ruleset { name = "...", dice = {...}, ... }
	L.SetGlobal("Ruleset", L.NewFunction(func(L *lua.LState) int {
		coll.ruleset = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Thresholds", named(L, &coll.thresholds))
	L.SetGlobal("Trap", named(L, &coll.traps))
	L.SetGlobal("Terminal", named(L, &coll.terminals))
	L.SetGlobal("Synergy", named(L, &coll.synergies))

	// On("event_type", { effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))
}

// condition returns a helper that builds a condition table of typ, one
// positional argument per key.
func condition(L *lua.LState, typ string, keys ...string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(typ))
		for i, key := range keys {
			tbl.RawSetString(key, L.CheckAny(i+1))
		}
		L.Push(tbl)
		return 1
	})
}

func registerConditionHelpers(L *lua.LState) {
	L.SetGlobal("OutcomeIs", condition(L, "outcome_is", "outcome"))
	L.SetGlobal("OutcomeAtLeast", condition(L, "outcome_at_least", "outcome"))
	L.SetGlobal("FeatureIs", condition(L, "feature_is", "feature"))
	L.SetGlobal("DataIs", condition(L, "data_is", "key", "value"))
	L.SetGlobal("CounterGt", condition(L, "counter_gt", "counter", "value"))
	L.SetGlobal("CounterLt", condition(L, "counter_lt", "counter", "value"))
	L.SetGlobal("AlertGt", condition(L, "alert_gt", "value"))
	L.SetGlobal("AlertLt", condition(L, "alert_lt", "value"))
	L.SetGlobal("MarkActive", condition(L, "mark_active", "kind"))
	L.SetGlobal("Hidden", condition(L, "hidden"))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func effectTable(L *lua.LState, typ string) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	return tbl
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, "say")
		tbl.RawSetString("text", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// RaiseAlert(n)
	L.SetGlobal("RaiseAlert", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, "raise_alert")
		tbl.RawSetString("amount", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	// AddZone("name", "kind", turns)
	L.SetGlobal("AddZone", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, "add_zone")
		tbl.RawSetString("name", lua.LString(L.CheckString(1)))
		tbl.RawSetString("kind", lua.LString(L.CheckString(2)))
		tbl.RawSetString("turns", L.CheckNumber(3))
		L.Push(tbl)
		return 1
	}))

	// AddMark("kind", turns) marks the target on behalf of the actor.
	L.SetGlobal("AddMark", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, "add_mark")
		tbl.RawSetString("kind", lua.LString(L.CheckString(1)))
		tbl.RawSetString("turns", L.OptNumber(2, 0))
		tbl.RawSetString("actor", lua.LString("{actor}"))
		tbl.RawSetString("target", lua.LString("{target}"))
		L.Push(tbl)
		return 1
	}))

	// EmitEvent("name")
	L.SetGlobal("EmitEvent", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, "emit_event")
		tbl.RawSetString("event", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// Stop()
	L.SetGlobal("Stop", L.NewFunction(func(L *lua.LState) int {
		L.Push(effectTable(L, "stop"))
		return 1
	}))
}
