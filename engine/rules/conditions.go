// Package rules evaluates the conditions that gate event handlers.
package rules

import (
	"github.com/nathoo/dicecore/engine/state"
	"github.com/nathoo/dicecore/types"
)

// Known reports whether typ is a condition type EvalCondition understands.
func Known(typ string) bool {
	switch typ {
	case "outcome_is", "outcome_at_least", "feature_is", "data_is",
		"counter_gt", "counter_lt", "alert_gt", "alert_lt",
		"mark_active", "hidden", "not":
		return true
	}
	return false
}

// EvalCondition evaluates a single condition against ev and the arena.
// Actor and target default to the event's "actor" and "target" data.
func EvalCondition(c types.Condition, ev types.Event, a *state.Arena) bool {
	switch c.Type {
	case "outcome_is":
		want, _ := c.Params["outcome"].(string)
		got, _ := ev.Data["outcome"].(string)
		return got != "" && got == want

	case "outcome_at_least":
		want, ok := types.ParseOutcome(str(c.Params, "outcome"))
		if !ok {
			return false
		}
		got, ok := types.ParseOutcome(str(ev.Data, "outcome"))
		return ok && got >= want

	case "feature_is":
		return str(ev.Data, "feature") == str(c.Params, "feature")

	case "data_is":
		key := str(c.Params, "key")
		actual, ok := ev.Data[key]
		if !ok {
			return c.Params["value"] == nil
		}
		return equal(actual, c.Params["value"])

	case "counter_gt":
		return a.Counter(actor(c, ev), str(c.Params, "counter")) > toInt(c.Params["value"])

	case "counter_lt":
		return a.Counter(actor(c, ev), str(c.Params, "counter")) < toInt(c.Params["value"])

	case "alert_gt":
		return a.Alert > toInt(c.Params["value"])

	case "alert_lt":
		return a.Alert < toInt(c.Params["value"])

	case "mark_active":
		target := str(c.Params, "target")
		if target == "" {
			target = str(ev.Data, "target")
		}
		_, ok := a.ActiveMark(str(c.Params, "kind"), actor(c, ev), target)
		return ok

	case "hidden":
		_, ok := a.HiddenFor(actor(c, ev))
		return ok

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, ev, a)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, ev types.Event, a *state.Arena) bool {
	for _, c := range conditions {
		if !EvalCondition(c, ev, a) {
			return false
		}
	}
	return true
}

func actor(c types.Condition, ev types.Event) string {
	if s := str(c.Params, "actor"); s != "" {
		return s
	}
	return str(ev.Data, "actor")
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// equal compares event data with a condition value; numbers compare by
// value whatever their Go type.
func equal(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return toInt(a) == toInt(b)
	}
	switch a.(type) {
	case map[string]any, []any:
		return false
	}
	switch b.(type) {
	case map[string]any, []any:
		return false
	}
	return a == b
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	}
	return false
}

// toInt converts an any value to int, handling float64 from Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
