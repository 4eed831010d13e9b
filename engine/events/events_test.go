package events

import (
	"testing"

	"github.com/nathoo/dicecore/engine/state"
	"github.com/nathoo/dicecore/types"
)

func testHandlers() []types.EventHandler {
	return []types.EventHandler{
		{
			EventType: "trap_triggered",
			Effects: []types.Effect{
				{Type: "say", Params: map[string]any{"text": "Klaxons blare."}},
			},
		},
		{
			EventType: "alert_raised",
			Effects: []types.Effect{
				{Type: "add_zone", Params: map[string]any{"name": "lockdown", "kind": "sealed", "turns": 3}},
			},
		},
		{
			EventType: "trap_triggered",
			Effects: []types.Effect{
				{Type: "raise_alert", Params: map[string]any{"amount": 1}},
			},
		},
	}
}

func TestDispatch_MatchesEventType(t *testing.T) {
	effs := Dispatch([]types.Event{{Type: "trap_triggered"}}, testHandlers(), state.NewArena())
	if len(effs) != 2 {
		t.Fatalf("expected 2 effects from 2 matching handlers, got %d", len(effs))
	}
	if effs[0].Type != "say" {
		t.Errorf("expected say effect, got %q", effs[0].Type)
	}
	if effs[1].Type != "raise_alert" {
		t.Errorf("expected raise_alert effect, got %q", effs[1].Type)
	}
}

func TestDispatch_SkipsNonMatchingEventType(t *testing.T) {
	effs := Dispatch([]types.Event{{Type: "mark_added"}}, testHandlers(), state.NewArena())
	if len(effs) != 0 {
		t.Fatalf("expected 0 effects for non-matching event, got %d", len(effs))
	}
}

func TestDispatch_EventOrder(t *testing.T) {
	effs := Dispatch([]types.Event{{Type: "alert_raised"}, {Type: "trap_triggered"}}, testHandlers(), state.NewArena())
	if len(effs) != 3 {
		t.Fatalf("got %d effects, want 3", len(effs))
	}
	if effs[0].Type != "add_zone" {
		t.Errorf("first effect = %q, want add_zone", effs[0].Type)
	}
}

func TestDispatch_NoHandlers(t *testing.T) {
	if effs := Dispatch([]types.Event{{Type: "trap_triggered"}}, nil, state.NewArena()); effs != nil {
		t.Errorf("expected nil, got %v", effs)
	}
}

func TestDispatch_ConditionsGate(t *testing.T) {
	handlers := []types.EventHandler{
		{
			EventType: "check_resolved",
			Conditions: []types.Condition{
				{Type: "outcome_is", Params: map[string]any{"outcome": "CriticalFailure"}},
			},
			Effects: []types.Effect{{Type: "raise_alert", Params: map[string]any{"amount": 2}}},
		},
		{
			EventType: "check_resolved",
			Conditions: []types.Condition{
				{Type: "counter_gt", Params: map[string]any{"counter": "stress", "value": 1}},
			},
			Effects: []types.Effect{{Type: "say", Params: map[string]any{"text": "{actor} is shaking."}}},
		},
	}
	a := state.NewArena()
	a.Add("ada", "stress", 2)

	ev := types.Event{Type: "check_resolved", Data: map[string]any{"actor": "ada", "outcome": "Failure"}}
	effs := Dispatch([]types.Event{ev}, handlers, a)
	if len(effs) != 1 || effs[0].Type != "say" {
		t.Fatalf("effects = %v, want only the stress handler", effs)
	}

	ev.Data["outcome"] = "CriticalFailure"
	if effs := Dispatch([]types.Event{ev}, handlers, a); len(effs) != 2 {
		t.Errorf("got %d effects, want 2", len(effs))
	}
}
