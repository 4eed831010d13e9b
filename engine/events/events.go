// Package events implements single-pass event handler dispatch.
// Event handlers produce additional effects but do not recurse.
package events

import (
	"github.com/nathoo/dicecore/engine/rules"
	"github.com/nathoo/dicecore/engine/state"
	"github.com/nathoo/dicecore/types"
)

// Dispatch returns the effects of every handler whose event type matches
// one of events and whose conditions hold against a, in event order and
// then handler order. The caller applies them once; events they emit are
// not dispatched again.
func Dispatch(events []types.Event, handlers []types.EventHandler, a *state.Arena) []types.Effect {
	var result []types.Effect

	for _, event := range events {
		for _, handler := range handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !rules.EvalAllConditions(handler.Conditions, event, a) {
				continue
			}
			result = append(result, handler.Effects...)
		}
	}

	return result
}
