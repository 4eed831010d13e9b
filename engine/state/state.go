// Package state holds the arena: every stateful entity a session creates,
// addressed by handle, plus session-wide counters such as the alert level.
// The arena is single-writer and not safe for concurrent use.
package state

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/stealth"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/errs"
)

// Handle addresses one entity in an Arena. The zero handle is never issued.
type Handle uint64

func (h Handle) String() string { return fmt.Sprintf("#%d", uint64(h)) }

// Arena owns every entity created during a session.
type Arena struct {
	next       Handle
	traps      map[Handle]*Trap
	zones      map[Handle]*Zone
	marks      map[Handle]*Mark
	hidden     map[Handle]*Hidden
	encounters map[Handle]*Encounter

	Alert    int
	Turn     int
	Counters map[string]int
}

// NewArena creates an empty arena at turn 0.
func NewArena() *Arena {
	return &Arena{
		traps:      map[Handle]*Trap{},
		zones:      map[Handle]*Zone{},
		marks:      map[Handle]*Mark{},
		hidden:     map[Handle]*Hidden{},
		encounters: map[Handle]*Encounter{},
		Counters:   map[string]int{},
	}
}

func (a *Arena) issue() Handle {
	a.next++
	return a.next
}

// RaiseAlert adds n to the alert level, which never drops below zero.
func (a *Arena) RaiseAlert(n int) int {
	a.Alert = max(0, a.Alert+n)
	return a.Alert
}

// Add adjusts a per-actor counter such as "stress" and returns the new value.
func (a *Arena) Add(actor, counter string, n int) int {
	key := actor + ":" + counter
	a.Counters[key] += n
	return a.Counters[key]
}

// Counter returns a per-actor counter. Unset counters return 0.
func (a *Arena) Counter(actor, counter string) int {
	return a.Counters[actor+":"+counter]
}

// PlaceTrap arms a new trap.
func (a *Arena) PlaceTrap(def trap.Definition) (*Trap, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	t := &Trap{Handle: a.issue(), Definition: def, Status: trap.Armed}
	a.traps[t.Handle] = t
	return t, nil
}

// Trap looks up a trap by handle.
func (a *Arena) Trap(h Handle) (*Trap, error) {
	t, ok := a.traps[h]
	if !ok {
		return nil, errs.NotFound("state: no trap %s", h)
	}
	return t, nil
}

// Traps returns every trap in handle order.
func (a *Arena) Traps() []*Trap { return ordered(a.traps) }

// AddZone starts a zone effect lasting turns turns.
func (a *Arena) AddZone(name, kind string, turns int) (*Zone, error) {
	if name == "" || kind == "" {
		return nil, errs.Invalid("state: zone needs a name and a kind")
	}
	if turns < 1 {
		return nil, errs.Invalid("state: zone %q duration must be at least 1 turn, got %d", name, turns)
	}
	z := &Zone{Handle: a.issue(), Name: name, Kind: kind, Remaining: turns}
	a.zones[z.Handle] = z
	return z, nil
}

// Zone looks up a zone effect by handle.
func (a *Arena) Zone(h Handle) (*Zone, error) {
	z, ok := a.zones[h]
	if !ok {
		return nil, errs.NotFound("state: no zone %s", h)
	}
	return z, nil
}

// Zones returns every zone effect in handle order.
func (a *Arena) Zones() []*Zone { return ordered(a.zones) }

// AddMark places a mark of kind by actor on target. A duration of 0 lasts
// until the mark is consumed.
func (a *Arena) AddMark(kind, actor, target string, turns int) (*Mark, error) {
	if kind == "" {
		return nil, errs.Invalid("state: mark needs a kind")
	}
	if turns < 0 {
		return nil, errs.Invalid("state: mark %q duration must be non-negative, got %d", kind, turns)
	}
	m := &Mark{Handle: a.issue(), Kind: kind, Actor: actor, Target: target, Remaining: turns}
	a.marks[m.Handle] = m
	return m, nil
}

// Mark looks up a mark by handle.
func (a *Arena) Mark(h Handle) (*Mark, error) {
	m, ok := a.marks[h]
	if !ok {
		return nil, errs.NotFound("state: no mark %s", h)
	}
	return m, nil
}

// Marks returns every mark in handle order.
func (a *Arena) Marks() []*Mark { return ordered(a.marks) }

// ActiveMark finds the oldest active mark matching kind, actor and target.
func (a *Arena) ActiveMark(kind, actor, target string) (*Mark, bool) {
	for _, m := range a.Marks() {
		if m.Status == MarkActive && m.Kind == kind && m.Actor == actor && m.Target == target {
			return m, true
		}
	}
	return nil, false
}

// Hide grants actor a hidden status. An actor already hidden keeps the
// existing status.
func (a *Arena) Hide(actor string, ability stealth.Ability) (*Hidden, error) {
	if actor == "" {
		return nil, errs.Invalid("state: hidden status needs an actor")
	}
	if h, ok := a.HiddenFor(actor); ok {
		return h, nil
	}
	h := &Hidden{Handle: a.issue(), Actor: actor, Ability: ability}
	a.hidden[h.Handle] = h
	return h, nil
}

// HiddenFor returns actor's active hidden status.
func (a *Arena) HiddenFor(actor string) (*Hidden, bool) {
	for _, h := range ordered(a.hidden) {
		if h.Actor == actor && h.Status == HiddenActive {
			return h, true
		}
	}
	return nil, false
}

// HiddenStatuses returns every hidden status in handle order.
func (a *Arena) HiddenStatuses() []*Hidden { return ordered(a.hidden) }

// OpenEncounter starts a pending ICE encounter.
func (a *Arena) OpenEncounter(actor string, def ice.Definition) (*Encounter, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	e := &Encounter{Handle: a.issue(), Actor: actor, Terminal: def}
	a.encounters[e.Handle] = e
	return e, nil
}

// Encounter looks up an encounter by handle.
func (a *Arena) Encounter(h Handle) (*Encounter, error) {
	e, ok := a.encounters[h]
	if !ok {
		return nil, errs.NotFound("state: no encounter %s", h)
	}
	return e, nil
}

// Encounters returns every encounter in handle order.
func (a *Arena) Encounters() []*Encounter { return ordered(a.encounters) }

// Expiry reports an entity that ran out of turns.
type Expiry struct {
	Handle Handle
	Kind   string // "zone" or "mark"
	Name   string
}

// EndTurn advances the turn counter and ticks every active zone and timed
// mark, expiring those that reach zero.
func (a *Arena) EndTurn() []Expiry {
	a.Turn++
	var out []Expiry
	for _, z := range a.Zones() {
		if z.tick() {
			out = append(out, Expiry{Handle: z.Handle, Kind: "zone", Name: z.Name})
		}
	}
	for _, m := range a.Marks() {
		if m.tick() {
			out = append(out, Expiry{Handle: m.Handle, Kind: "mark", Name: m.Kind})
		}
	}
	return out
}

func ordered[T any](m map[Handle]*T) []*T {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]*T, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
