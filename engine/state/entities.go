package state

import (
	"fmt"
	"slices"

	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/stealth"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/errs"
)

// Trap is a placed trap and its lifecycle position.
type Trap struct {
	Handle         Handle
	Definition     trap.Definition
	Status         trap.Status
	FailedAttempts int
	HintBonus      int
}

func (t *Trap) move(op string, to trap.Status, from ...trap.Status) error {
	if t.Status == to && to.Terminal() {
		return nil
	}
	if !slices.Contains(from, t.Status) {
		return errs.Policy("state: cannot %s trap %s while %s", op, t.Handle, t.Status)
	}
	t.Status = to
	return nil
}

// Detect moves an armed trap to Detected.
func (t *Trap) Detect() error {
	return t.move("detect", trap.Detected, trap.Armed)
}

// Trigger sets off an armed or detected trap.
func (t *Trap) Trigger() error {
	return t.move("trigger", trap.Triggered, trap.Armed, trap.Detected)
}

// Analyze records a completed analysis and any hint bonus it revealed.
func (t *Trap) Analyze(hintBonus int) error {
	if err := t.move("analyze", trap.Analyzed, trap.Detected); err != nil {
		return err
	}
	t.HintBonus = hintBonus
	return nil
}

// FailDisarm records a failed disarm attempt.
func (t *Trap) FailDisarm() error {
	if err := t.move("disarm", trap.DisarmInProgress, trap.Detected, trap.Analyzed, trap.DisarmInProgress); err != nil {
		return err
	}
	t.FailedAttempts++
	return nil
}

// Disarm makes the trap safe. Disarming a disarmed trap is a no-op.
func (t *Trap) Disarm() error {
	return t.move("disarm", trap.Disarmed, trap.Detected, trap.Analyzed, trap.DisarmInProgress)
}

// Destroy wrecks the trap after a botched disarm or once it has gone off.
// Destroying a destroyed trap is a no-op.
func (t *Trap) Destroy() error {
	return t.move("destroy", trap.Destroyed, trap.Detected, trap.Analyzed, trap.DisarmInProgress, trap.Triggered)
}

// ZoneStatus is a zone effect's lifecycle position.
type ZoneStatus int

const (
	ZoneActive ZoneStatus = iota
	ZoneExpired
)

func (s ZoneStatus) String() string {
	switch s {
	case ZoneActive:
		return "active"
	case ZoneExpired:
		return "expired"
	default:
		panic(fmt.Sprintf("state: unknown zone status %d", int(s)))
	}
}

// Zone is an area effect with a turn duration.
type Zone struct {
	Handle    Handle
	Name      string
	Kind      string
	Remaining int
	Status    ZoneStatus
}

// Expire ends the zone early. Expiring an expired zone is a no-op.
func (z *Zone) Expire() error {
	z.Status = ZoneExpired
	z.Remaining = 0
	return nil
}

func (z *Zone) tick() bool {
	if z.Status != ZoneActive {
		return false
	}
	z.Remaining--
	if z.Remaining > 0 {
		return false
	}
	z.Remaining = 0
	z.Status = ZoneExpired
	return true
}

// MarkStatus is a mark's lifecycle position.
type MarkStatus int

const (
	MarkActive MarkStatus = iota
	MarkConsumed
	MarkExpired
)

func (s MarkStatus) String() string {
	switch s {
	case MarkActive:
		return "active"
	case MarkConsumed:
		return "consumed"
	case MarkExpired:
		return "expired"
	default:
		panic(fmt.Sprintf("state: unknown mark status %d", int(s)))
	}
}

// Mark is a tag one actor places on a target, such as a lockout or a
// shattered trust. Remaining 0 means the mark lasts until consumed.
type Mark struct {
	Handle    Handle
	Kind      string
	Actor     string
	Target    string
	Remaining int
	Status    MarkStatus
}

// Consume uses up an active mark. Consuming a consumed mark is a no-op.
func (m *Mark) Consume() error {
	switch m.Status {
	case MarkConsumed:
		return nil
	case MarkExpired:
		return errs.Policy("state: cannot consume expired mark %s", m.Handle)
	}
	m.Status = MarkConsumed
	return nil
}

func (m *Mark) tick() bool {
	if m.Status != MarkActive || m.Remaining == 0 {
		return false
	}
	m.Remaining--
	if m.Remaining > 0 {
		return false
	}
	m.Status = MarkExpired
	return true
}

// HiddenStatus is a hidden status's lifecycle position.
type HiddenStatus int

const (
	HiddenActive HiddenStatus = iota
	HiddenBroken
)

// Hidden is an actor's active concealment.
type Hidden struct {
	Handle   Handle
	Actor    string
	Ability  stealth.Ability
	Status   HiddenStatus
	BrokenBy stealth.BreakCondition
}

// Break ends the status when cond applies to its ability. It reports
// whether the status broke. Breaking a broken status is a no-op.
func (h *Hidden) Break(cond stealth.BreakCondition) bool {
	if h.Status == HiddenBroken || !h.Ability.BreaksOn(cond) {
		return false
	}
	h.Status = HiddenBroken
	h.BrokenBy = cond
	return true
}

// EncounterStatus is an ICE encounter's lifecycle position.
type EncounterStatus int

const (
	EncounterPending EncounterStatus = iota
	EncounterResolved
)

// Encounter is one attempt to get past a terminal's ICE.
type Encounter struct {
	Handle   Handle
	Actor    string
	Terminal ice.Definition
	Status   EncounterStatus
	Result   *ice.Result
}

// Resolve records the encounter's result. An encounter resolves once.
func (e *Encounter) Resolve(r ice.Result) error {
	if e.Status == EncounterResolved {
		return errs.Policy("state: encounter %s is already resolved", e.Handle)
	}
	e.Status = EncounterResolved
	e.Result = &r
	return nil
}
