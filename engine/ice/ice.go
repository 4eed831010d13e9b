// Package ice resolves encounters with the intrusion countermeasures that
// guard terminals during a bypass.
package ice

import (
	"fmt"
	"slices"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Type is the behaviour of a countermeasure.
type Type int

const (
	None Type = iota
	Passive
	Active
	Lethal
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Passive:
		return "passive"
	case Active:
		return "active"
	case Lethal:
		return "lethal"
	default:
		panic(fmt.Sprintf("ice: unknown type %d", int(t)))
	}
}

// ParseType accepts the names produced by Type.String.
func ParseType(name string) (Type, error) {
	for _, t := range []Type{None, Passive, Active, Lethal} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, errs.Invalid("ice: unknown type %q", name)
}

// Terminal identifies a kind of terminal.
type Terminal string

const (
	CivilianDataPort   Terminal = "civilian_data_port"
	CorporateMainframe Terminal = "corporate_mainframe"
	SecurityHub        Terminal = "security_hub"
	MilitaryServer     Terminal = "military_server"
	JotunArchive       Terminal = "jotun_archive"
	GlitchedManifold   Terminal = "glitched_manifold"
)

// Terminals returns every terminal kind.
func Terminals() []Terminal {
	return []Terminal{CivilianDataPort, CorporateMainframe, SecurityHub, MilitaryServer, JotunArchive, GlitchedManifold}
}

// ParseTerminal validates a terminal name.
func ParseTerminal(name string) (Terminal, error) {
	t := Terminal(name)
	if !slices.Contains(Terminals(), t) {
		return "", errs.Invalid("ice: unknown terminal %q", name)
	}
	return t, nil
}

// Definition pairs a terminal with its countermeasure.
type Definition struct {
	Terminal Terminal
	Rating   int // traditional scale; 0 when unguarded
	ICE      Type
}

// Validate checks that guarded terminals have a rating and unguarded ones
// do not.
func (d Definition) Validate() error {
	if !slices.Contains(Terminals(), d.Terminal) {
		return errs.Invalid("ice: unknown terminal %q", d.Terminal)
	}
	if d.ICE < None || d.ICE > Lethal {
		return errs.Invalid("ice: terminal %s has unknown ice type %d", d.Terminal, int(d.ICE))
	}
	if d.Rating < 0 {
		return errs.Invalid("ice: terminal %s rating must be non-negative, got %d", d.Terminal, d.Rating)
	}
	if (d.ICE == None) != (d.Rating == 0) {
		return errs.Invalid("ice: terminal %s rating %d does not match ice type %s", d.Terminal, d.Rating, d.ICE)
	}
	return nil
}

// Defaults returns the built-in terminal table.
func Defaults() map[Terminal]Definition {
	return map[Terminal]Definition{
		CivilianDataPort:   {Terminal: CivilianDataPort},
		CorporateMainframe: {Terminal: CorporateMainframe, Rating: 12, ICE: Passive},
		SecurityHub:        {Terminal: SecurityHub, Rating: 16, ICE: Active},
		MilitaryServer:     {Terminal: MilitaryServer, Rating: 20, ICE: Active},
		JotunArchive:       {Terminal: JotunArchive, Rating: 24, ICE: Lethal},
		GlitchedManifold:   {Terminal: GlitchedManifold},
	}
}

// Guarded reports whether the terminal has any countermeasure.
func (d Definition) Guarded() bool { return d.ICE != None }

// Target is the converted encounter difficulty.
func (d Definition) Target(mods ...types.Modifier) difficulty.Target {
	return difficulty.FromTraditional(d.Rating, mods...)
}

// WillSaveDC is the traditional difficulty of resisting lethal feedback.
const WillSaveDC = 16

// WillSaveTarget is the converted will save difficulty.
func WillSaveTarget(mods ...types.Modifier) difficulty.Target {
	return difficulty.FromTraditional(WillSaveDC, mods...)
}

// Result is the consequence of an ICE encounter.
type Result struct {
	Terminal         Terminal
	ICE              Type
	Outcome          types.Outcome
	Margin           int
	Evaded           bool
	BonusDice        int
	LocationRevealed bool
	Disconnected     bool
	LockoutTurns     int
	PermanentLockout bool
	AlertIncrease    int
	Damage           types.DiceExpr
	DamageType       string
	Stress           types.DiceExpr
	Narrative        string
}

// Unguarded is the result of bypassing a terminal with no countermeasure.
func Unguarded(d Definition) Result {
	return Result{Terminal: d.Terminal, ICE: None, Outcome: types.FullSuccess, Evaded: true,
		Narrative: "Nothing stands between you and the data."}
}

// ResolvePassive applies an outcome against passive ICE.
func ResolvePassive(d Definition, out types.Outcome, margin int) Result {
	r := Result{Terminal: d.Terminal, ICE: Passive, Outcome: out, Margin: margin}
	if out.IsSuccess() {
		r.Evaded = true
		r.Narrative = "You slide past the watchdog routines unnoticed."
		return r
	}
	r.LocationRevealed = true
	r.AlertIncrease = 2
	r.Narrative = "A trace routine tags your position and reports it."
	return r
}

// ResolveActive applies an outcome against active ICE.
func ResolveActive(d Definition, out types.Outcome, margin int) Result {
	r := Result{Terminal: d.Terminal, ICE: Active, Outcome: out, Margin: margin}
	if out.IsSuccess() {
		r.Evaded = true
		r.BonusDice = 1
		r.Narrative = "You beat the ICE and leave a backdoor open."
		return r
	}
	r.Disconnected = true
	r.LockoutTurns = 1
	r.AlertIncrease = 1
	r.Narrative = "The ICE severs your connection."
	return r
}

// ResolveLethal applies the outcome of a will save against lethal
// feedback.
func ResolveLethal(d Definition, save types.Outcome, margin int) Result {
	r := Result{Terminal: d.Terminal, ICE: Lethal, Outcome: save, Margin: margin, Disconnected: true}
	if save.IsSuccess() {
		r.Stress = types.DiceExpr{Count: 1, Sides: 6}
		r.LockoutTurns = 1
		r.Narrative = "You tear yourself free of the feedback, shaking."
		return r
	}
	r.Damage = types.DiceExpr{Count: 3, Sides: 10}
	r.DamageType = "psychic"
	r.Stress = types.DiceExpr{Count: 2, Sides: 6}
	r.PermanentLockout = true
	r.AlertIncrease = 2
	r.Narrative = "Black ICE floods your mind and burns the terminal shut for good."
	return r
}

// Resolve dispatches to the resolver for the terminal's ICE type. For
// lethal ICE out is the will save outcome.
func Resolve(d Definition, out types.Outcome, margin int) Result {
	switch d.ICE {
	case None:
		return Unguarded(d)
	case Passive:
		return ResolvePassive(d, out, margin)
	case Active:
		return ResolveActive(d, out, margin)
	case Lethal:
		return ResolveLethal(d, out, margin)
	default:
		panic(fmt.Sprintf("ice: unknown type %d", int(d.ICE)))
	}
}

// Analysis is what probing a terminal uncovered.
type Analysis struct {
	Disclosure difficulty.Disclosure
	Rating     int  // traditional; 0 unless revealed
	ICE        Type // None unless consequences revealed
	HintBonus  int
}

// AnalyzeTerminal applies the progressive reveal thresholds.
func AnalyzeTerminal(d Definition, net, target int) Analysis {
	disc := difficulty.Reveal(net, target)
	a := Analysis{Disclosure: disc}
	if disc.DifficultyRevealed {
		a.Rating = d.Rating
	}
	if disc.ConsequencesRevealed {
		a.ICE = d.ICE
	}
	if disc.HintRevealed {
		a.HintBonus = 1
	}
	return a
}
