// Package trap resolves trap detection, analysis and disarmament. Trap
// difficulties are authored on the traditional scale and converted.
package trap

import (
	"fmt"
	"slices"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Kind identifies a trap design.
type Kind string

const (
	Tripwire      Kind = "tripwire"
	PressurePlate Kind = "pressure_plate"
	Electrified   Kind = "electrified"
	LaserGrid     Kind = "laser_grid"
	JotunDefense  Kind = "jotun_defense"
)

// Kinds returns every trap kind in ascending danger.
func Kinds() []Kind {
	return []Kind{Tripwire, PressurePlate, Electrified, LaserGrid, JotunDefense}
}

// ParseKind validates a trap kind name.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if !slices.Contains(Kinds(), k) {
		return "", errs.Invalid("trap: unknown kind %q", name)
	}
	return k, nil
}

// Definition is the authored data for one trap kind.
type Definition struct {
	Kind        Kind
	DetectionDC int // traditional scale
	DisarmDC    int // traditional scale
	Damage      types.DiceExpr
	DamageType  string
	Alarm       bool
	Lockdown    bool
	Salvage     []string
	Narrative   string
}

// Validate checks the definition's ranges.
func (d Definition) Validate() error {
	if !slices.Contains(Kinds(), d.Kind) {
		return errs.Invalid("trap: unknown kind %q", d.Kind)
	}
	if d.DetectionDC < 1 || d.DisarmDC < 1 {
		return errs.Invalid("trap %s: difficulties must be positive, got detect %d disarm %d", d.Kind, d.DetectionDC, d.DisarmDC)
	}
	if d.Damage.Count < 0 || (d.Damage.Count > 0 && d.Damage.Sides < 2) {
		return errs.Invalid("trap %s: invalid damage %s", d.Kind, d.Damage)
	}
	if d.Damage.Count > 0 && d.DamageType == "" {
		return errs.Invalid("trap %s: damage needs a type", d.Kind)
	}
	return nil
}

// Defaults returns the built-in trap table.
func Defaults() map[Kind]Definition {
	return map[Kind]Definition{
		Tripwire: {
			Kind: Tripwire, DetectionDC: 8, DisarmDC: 8,
			Alarm:     true,
			Salvage:   []string{"trigger-mechanism", "wire-bundle"},
			Narrative: "A wire snaps taut and somewhere a bell starts ringing.",
		},
		PressurePlate: {
			Kind: PressurePlate, DetectionDC: 10, DisarmDC: 12,
			Damage: types.DiceExpr{Count: 2, Sides: 10}, DamageType: "physical",
			Salvage:   []string{"high-tension-spring", "pressure-sensor"},
			Narrative: "The plate sinks under your weight and spikes punch upward.",
		},
		Electrified: {
			Kind: Electrified, DetectionDC: 14, DisarmDC: 16,
			Damage: types.DiceExpr{Count: 3, Sides: 10}, DamageType: "lightning",
			Salvage:   []string{"capacitor", "blighted-power-cell"},
			Narrative: "Current arcs through the floor plating and into you.",
		},
		LaserGrid: {
			Kind: LaserGrid, DetectionDC: 18, DisarmDC: 20,
			Alarm: true, Lockdown: true,
			Salvage:   []string{"sensor-module", "focusing-crystal"},
			Narrative: "Red beams flicker across the corridor and the doors slam shut.",
		},
		JotunDefense: {
			Kind: JotunDefense, DetectionDC: 22, DisarmDC: 24,
			Damage: types.DiceExpr{Count: 5, Sides: 10}, DamageType: "physical",
			Alarm:     true,
			Salvage:   []string{"jotun-mechanism-fragment", "ancient-power-core"},
			Narrative: "Ancient machinery wakes and hammers down with terrible force.",
		},
	}
}

// DetectionTarget converts the detection rating and applies mods.
func (d Definition) DetectionTarget(mods ...types.Modifier) difficulty.Target {
	return difficulty.FromTraditional(d.DetectionDC, mods...)
}

// DisarmBase is the converted disarm difficulty before escalation.
func (d Definition) DisarmBase() int {
	return difficulty.SuccessCounting(d.DisarmDC)
}

// Trigger is what happens to whoever sets the trap off.
type Trigger struct {
	Kind       Kind
	Damage     types.DiceExpr
	DamageType string
	Alarm      bool
	Lockdown   bool
	Narrative  string
}

// Trigger describes the trap going off.
func (d Definition) Trigger() Trigger {
	return Trigger{
		Kind:       d.Kind,
		Damage:     d.Damage,
		DamageType: d.DamageType,
		Alarm:      d.Alarm,
		Lockdown:   d.Lockdown,
		Narrative:  d.Narrative,
	}
}

// Tool is the quality of the tools used to disarm.
type Tool int

const (
	BareHands Tool = iota
	Improvised
	Proper
	Masterwork
)

// Modifier returns the pool modifier for the tool.
func (t Tool) Modifier() int {
	switch t {
	case BareHands:
		return -2
	case Improvised:
		return 0
	case Proper:
		return 1
	case Masterwork:
		return 2
	default:
		panic(fmt.Sprintf("trap: unknown tool %d", int(t)))
	}
}

func (t Tool) String() string {
	switch t {
	case BareHands:
		return "bare_hands"
	case Improvised:
		return "improvised"
	case Proper:
		return "proper"
	case Masterwork:
		return "masterwork"
	default:
		panic(fmt.Sprintf("trap: unknown tool %d", int(t)))
	}
}

// ParseTool accepts the names produced by Tool.String.
func ParseTool(name string) (Tool, error) {
	for _, t := range []Tool{BareHands, Improvised, Proper, Masterwork} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, errs.Invalid("trap: unknown tool %q", name)
}

// BareHandsMaxDC is the highest converted disarm difficulty that can be
// attempted without tools.
const BareHandsMaxDC = 3

// HintBonus is the extra die granted by a revealed hint.
const HintBonus = 1

// DetectResult is the consequence of searching for a trap.
type DetectResult struct {
	Outcome   types.Outcome
	Margin    int
	Detected  bool
	Triggered bool
	Trigger   *Trigger
	Narrative string
}

// ResolveDetect applies a classified outcome to a detection attempt.
// Missing the trap sets it off.
func ResolveDetect(d Definition, out types.Outcome, margin int) DetectResult {
	r := DetectResult{Outcome: out, Margin: margin}
	if out.IsSuccess() {
		r.Detected = true
		r.Narrative = fmt.Sprintf("You spot a %s.", kindLabel(d.Kind))
		return r
	}
	trig := d.Trigger()
	r.Triggered = true
	r.Trigger = &trig
	r.Narrative = trig.Narrative
	return r
}

// AnalyzeResult is what studying a detected trap uncovered.
type AnalyzeResult struct {
	Net        int
	Target     int
	Disclosure difficulty.Disclosure
	DisarmDC   int // converted; 0 unless revealed
	Trigger    *Trigger
	HintBonus  int
}

// ResolveAnalyze applies the progressive reveal thresholds.
func ResolveAnalyze(d Definition, net, target int) AnalyzeResult {
	disc := difficulty.Reveal(net, target)
	r := AnalyzeResult{Net: net, Target: target, Disclosure: disc}
	if disc.DifficultyRevealed {
		r.DisarmDC = d.DisarmBase()
	}
	if disc.ConsequencesRevealed {
		trig := d.Trigger()
		r.Trigger = &trig
	}
	if disc.HintRevealed {
		r.HintBonus = HintBonus
	}
	return r
}

// DisarmContext is one disarm attempt.
type DisarmContext struct {
	Definition     Definition
	Tool           Tool
	FailedAttempts int
	HintBonus      int
}

// NewDisarmContext validates a disarm attempt. Bare hands are refused on
// traps harder than BareHandsMaxDC.
func NewDisarmContext(d Definition, tool Tool, failedAttempts, hintBonus int) (DisarmContext, error) {
	if failedAttempts < 0 {
		return DisarmContext{}, errs.Invalid("trap: failed attempts must be non-negative, got %d", failedAttempts)
	}
	if hintBonus < 0 {
		return DisarmContext{}, errs.Invalid("trap: hint bonus must be non-negative, got %d", hintBonus)
	}
	if tool < BareHands || tool > Masterwork {
		return DisarmContext{}, errs.Invalid("trap: unknown tool %d", int(tool))
	}
	if tool == BareHands && d.DisarmBase() > BareHandsMaxDC {
		return DisarmContext{}, errs.Policy("trap %s: needs tools, difficulty %d is too high for bare hands", d.Kind, d.DisarmBase())
	}
	return DisarmContext{Definition: d, Tool: tool, FailedAttempts: failedAttempts, HintBonus: hintBonus}, nil
}

// Target is the converted disarm difficulty raised by each failed attempt.
func (c DisarmContext) Target() difficulty.Target {
	var m difficulty.Modifiers
	m.Add("failed attempts", c.FailedAttempts)
	t := difficulty.Compose(c.Definition.DisarmBase(), m...)
	t.Traditional = c.Definition.DisarmDC
	return t
}

// PoolModifier is the tool modifier plus any hint bonus.
func (c DisarmContext) PoolModifier() int {
	return c.Tool.Modifier() + c.HintBonus
}

// DisarmResult is the consequence of a disarm attempt.
type DisarmResult struct {
	Outcome       types.Outcome
	Margin        int
	Disarmed      bool
	Destroyed     bool
	Triggered     bool
	FailedAttempt bool
	NextTarget    int
	Salvage       []string
	Trigger       *Trigger
	Narrative     string
}

// ResolveDisarm applies a classified outcome to a disarm attempt.
func ResolveDisarm(c DisarmContext, out types.Outcome, margin int) DisarmResult {
	r := DisarmResult{Outcome: out, Margin: margin}
	label := kindLabel(c.Definition.Kind)
	switch out {
	case types.CriticalSuccess:
		r.Disarmed = true
		r.Salvage = append([]string(nil), c.Definition.Salvage...)
		r.Narrative = fmt.Sprintf("You take the %s apart cleanly and keep the parts.", label)
	case types.ExceptionalSuccess, types.FullSuccess, types.MarginalSuccess:
		r.Disarmed = true
		r.Narrative = fmt.Sprintf("The %s goes dead.", label)
	case types.Failure:
		r.FailedAttempt = true
		r.NextTarget = c.Target().Effective + 1
		r.Narrative = fmt.Sprintf("The %s resists you and the mechanism grows twitchy.", label)
	case types.CriticalFailure:
		trig := c.Definition.Trigger()
		r.Destroyed = true
		r.Triggered = true
		r.Trigger = &trig
		r.Narrative = trig.Narrative
	default:
		panic(fmt.Sprintf("trap: unknown outcome %d", int(out)))
	}
	return r
}

func kindLabel(k Kind) string {
	switch k {
	case Tripwire:
		return "tripwire"
	case PressurePlate:
		return "pressure plate"
	case Electrified:
		return "electrified panel"
	case LaserGrid:
		return "laser grid"
	case JotunDefense:
		return "Jotun defense system"
	default:
		return string(k)
	}
}
