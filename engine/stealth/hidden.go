package stealth

import "fmt"

// Ability is a way of becoming hidden.
type Ability int

const (
	SlipIntoShadow Ability = iota
	OneWithTheStatic
)

func (a Ability) String() string {
	switch a {
	case SlipIntoShadow:
		return "slip_into_shadow"
	case OneWithTheStatic:
		return "one_with_the_static"
	default:
		panic(fmt.Sprintf("stealth: unknown ability %d", int(a)))
	}
}

// DetectionModifier is added to the difficulty of spotting the hidden
// character.
func (a Ability) DetectionModifier() int {
	switch a {
	case SlipIntoShadow:
		return 1
	case OneWithTheStatic:
		return 2
	default:
		panic(fmt.Sprintf("stealth: unknown ability %d", int(a)))
	}
}

// BreakCondition ends a hidden status.
type BreakCondition string

const (
	BreakAttack    BreakCondition = "attack"
	BreakDetected  BreakCondition = "detected"
	BreakLoudNoise BreakCondition = "loud_noise"
	BreakLeaveZone BreakCondition = "leave_zone"
)

// BreaksOn reports whether cond ends a status granted by a.
func (a Ability) BreaksOn(cond BreakCondition) bool {
	switch cond {
	case BreakAttack, BreakDetected, BreakLoudNoise:
		return true
	case BreakLeaveZone:
		return a == OneWithTheStatic
	default:
		return false
	}
}
