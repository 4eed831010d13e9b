// Package contest resolves opposed rolls between an initiator and a
// defender.
package contest

import (
	"fmt"

	"github.com/nathoo/dicecore/types"
)

// Kind is the resolution category of a contested check.
type Kind int

const (
	InitiatorWins Kind = iota
	DefenderWins
	Tie
	InitiatorWinsByFumble // defender fumbled
	DefenderWinsByFumble  // initiator fumbled
	BothFumble
)

func (k Kind) String() string {
	switch k {
	case InitiatorWins:
		return "InitiatorWins"
	case DefenderWins:
		return "DefenderWins"
	case Tie:
		return "Tie"
	case InitiatorWinsByFumble:
		return "InitiatorWinsByFumble"
	case DefenderWinsByFumble:
		return "DefenderWinsByFumble"
	case BothFumble:
		return "BothFumble"
	default:
		panic(fmt.Sprintf("contest: unknown kind %d", int(k)))
	}
}

// Side identifies a participant.
type Side int

const (
	SideNone Side = iota
	SideInitiator
	SideDefender
)

func (s Side) String() string {
	switch s {
	case SideNone:
		return "none"
	case SideInitiator:
		return "initiator"
	case SideDefender:
		return "defender"
	default:
		panic(fmt.Sprintf("contest: unknown side %d", int(s)))
	}
}

// Result is the resolution of one contested check.
type Result struct {
	Initiator types.Roll
	Defender  types.Roll
	Kind      Kind
	Margin    int
}

// Resolve applies the contested priority: both fumble, initiator fumble,
// defender fumble, then a comparison of net successes.
func Resolve(initiator, defender types.Roll) Result {
	r := Result{Initiator: initiator, Defender: defender}
	switch {
	case initiator.Fumble && defender.Fumble:
		r.Kind = BothFumble
	case initiator.Fumble:
		r.Kind = DefenderWinsByFumble
		r.Margin = defender.Net
	case defender.Fumble:
		r.Kind = InitiatorWinsByFumble
		r.Margin = initiator.Net
	case initiator.Net > defender.Net:
		r.Kind = InitiatorWins
		r.Margin = initiator.Net - defender.Net
	case defender.Net > initiator.Net:
		r.Kind = DefenderWins
		r.Margin = defender.Net - initiator.Net
	default:
		r.Kind = Tie
	}
	return r
}

// Winner returns the winning side. Ties and double fumbles have no winner.
func (r Result) Winner() Side {
	switch r.Kind {
	case InitiatorWins, InitiatorWinsByFumble:
		return SideInitiator
	case DefenderWins, DefenderWinsByFumble:
		return SideDefender
	case Tie, BothFumble:
		return SideNone
	default:
		panic(fmt.Sprintf("contest: unknown kind %d", int(r.Kind)))
	}
}

// FlavorWinner is Winner with ties narrated in the initiator's favor.
func (r Result) FlavorWinner() Side {
	if r.Kind == Tie {
		return SideInitiator
	}
	return r.Winner()
}

// HadFumble reports whether either side fumbled.
func (r Result) HadFumble() bool {
	return r.Initiator.Fumble || r.Defender.Fumble
}

// Swap returns the result as seen with the participants exchanged.
func (r Result) Swap() Result {
	s := Result{Initiator: r.Defender, Defender: r.Initiator, Margin: r.Margin}
	switch r.Kind {
	case InitiatorWins:
		s.Kind = DefenderWins
	case DefenderWins:
		s.Kind = InitiatorWins
	case InitiatorWinsByFumble:
		s.Kind = DefenderWinsByFumble
	case DefenderWinsByFumble:
		s.Kind = InitiatorWinsByFumble
	case Tie, BothFumble:
		s.Kind = r.Kind
	default:
		panic(fmt.Sprintf("contest: unknown kind %d", int(r.Kind)))
	}
	return s
}
