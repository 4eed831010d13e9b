// Package persuasion resolves attempts to talk an NPC into something.
package persuasion

import (
	"fmt"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Request is how much is being asked.
type Request int

const (
	Trivial Request = iota + 1
	Minor
	Moderate
	Major
	Extreme
)

// BaseDC returns the request's base difficulty.
func (r Request) BaseDC() int {
	if r < Trivial || r > Extreme {
		panic(fmt.Sprintf("persuasion: unknown request %d", int(r)))
	}
	return int(r)
}

var requestNames = map[Request]string{
	Trivial:  "trivial",
	Minor:    "minor",
	Moderate: "moderate",
	Major:    "major",
	Extreme:  "extreme",
}

func (r Request) String() string {
	if n, ok := requestNames[r]; ok {
		return n
	}
	panic(fmt.Sprintf("persuasion: unknown request %d", int(r)))
}

// ParseRequest accepts the names produced by Request.String.
func ParseRequest(name string) (Request, error) {
	for r, n := range requestNames {
		if n == name {
			return r, nil
		}
	}
	return 0, errs.Invalid("persuasion: unknown request %q", name)
}

// Disposition is how the NPC feels about the speaker.
type Disposition int

const (
	Hostile Disposition = iota - 2
	Unfriendly
	Neutral
	Friendly
	Allied
)

// Modifier returns the difficulty modifier for the disposition.
func (d Disposition) Modifier() int {
	if d < Hostile || d > Allied {
		panic(fmt.Sprintf("persuasion: unknown disposition %d", int(d)))
	}
	return -int(d)
}

// Shift moves the disposition by delta, staying within Hostile..Allied.
func (d Disposition) Shift(delta int) Disposition {
	n := int(d) + delta
	if n < int(Hostile) {
		return Hostile
	}
	if n > int(Allied) {
		return Allied
	}
	return Disposition(n)
}

var dispositionNames = map[Disposition]string{
	Hostile:    "hostile",
	Unfriendly: "unfriendly",
	Neutral:    "neutral",
	Friendly:   "friendly",
	Allied:     "allied",
}

func (d Disposition) String() string {
	if n, ok := dispositionNames[d]; ok {
		return n
	}
	panic(fmt.Sprintf("persuasion: unknown disposition %d", int(d)))
}

// ParseDisposition accepts the names produced by Disposition.String.
func ParseDisposition(name string) (Disposition, error) {
	for d, n := range dispositionNames {
		if n == name {
			return d, nil
		}
	}
	return 0, errs.Invalid("persuasion: unknown disposition %q", name)
}

// Argument is how the pitch lines up with the NPC's values.
type Argument int

const (
	NeutralArgument Argument = iota
	Aligned
	Opposed
)

// MaxFactionStanding bounds faction standing in both directions.
const MaxFactionStanding = 3

// NegotiationFloor is the lowest target a negotiation can have.
const NegotiationFloor = 4

// Context is one persuasion attempt.
type Context struct {
	Request          Request
	Disposition      Disposition
	Argument         Argument
	Evidence         bool
	Stressed         bool
	Feared           bool
	Grateful         bool
	PreviousAttempts int
	SameArgument     bool
	FactionStanding  int
}

// NewContext returns a context for req against a neutral NPC.
func NewContext(req Request) (Context, error) {
	c := Context{Request: req, Disposition: Neutral}
	if err := c.Validate(); err != nil {
		return Context{}, err
	}
	return c, nil
}

// Validate checks enum values and ranges.
func (c Context) Validate() error {
	switch {
	case c.Request < Trivial || c.Request > Extreme:
		return errs.Invalid("persuasion: unknown request %d", int(c.Request))
	case c.Disposition < Hostile || c.Disposition > Allied:
		return errs.Invalid("persuasion: unknown disposition %d", int(c.Disposition))
	case c.Argument < NeutralArgument || c.Argument > Opposed:
		return errs.Invalid("persuasion: unknown argument %d", int(c.Argument))
	case c.PreviousAttempts < 0:
		return errs.Invalid("persuasion: previous attempts must be non-negative, got %d", c.PreviousAttempts)
	case c.FactionStanding < -MaxFactionStanding || c.FactionStanding > MaxFactionStanding:
		return errs.Invalid("persuasion: faction standing %d outside [-%d,%d]", c.FactionStanding, MaxFactionStanding, MaxFactionStanding)
	}
	return nil
}

// Target composes the persuasion difficulty.
func (c Context) Target() difficulty.Target {
	var m difficulty.Modifiers
	m.Add("disposition", c.Disposition.Modifier())
	switch c.Argument {
	case Aligned:
		m.Add("aligned argument", -1)
	case Opposed:
		m.Add("opposed argument", 1)
	}
	if c.Evidence {
		m.Add("evidence", -1)
	}
	if c.Stressed {
		m.Add("stressed", 1)
	}
	if c.Feared {
		m.Add("feared", -1)
	}
	if c.Grateful {
		m.Add("grateful", -1)
	}
	m.Add("previous attempts", c.PreviousAttempts)
	if c.SameArgument {
		m.Add("repeated argument", 1)
	}
	m.Add("faction standing", -c.FactionStanding)
	return difficulty.Compose(c.Request.BaseDC(), m...)
}

// Result is the consequence of a persuasion attempt.
type Result struct {
	Outcome          types.Outcome
	Margin           int
	Granted          bool
	Reservations     bool
	DispositionShift int
	NewDisposition   Disposition
	Attempts         int // attempts to carry into the next context
	TrustShattered   bool
	Narrative        string
}

// Resolve applies a classified outcome to a persuasion attempt.
func Resolve(c Context, out types.Outcome, margin int) Result {
	r := Result{Outcome: out, Margin: margin}
	switch out {
	case types.CriticalSuccess:
		r.Granted = true
		r.DispositionShift = 2
		r.Narrative = "They agree warmly and think better of you for asking."
	case types.ExceptionalSuccess, types.FullSuccess:
		r.Granted = true
		r.DispositionShift = 1
		r.Narrative = "They agree."
	case types.MarginalSuccess:
		r.Granted = true
		r.Reservations = true
		r.Narrative = "They agree, but not happily."
	case types.Failure:
		r.Attempts = c.PreviousAttempts + 1
		r.Narrative = "They are not convinced."
	case types.CriticalFailure:
		r.Attempts = c.PreviousAttempts + 1
		r.TrustShattered = true
		r.DispositionShift = -2
		r.Narrative = "Whatever trust there was is gone."
	default:
		panic(fmt.Sprintf("persuasion: unknown outcome %d", int(out)))
	}
	r.NewDisposition = c.Disposition.Shift(r.DispositionShift)
	return r
}
