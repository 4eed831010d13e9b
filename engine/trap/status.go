package trap

import "fmt"

// Status is a trap's lifecycle position.
type Status int

const (
	Armed Status = iota
	Detected
	Analyzed
	DisarmInProgress
	Disarmed
	Triggered
	Destroyed
)

func (s Status) String() string {
	switch s {
	case Armed:
		return "armed"
	case Detected:
		return "detected"
	case Analyzed:
		return "analyzed"
	case DisarmInProgress:
		return "disarm_in_progress"
	case Disarmed:
		return "disarmed"
	case Triggered:
		return "triggered"
	case Destroyed:
		return "destroyed"
	default:
		panic(fmt.Sprintf("trap: unknown status %d", int(s)))
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool { return s == Disarmed || s == Destroyed }

// CanDetect reports whether a detection roll is allowed.
func (s Status) CanDetect() bool { return s == Armed }

// CanAnalyze reports whether an analysis roll is allowed.
func (s Status) CanAnalyze() bool { return s == Detected }

// CanClear reports whether a sprung trap may be cleared away. Clearing a
// destroyed trap is a no-op.
func (s Status) CanClear() bool { return s == Triggered || s == Destroyed }

// CanDisarm reports whether a disarm roll is allowed. Analysis may be
// skipped.
func (s Status) CanDisarm() bool {
	return s == Detected || s == Analyzed || s == DisarmInProgress
}
