// Package outcome classifies net successes against a target into the
// six-tier outcome scale.
package outcome

import (
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Thresholds are the minimum margins for the success tiers above
// MarginalSuccess. A margin of exactly 0 is always MarginalSuccess.
type Thresholds struct {
	Critical    int
	Exceptional int
	Full        int
}

// DefaultThresholds returns the shared split: 5+ critical, 2-4 exceptional,
// 1 full, 0 marginal.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 5, Exceptional: 2, Full: 1}
}

// Validate requires 1 <= Full <= Exceptional <= Critical.
func (t Thresholds) Validate() error {
	if t.Full < 1 || t.Exceptional < t.Full || t.Critical < t.Exceptional {
		return errs.Invalid("outcome: thresholds must satisfy 1 <= full <= exceptional <= critical, got %d/%d/%d",
			t.Full, t.Exceptional, t.Critical)
	}
	return nil
}

// Tier maps a margin to an outcome, ignoring fumbles.
func (t Thresholds) Tier(margin int) types.Outcome {
	switch {
	case margin >= t.Critical:
		return types.CriticalSuccess
	case margin >= t.Exceptional:
		return types.ExceptionalSuccess
	case margin >= t.Full:
		return types.FullSuccess
	case margin >= 0:
		return types.MarginalSuccess
	default:
		return types.Failure
	}
}

// Classification is the classified result of one roll against one target.
type Classification struct {
	Outcome types.Outcome
	Margin  int
	Net     int
	Target  int
	Fumble  bool
}

// Classifier holds the default thresholds and per-feature overrides.
type Classifier struct {
	Default    Thresholds
	PerFeature map[types.Feature]Thresholds
}

// NewClassifier returns a classifier using the default thresholds.
func NewClassifier() Classifier {
	return Classifier{Default: DefaultThresholds()}
}

// For returns the thresholds that apply to feature.
func (c Classifier) For(feature types.Feature) Thresholds {
	if t, ok := c.PerFeature[feature]; ok {
		return t
	}
	return c.Default
}

// Classify classifies roll against target using feature's thresholds.
// A fumble yields CriticalFailure regardless of margin.
func (c Classifier) Classify(feature types.Feature, roll types.Roll, target int) (Classification, error) {
	if target < 1 {
		return Classification{}, errs.Invalid("outcome: target must be at least 1, got %d", target)
	}
	return classify(c.For(feature), roll.Net, target, roll.Fumble), nil
}

// ClassifyNet classifies a bare net success count with the default
// thresholds.
func ClassifyNet(net, target int, fumble bool) types.Outcome {
	return classify(DefaultThresholds(), net, target, fumble).Outcome
}

func classify(t Thresholds, net, target int, fumble bool) Classification {
	margin := net - target
	out := t.Tier(margin)
	if fumble {
		out = types.CriticalFailure
	}
	return Classification{
		Outcome: out,
		Margin:  margin,
		Net:     net,
		Target:  target,
		Fumble:  fumble,
	}
}
