package synergy

import (
	"fmt"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/errs"
)

// Context carries the situational inputs of one synergy attempt. The set
// of implementations is closed: HiddenPathContext, LairContext,
// PatrolContext and LootContext.
type Context interface {
	synergyKind() Kind
}

// HiddenPathContext feeds FindHiddenPath.
type HiddenPathContext struct {
	TerrainModifier int // added to the navigation target
	Visibility      int // added to the navigation target
}

// LairContext feeds TrackToLair.
type LairContext struct {
	TrailAgeModifier int // added to the tracking target
	LockModifier     int // added to the bypass target
}

// PatrolContext feeds AvoidPatrol.
type PatrolContext struct {
	PatrolCount   int // each patrol beyond the first adds 1 to the evasion target
	CoverModifier int // added to the evasion target
}

// LootContext feeds FindAndLoot.
type LootContext struct {
	ScarcityModifier int  // added to the foraging target
	ContainerLocked  bool // adds 1 to the bypass target
}

func (HiddenPathContext) synergyKind() Kind { return FindHiddenPath }
func (LairContext) synergyKind() Kind       { return TrackToLair }
func (PatrolContext) synergyKind() Kind     { return AvoidPatrol }
func (LootContext) synergyKind() Kind       { return FindAndLoot }

// KindOf returns the synergy a context belongs to.
func KindOf(ctx Context) Kind {
	switch c := ctx.(type) {
	case HiddenPathContext, LairContext, PatrolContext, LootContext:
		return c.synergyKind()
	default:
		panic(fmt.Sprintf("synergy: unknown context type %T", ctx))
	}
}

// Targets derives the primary and secondary targets for def from ctx.
func Targets(def Definition, ctx Context) (primary, secondary difficulty.Target, err error) {
	if ctx == nil {
		return primary, secondary, errs.Invalid("synergy %s: context is required", def.Kind)
	}
	if k := KindOf(ctx); k != def.Kind {
		return primary, secondary, errs.Invalid("synergy %s: context belongs to %s", def.Kind, k)
	}

	var pm, sm difficulty.Modifiers
	switch c := ctx.(type) {
	case HiddenPathContext:
		pm.Add("terrain", c.TerrainModifier)
		pm.Add("visibility", c.Visibility)
	case LairContext:
		pm.Add("trail age", c.TrailAgeModifier)
		sm.Add("lock", c.LockModifier)
	case PatrolContext:
		if c.PatrolCount < 1 {
			return primary, secondary, errs.Invalid("synergy %s: patrol count must be at least 1, got %d", def.Kind, c.PatrolCount)
		}
		sm.Add("extra patrols", c.PatrolCount-1)
		sm.Add("cover", c.CoverModifier)
	case LootContext:
		pm.Add("scarcity", c.ScarcityModifier)
		if c.ContainerLocked {
			sm.Add("locked container", 1)
		}
	default:
		panic(fmt.Sprintf("synergy: unknown context type %T", ctx))
	}
	return difficulty.Compose(def.PrimaryDC, pm...), difficulty.Compose(def.SecondaryDC, sm...), nil
}
