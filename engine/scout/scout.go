// Package scout resolves surveying the surrounding area. Terrain and
// visibility are composed on the traditional scale before conversion.
package scout

import (
	"fmt"
	"slices"

	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Terrain is how hard the area is to read.
type Terrain string

const (
	OpenWasteland     Terrain = "open_wasteland"
	ModerateRuins     Terrain = "moderate_ruins"
	DenseRuins        Terrain = "dense_ruins"
	Labyrinthine      Terrain = "labyrinthine"
	GlitchedLabyrinth Terrain = "glitched_labyrinth"
)

var terrainDC = map[Terrain]int{
	OpenWasteland:     8,
	ModerateRuins:     12,
	DenseRuins:        16,
	Labyrinthine:      20,
	GlitchedLabyrinth: 24,
}

// TraditionalDC returns the terrain's traditional difficulty.
func (t Terrain) TraditionalDC() int {
	dc, ok := terrainDC[t]
	if !ok {
		panic(fmt.Sprintf("scout: unknown terrain %q", string(t)))
	}
	return dc
}

// ParseTerrain validates a terrain name.
func ParseTerrain(name string) (Terrain, error) {
	if _, ok := terrainDC[Terrain(name)]; !ok {
		return "", errs.Invalid("scout: unknown terrain %q", name)
	}
	return Terrain(name), nil
}

// Visibility is the viewing condition.
type Visibility string

const (
	Excellent   Visibility = "excellent"
	Good        Visibility = "good"
	Normal      Visibility = "normal"
	Poor        Visibility = "poor"
	Terrible    Visibility = "terrible"
	StaticStorm Visibility = "static_storm"
)

var visibilityMod = map[Visibility]int{
	Excellent:   -2,
	Good:        -1,
	Normal:      0,
	Poor:        2,
	Terrible:    4,
	StaticStorm: 6,
}

// Modifier returns the traditional-scale modifier for the visibility.
func (v Visibility) Modifier() int {
	m, ok := visibilityMod[v]
	if !ok {
		panic(fmt.Sprintf("scout: unknown visibility %q", string(v)))
	}
	return m
}

// ParseVisibility validates a visibility name.
func ParseVisibility(name string) (Visibility, error) {
	if _, ok := visibilityMod[Visibility(name)]; !ok {
		return "", errs.Invalid("scout: unknown visibility %q", name)
	}
	return Visibility(name), nil
}

// Context is one scouting attempt.
type Context struct {
	Terrain     Terrain
	Visibility  Visibility
	SurvivalKit bool
	Binoculars  bool
}

// NewContext validates terrain and visibility.
func NewContext(t Terrain, v Visibility) (Context, error) {
	if _, ok := terrainDC[t]; !ok {
		return Context{}, errs.Invalid("scout: unknown terrain %q", string(t))
	}
	if _, ok := visibilityMod[v]; !ok {
		return Context{}, errs.Invalid("scout: unknown visibility %q", string(v))
	}
	return Context{Terrain: t, Visibility: v}, nil
}

// Traditional is the composed traditional difficulty, floored at 1.
func (c Context) Traditional() int {
	dc := c.Terrain.TraditionalDC() + c.Visibility.Modifier()
	return max(dc, 1)
}

// Target converts the composed traditional difficulty.
func (c Context) Target() difficulty.Target {
	return difficulty.FromTraditional(c.Traditional())
}

// BonusDice is the extra pool from equipment.
func (c Context) BonusDice() int {
	n := 0
	if c.SurvivalKit {
		n++
	}
	if c.Binoculars {
		n += 2
	}
	return n
}

// Result is the consequence of scouting.
type Result struct {
	Outcome       types.Outcome
	Margin        int
	RoomsRevealed int
	Narrative     string
}

// Resolve applies a classified outcome.
func Resolve(out types.Outcome, margin int) Result {
	r := Result{Outcome: out, Margin: margin}
	if !out.IsSuccess() {
		r.Narrative = "The terrain gives nothing away."
		return r
	}
	r.RoomsRevealed = 1 + max(0, margin)/2
	if r.RoomsRevealed == 1 {
		r.Narrative = "You make out the way ahead."
	} else {
		r.Narrative = fmt.Sprintf("You map out %d areas ahead.", r.RoomsRevealed)
	}
	return r
}

// Terrains returns every terrain in ascending difficulty.
func Terrains() []Terrain {
	ts := make([]Terrain, 0, len(terrainDC))
	for t := range terrainDC {
		ts = append(ts, t)
	}
	slices.SortFunc(ts, func(a, b Terrain) int { return terrainDC[a] - terrainDC[b] })
	return ts
}
