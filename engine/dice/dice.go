// Package dice implements the dice pool roller: a pool of same-sided dice
// where high faces count as successes and low faces as botches.
package dice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// Source supplies random integers. engine.RNG and *rand.Rand satisfy it.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// Config describes the pool mechanics.
type Config struct {
	Sides         int  // faces per die
	SuccessMin    int  // faces >= SuccessMin are successes
	BotchMax      int  // faces <= BotchMax are botches
	CriticalNet   int  // net successes at or above this mark a critical roll
	MinimumPool   int  // smaller pools are raised to this size
	Explode       bool // a die showing Sides adds another die
	MaxExplosions int  // cap on extra dice per roll
}

// DefaultConfig returns the d10 pool: success on 8-10, botch on 1.
func DefaultConfig() Config {
	return Config{
		Sides:         10,
		SuccessMin:    8,
		BotchMax:      1,
		CriticalNet:   5,
		MinimumPool:   1,
		MaxExplosions: 3,
	}
}

// Validate rejects configurations the roller cannot honor.
func (c Config) Validate() error {
	switch {
	case c.Sides < 2:
		return errs.Invalid("dice: sides must be at least 2, got %d", c.Sides)
	case c.SuccessMin < 2 || c.SuccessMin > c.Sides:
		return errs.Invalid("dice: success threshold %d outside [2,%d]", c.SuccessMin, c.Sides)
	case c.BotchMax < 0 || c.BotchMax >= c.SuccessMin:
		return errs.Invalid("dice: botch threshold %d outside [0,%d]", c.BotchMax, c.SuccessMin-1)
	case c.CriticalNet < 1:
		return errs.Invalid("dice: critical cutoff must be positive, got %d", c.CriticalNet)
	case c.MinimumPool < 0:
		return errs.Invalid("dice: minimum pool must be non-negative, got %d", c.MinimumPool)
	case c.MaxExplosions < 0:
		return errs.Invalid("dice: max explosions must be non-negative, got %d", c.MaxExplosions)
	}
	return nil
}

// Roll rolls pool dice from src.
//
// Precondition: pool >= 0 and cfg is valid.
// Postcondition: Net == Successes - Botches; Fumble iff Successes == 0 and
// Botches >= 1; Critical iff Net >= cfg.CriticalNet.
func Roll(src Source, pool int, cfg Config) (types.Roll, error) {
	if err := cfg.Validate(); err != nil {
		return types.Roll{}, err
	}
	if pool < 0 {
		return types.Roll{}, errs.Invalid("dice: pool size must be non-negative, got %d", pool)
	}
	if pool < cfg.MinimumPool {
		pool = cfg.MinimumPool
	}

	faces := make([]int, 0, pool)
	exploded := 0
	for i := 0; i < pool; i++ {
		face := src.Intn(cfg.Sides) + 1
		faces = append(faces, face)
		for cfg.Explode && face == cfg.Sides && exploded < cfg.MaxExplosions {
			exploded++
			face = src.Intn(cfg.Sides) + 1
			faces = append(faces, face)
		}
	}

	r := tally(faces, cfg)
	r.Pool = pool
	r.Exploded = exploded
	return r, nil
}

// FromFaces builds a Roll from known faces, e.g. when replaying a journal.
func FromFaces(faces []int, cfg Config) (types.Roll, error) {
	if err := cfg.Validate(); err != nil {
		return types.Roll{}, err
	}
	for i, f := range faces {
		if f < 1 || f > cfg.Sides {
			return types.Roll{}, errs.Invalid("dice: face %d at index %d outside [1,%d]", f, i, cfg.Sides)
		}
	}
	r := tally(append([]int(nil), faces...), cfg)
	r.Pool = len(faces)
	return r, nil
}

func tally(faces []int, cfg Config) types.Roll {
	r := types.Roll{Faces: faces}
	for _, f := range faces {
		switch {
		case f >= cfg.SuccessMin:
			r.Successes++
		case f <= cfg.BotchMax:
			r.Botches++
		}
	}
	r.Net = r.Successes - r.Botches
	r.Fumble = r.Successes == 0 && r.Botches >= 1
	r.Critical = r.Net >= cfg.CriticalNet
	return r
}

// Mode selects how many rolls are made and which one is kept.
type Mode int

const (
	Normal Mode = iota
	Advantage
	Disadvantage
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Advantage:
		return "advantage"
	case Disadvantage:
		return "disadvantage"
	default:
		panic(fmt.Sprintf("dice: unknown mode %d", int(m)))
	}
}

// Pair is the result of a roll made with a Mode. Discarded is nil for Normal.
type Pair struct {
	Mode      Mode
	Kept      types.Roll
	Discarded *types.Roll
}

// RollWithAdvantage rolls once for Normal, or twice keeping the higher
// (Advantage) or lower (Disadvantage) net successes. Ties keep the first.
func RollWithAdvantage(src Source, pool int, cfg Config, mode Mode) (Pair, error) {
	first, err := Roll(src, pool, cfg)
	if err != nil {
		return Pair{}, err
	}
	if mode == Normal {
		return Pair{Mode: mode, Kept: first}, nil
	}
	second, err := Roll(src, pool, cfg)
	if err != nil {
		return Pair{}, err
	}

	keepSecond := false
	switch mode {
	case Advantage:
		keepSecond = second.Net > first.Net
	case Disadvantage:
		keepSecond = second.Net < first.Net
	default:
		panic(fmt.Sprintf("dice: unknown mode %d", int(mode)))
	}
	if keepSecond {
		return Pair{Mode: mode, Kept: second, Discarded: &first}, nil
	}
	return Pair{Mode: mode, Kept: first, Discarded: &second}, nil
}

// Damage is a sum-based damage roll.
type Damage struct {
	Expr  types.DiceExpr
	Faces []int
	Total int
}

// RollDamage rolls expr and sums the faces.
func RollDamage(src Source, expr types.DiceExpr) (Damage, error) {
	if expr.Count < 0 {
		return Damage{}, errs.Invalid("dice: damage dice count must be non-negative, got %d", expr.Count)
	}
	if expr.Count == 0 {
		return Damage{Expr: expr}, nil
	}
	if expr.Sides < 1 {
		return Damage{}, errs.Invalid("dice: damage die must have at least one side, got %d", expr.Sides)
	}
	d := Damage{Expr: expr, Faces: make([]int, 0, expr.Count)}
	for i := 0; i < expr.Count; i++ {
		f := src.Intn(expr.Sides) + 1
		d.Faces = append(d.Faces, f)
		d.Total += f
	}
	return d, nil
}

// ParseExpr parses "NdS". "0" and "" denote no dice.
func ParseExpr(s string) (types.DiceExpr, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "0" {
		return types.DiceExpr{}, nil
	}
	count, sides, ok := strings.Cut(s, "d")
	if !ok {
		return types.DiceExpr{}, errs.Invalid("dice: malformed expression %q", s)
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return types.DiceExpr{}, errs.Invalid("dice: malformed count in %q", s)
	}
	sd, err := strconv.Atoi(sides)
	if err != nil || sd < 1 {
		return types.DiceExpr{}, errs.Invalid("dice: malformed sides in %q", s)
	}
	return types.DiceExpr{Count: n, Sides: sd}, nil
}
