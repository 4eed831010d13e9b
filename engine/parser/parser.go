// Package parser converts runner command lines into Command structs.
// Deliberately simple: positional arguments per verb plus a fixed set of
// keyword options, no grammar beyond that.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/dicecore/errs"
)

// Command is one parsed runner command.
type Command struct {
	Verb  string
	Sub   string // trap subcommand
	Name  string // feature, kind, surface, terminal, request or terrain
	Actor string // set with "as <actor>"
	Pools []int
	Nums  map[string]int
	Opts  map[string]string
	Flags map[string]bool
}

// Num returns the numeric option key, or def when it was not given.
func (c Command) Num(key string, def int) int {
	if n, ok := c.Nums[key]; ok {
		return n
	}
	return def
}

// Opt returns the option key, or def when it was not given.
func (c Command) Opt(key, def string) string {
	if s, ok := c.Opts[key]; ok {
		return s
	}
	return def
}

// Flag reports whether the bare flag key was given.
func (c Command) Flag(key string) bool { return c.Flags[key] }

var verbAliases = map[string]string{
	"r":        "roll",
	"jump":     "leap",
	"sneak":    "stealth",
	"hide":     "stealth",
	"hack":     "ice",
	"bypass":   "ice",
	"convince": "persuade",
	"survey":   "scout",
	"analyze":  "probe",
	"end":      "turn",
	"wait":     "turn",
	"st":       "status",
}

// patterns lists the positional arguments each verb takes. "pool" is a
// dice pool, "pool+" one or more, "name" a word and "num:key" a number
// stored under key.
var patterns = map[string][]string{
	"roll":     {"pool"},
	"check":    {"name", "pool"},
	"contest":  {"pool", "pool"},
	"climb":    {"pool"},
	"leap":     {"pool", "num:distance"},
	"balance":  {"pool", "name"},
	"fall":     {"num:height"},
	"stealth":  {"pool+"},
	"ice":      {"name", "pool"},
	"probe":    {"name", "pool"},
	"persuade": {"pool", "name"},
	"scout":    {"pool", "name"},
	"synergy":  {"name", "pool", "pool"},
	"turn":     {},
	"status":   {},
}

var trapPatterns = map[string][]string{
	"place":   {"name"},
	"detect":  {"num:handle", "pool"},
	"analyze": {"num:handle", "pool"},
	"disarm":  {"num:handle", "pool"},
	"clear":   {"num:handle"},
}

// Keywords that take a value. Numeric ones land in Nums, the rest in Opts.
var numericOptions = map[string]bool{
	"vs": true, "dc": true, "depth": true, "height": true, "length": true,
	"pool": true, "will": true, "wind": true, "armor": true, "attempts": true,
}

var stringOptions = map[string]bool{
	"as": true, "surface": true, "tool": true, "disposition": true,
	"visibility": true, "stage": true, "argument": true, "mode": true,
}

var flags = map[string]bool{
	"running": true, "featherfall": true, "advantage": true, "disadvantage": true,
	"dim": true, "lit": true, "alerted": true, "evidence": true, "pole": true,
	"wet": true, "gear": true, "kit": true, "binoculars": true, "deathdefying": true,
}

// Parse converts a command line into a Command. Words are lower-cased;
// "vs" is stored as the "dc" option and "stage n/total" as the "stage"
// and "total" options.
func Parse(input string) (Command, error) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(words) == 0 {
		return Command{}, nil
	}

	verb := words[0]
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}
	cmd := Command{
		Verb:  verb,
		Nums:  map[string]int{},
		Opts:  map[string]string{},
		Flags: map[string]bool{},
	}

	rest := words[1:]
	pattern, ok := patterns[verb]
	if verb == "trap" {
		if len(rest) == 0 {
			return Command{}, errs.Invalid("trap needs a subcommand: place, detect, analyze, disarm or clear")
		}
		cmd.Sub, rest = rest[0], rest[1:]
		pattern, ok = trapPatterns[cmd.Sub]
		if !ok {
			return Command{}, errs.Invalid("unknown trap subcommand %q", cmd.Sub)
		}
	} else if !ok {
		return Command{}, errs.Invalid("unknown command %q", verb)
	}

	positional, err := cmd.options(rest)
	if err != nil {
		return Command{}, err
	}
	if err := cmd.bind(pattern, positional); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// options pulls keyword options and flags out of words and returns the
// remaining positional words.
func (c *Command) options(words []string) ([]string, error) {
	var positional []string
	for i := 0; i < len(words); i++ {
		w := words[i]
		switch {
		case flags[w]:
			c.Flags[w] = true
		case numericOptions[w] || stringOptions[w]:
			if i+1 >= len(words) {
				return nil, errs.Invalid("%s needs a value", w)
			}
			i++
			if err := c.setOption(w, words[i]); err != nil {
				return nil, err
			}
		default:
			positional = append(positional, w)
		}
	}
	return positional, nil
}

func (c *Command) setOption(key, val string) error {
	switch {
	case key == "as":
		c.Actor = val
	case key == "stage":
		cur, total, ok := strings.Cut(val, "/")
		if !ok {
			return errs.Invalid("stage must look like 3/6, got %q", val)
		}
		n, err := number("stage", cur)
		if err != nil {
			return err
		}
		m, err := number("stage total", total)
		if err != nil {
			return err
		}
		c.Nums["stage"], c.Nums["total"] = n, m
	case numericOptions[key]:
		n, err := number(key, val)
		if err != nil {
			return err
		}
		if key == "vs" {
			key = "dc"
		}
		c.Nums[key] = n
	default:
		c.Opts[key] = val
	}
	return nil
}

// bind matches positional words against the verb's pattern.
func (c *Command) bind(pattern, words []string) error {
	i := 0
	for _, p := range pattern {
		if p == "pool+" {
			if i >= len(words) {
				return errs.Invalid("%s needs at least one pool", c.Verb)
			}
			for ; i < len(words); i++ {
				n, err := number("pool", words[i])
				if err != nil {
					return err
				}
				c.Pools = append(c.Pools, n)
			}
			continue
		}
		if i >= len(words) {
			return errs.Invalid("%s is missing its %s", c.Verb, strings.TrimPrefix(p, "num:"))
		}
		w := words[i]
		i++
		switch {
		case p == "name":
			c.Name = w
		case p == "pool":
			n, err := number("pool", w)
			if err != nil {
				return err
			}
			c.Pools = append(c.Pools, n)
		case strings.HasPrefix(p, "num:"):
			key := strings.TrimPrefix(p, "num:")
			n, err := number(key, strings.TrimPrefix(w, "#"))
			if err != nil {
				return err
			}
			c.Nums[key] = n
		}
	}
	if i < len(words) {
		return errs.Invalid("%s: unexpected %q", c.Verb, strings.Join(words[i:], " "))
	}
	return nil
}

func number(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Invalid("%s must be a number, got %q", what, s)
	}
	return n, nil
}
