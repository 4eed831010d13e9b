// Package cli runs scenario scripts and interactive sessions against the
// dice engine: terminal I/O, output formatting, and meta-command dispatch.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/nathoo/dicecore/engine"
	"github.com/nathoo/dicecore/engine/balance"
	"github.com/nathoo/dicecore/engine/climb"
	"github.com/nathoo/dicecore/engine/dice"
	"github.com/nathoo/dicecore/engine/difficulty"
	"github.com/nathoo/dicecore/engine/fall"
	"github.com/nathoo/dicecore/engine/ice"
	"github.com/nathoo/dicecore/engine/leap"
	"github.com/nathoo/dicecore/engine/parser"
	"github.com/nathoo/dicecore/engine/persuasion"
	"github.com/nathoo/dicecore/engine/scout"
	"github.com/nathoo/dicecore/engine/state"
	"github.com/nathoo/dicecore/engine/stealth"
	"github.com/nathoo/dicecore/engine/synergy"
	"github.com/nathoo/dicecore/engine/trap"
	"github.com/nathoo/dicecore/errs"
	"github.com/nathoo/dicecore/types"
)

// DefaultActor acts for commands without an "as <actor>" suffix.
const DefaultActor = "player"

// Runner reads commands and prints what the engine resolved.
type Runner struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Actor     string
	Trace     bool
	Plain     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a Runner wired to the given engine.
func New(eng *engine.Engine) *Runner {
	return &Runner{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
		Actor:  DefaultActor,
	}
}

// Run loops: prompt, input, dispatch, output. Command errors are printed
// and the loop continues; it stops at end of input or on /quit.
func (r *Runner) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.In)
	for {
		r.print(r.paint(styleInput, "> "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if r.EchoInput {
			r.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if r.handleMeta(input) {
				return nil // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if r.lastCmd == "" {
				r.printSystem("Nothing to repeat.")
				continue
			}
			input = r.lastCmd
		} else {
			r.lastCmd = input
		}

		if err := r.Exec(ctx, input); err != nil {
			r.printError(err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// handleMeta dispatches meta-commands. Returns true if the runner should exit.
func (r *Runner) handleMeta(input string) bool {
	parts := strings.Fields(input)
	switch parts[0] {
	case "/quit", "/exit":
		r.printSystem("Goodbye.")
		return true

	case "/seed":
		rng := r.Engine.RNG
		r.printSystem(fmt.Sprintf("Seed %d at position %s (session %s, seq %d).",
			rng.Seed(), num(int(rng.Position())), r.Engine.Session, r.Engine.Seq()))

	case "/help":
		r.cmdHelp()

	case "/trace":
		r.Trace = !r.Trace
		if r.Trace {
			r.printSystem("Trace output enabled.")
		} else {
			r.printSystem("Trace output disabled.")
		}

	default:
		r.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", parts[0]))
	}
	return false
}

// Exec parses and runs one command line.
func (r *Runner) Exec(ctx context.Context, input string) error {
	cmd, err := parser.Parse(input)
	if err != nil {
		return err
	}
	if cmd.Verb == "" {
		return nil
	}
	actor := cmd.Actor
	if actor == "" {
		actor = r.Actor
	}

	e := r.Engine
	switch cmd.Verb {
	case "roll":
		roll, err := e.Roll(ctx, actor, cmd.Pools[0])
		if err != nil {
			return err
		}
		r.printLine(fmt.Sprintf("%s rolls %dd: %s", actor, cmd.Pools[0], rollText(roll)))
		return nil

	case "check":
		dc := cmd.Num("dc", 0)
		if dc < 1 {
			return errs.Invalid("check needs a difficulty: vs <dc>")
		}
		mode := dice.Normal
		switch {
		case cmd.Flag("advantage"):
			mode = dice.Advantage
		case cmd.Flag("disadvantage"):
			mode = dice.Disadvantage
		}
		rep, err := e.CheckWithMode(ctx, types.Feature(cmd.Name), actor, cmd.Pools[0], difficulty.Compose(dc), mode)
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, "")
		return nil

	case "contest":
		rep, err := e.Contest(ctx,
			engine.Side{Actor: actor, Pool: cmd.Pools[0]},
			engine.Side{Actor: "opponent", Pool: cmd.Pools[1]})
		if err != nil {
			return err
		}
		res := rep.Result
		r.report(rep.Attempts, rep.Step,
			fmt.Sprintf("Contest: %s, winner %s (margin %s).", res.Kind, res.Winner(), num(res.Margin)))
		return nil

	case "climb":
		c, err := climb.NewContext(cmd.Num("total", 1), cmd.Num("stage", 0), 10, cmd.Num("dc", 1))
		if err != nil {
			return err
		}
		c.Wet = cmd.Flag("wet")
		c.ClimbingGear = cmd.Flag("gear")
		rep, err := e.Climb(ctx, actor, cmd.Pools[0], c)
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
		return nil

	case "leap":
		c, err := leap.NewContext(cmd.Nums["distance"], cmd.Num("depth", 10))
		if err != nil {
			return err
		}
		c.RunningStart = cmd.Flag("running")
		c.DeathDefying = cmd.Flag("deathdefying")
		rep, err := e.Leap(ctx, actor, cmd.Pools[0], c)
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
		return nil

	case "balance":
		s, err := surface(cmd.Name, cmd.Num("length", 10), cmd.Num("height", 10))
		if err != nil {
			return err
		}
		c := balance.NewContext(s)
		c.Wind = cmd.Num("wind", 0)
		c.BalancePole = cmd.Flag("pole")
		rep, err := e.Balance(ctx, actor, cmd.Pools[0], c)
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
		return nil

	case "fall":
		f, err := fall.New(cmd.Nums["height"], fall.SourceEnvironmental, 0)
		if err != nil {
			return err
		}
		rep, err := e.Fall(ctx, actor, f, engine.Landing{Pool: cmd.Num("pool", 0), Featherfall: cmd.Flag("featherfall")})
		if err != nil {
			return err
		}
		res := rep.Result
		r.report(rep.Attempts, rep.Step,
			fmt.Sprintf("%s Damage %s from %dd.", res.Crash.Narrative(), num(res.Damage.Total), res.Crash.FinalDice))
		return nil

	case "stealth":
		return r.stealth(ctx, actor, cmd)

	case "trap":
		return r.trap(ctx, actor, cmd)

	case "ice":
		term, err := ice.ParseTerminal(cmd.Name)
		if err != nil {
			return err
		}
		rep, err := e.Bypass(ctx, actor, term, cmd.Pools[0], cmd.Num("will", cmd.Pools[0]))
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
		return nil

	case "probe":
		term, err := ice.ParseTerminal(cmd.Name)
		if err != nil {
			return err
		}
		rep, err := e.AnalyzeTerminal(ctx, actor, term, cmd.Pools[0])
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, disclosure(rep.Result.Disclosure))
		return nil

	case "persuade":
		return r.persuade(ctx, actor, cmd)

	case "scout":
		terrain, err := scout.ParseTerrain(cmd.Name)
		if err != nil {
			return err
		}
		vis, err := scout.ParseVisibility(cmd.Opt("visibility", string(scout.Normal)))
		if err != nil {
			return err
		}
		c, err := scout.NewContext(terrain, vis)
		if err != nil {
			return err
		}
		c.SurvivalKit = cmd.Flag("kit")
		c.Binoculars = cmd.Flag("binoculars")
		rep, err := e.Scout(ctx, actor, cmd.Pools[0], c)
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
		return nil

	case "synergy":
		kind := synergy.Kind(cmd.Name)
		sc, err := synergyContext(kind)
		if err != nil {
			return err
		}
		rep, err := e.Synergy(ctx, actor, kind, sc, cmd.Pools[0], cmd.Pools[1])
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
		return nil

	case "turn":
		st, err := e.EndTurn(ctx)
		if err != nil {
			return err
		}
		r.report(nil, st, fmt.Sprintf("Turn %d begins.", e.Arena.Turn))
		return nil

	case "status":
		r.cmdStatus()
		return nil
	}
	return errs.Invalid("unknown command %q", cmd.Verb)
}

func (r *Runner) stealth(ctx context.Context, actor string, cmd parser.Command) error {
	surf, err := stealth.ParseSurface(cmd.Opt("surface", "normal"))
	if err != nil {
		return err
	}
	c := stealth.Context{
		Surface:        surf,
		DimLight:       cmd.Flag("dim"),
		Illuminated:    cmd.Flag("lit"),
		EnemiesAlerted: cmd.Flag("alerted"),
		ArmorPenalty:   cmd.Num("armor", 0),
	}
	if len(cmd.Pools) == 1 {
		rep, err := r.Engine.Stealth(ctx, actor, cmd.Pools[0], c)
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
		return nil
	}

	members := make([]stealth.Member, len(cmd.Pools))
	for i, p := range cmd.Pools {
		members[i] = stealth.Member{ID: fmt.Sprintf("%s%d", actor, i+1), Pool: p}
	}
	rep, err := r.Engine.PartyStealth(ctx, members, c)
	if err != nil {
		return err
	}
	r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
	return nil
}

func (r *Runner) trap(ctx context.Context, actor string, cmd parser.Command) error {
	e := r.Engine
	if cmd.Sub == "place" {
		kind, err := trap.ParseKind(cmd.Name)
		if err != nil {
			return err
		}
		t, err := e.PlaceTrap(kind)
		if err != nil {
			return err
		}
		r.printLine(fmt.Sprintf("Placed %s trap %s.", kind, t.Handle))
		return nil
	}

	h := state.Handle(cmd.Nums["handle"])
	if cmd.Sub == "clear" {
		st, err := e.ClearTrap(actor, h)
		if err != nil {
			return err
		}
		r.report(nil, st, fmt.Sprintf("Trap %s cleared.", h))
		return nil
	}
	pool := cmd.Pools[0]
	switch cmd.Sub {
	case "detect":
		rep, err := e.DetectTrap(ctx, actor, h, pool)
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
	case "analyze":
		rep, err := e.AnalyzeTrap(ctx, actor, h, pool)
		if err != nil {
			return err
		}
		summary := disclosure(rep.Result.Disclosure)
		if rep.Result.DisarmDC > 0 {
			summary += fmt.Sprintf(" Disarm difficulty %d.", rep.Result.DisarmDC)
		}
		r.report(rep.Attempts, rep.Step, summary)
	case "disarm":
		tool, err := trap.ParseTool(cmd.Opt("tool", trap.Proper.String()))
		if err != nil {
			return err
		}
		rep, err := e.DisarmTrap(ctx, actor, h, pool, tool)
		if err != nil {
			return err
		}
		r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
	}
	return nil
}

func (r *Runner) persuade(ctx context.Context, actor string, cmd parser.Command) error {
	req, err := persuasion.ParseRequest(cmd.Name)
	if err != nil {
		return err
	}
	disp, err := persuasion.ParseDisposition(cmd.Opt("disposition", "neutral"))
	if err != nil {
		return err
	}
	c, err := persuasion.NewContext(req)
	if err != nil {
		return err
	}
	c.Disposition = disp
	c.Evidence = cmd.Flag("evidence")

	feature := types.FeaturePersuasion
	switch cmd.Opt("mode", "") {
	case "intimidate", "intimidation":
		feature = types.FeatureIntimidation
	case "negotiate", "negotiation":
		feature = types.FeatureNegotiation
	}
	rep, err := r.Engine.Persuade(ctx, feature, actor, "npc", cmd.Pools[0], c)
	if err != nil {
		return err
	}
	r.report(rep.Attempts, rep.Step, rep.Result.Narrative)
	return nil
}

func surface(name string, length, height int) (balance.Surface, error) {
	switch name {
	case "narrow_ledge":
		return balance.NarrowLedge(length, height)
	case "crumbling_ledge":
		return balance.CrumblingLedge(length, height)
	case "rope_bridge":
		return balance.RopeBridge(length, height)
	case "wide_plank":
		return balance.WidePlank(length, height)
	}
	return balance.Surface{}, errs.Invalid("unknown surface %q", name)
}

func synergyContext(kind synergy.Kind) (synergy.Context, error) {
	switch kind {
	case synergy.FindHiddenPath:
		return synergy.HiddenPathContext{}, nil
	case synergy.TrackToLair:
		return synergy.LairContext{}, nil
	case synergy.AvoidPatrol:
		return synergy.PatrolContext{PatrolCount: 1}, nil
	case synergy.FindAndLoot:
		return synergy.LootContext{}, nil
	}
	return nil, errs.Invalid("unknown synergy %q", string(kind))
}

func disclosure(d difficulty.Disclosure) string {
	switch {
	case d.HintRevealed:
		return "Difficulty, consequences and a hint revealed."
	case d.ConsequencesRevealed:
		return "Difficulty and consequences revealed."
	case d.DifficultyRevealed:
		return "Difficulty revealed."
	}
	return "Nothing learned."
}

func (r *Runner) cmdHelp() {
	help := []string{
		"System:",
		"  /seed         Show seed, stream position and session",
		"  /trace        Toggle effect and event trace output",
		"  /quit         Exit",
		"  /help         Show this help",
		"",
		"Commands (append \"as <actor>\" to act for someone else):",
		"  roll <pool>",
		"  check <feature> <pool> vs <dc> [advantage|disadvantage]",
		"  contest <pool> <pool>",
		"  climb <pool> stage <n>/<total> [dc <n>] [wet] [gear]",
		"  leap <pool> <distance> [depth <n>] [running]",
		"  balance <pool> <surface> [length <n>] [height <n>] [wind <n>] [pole]",
		"  fall <height> [pool <n>] [featherfall]",
		"  stealth <pool>... [surface <s>] [dim] [lit] [alerted] [armor <n>]",
		"  trap place <kind> | trap detect|analyze <h> <pool> | trap disarm <h> <pool> [tool <q>] | trap clear <h>",
		"  ice <terminal> <pool> [will <n>]",
		"  probe <terminal> <pool>",
		"  persuade <pool> <request> [disposition <d>] [mode intimidate|negotiate] [evidence]",
		"  scout <pool> <terrain> [visibility <v>] [kit] [binoculars]",
		"  synergy <kind> <pool> <pool>",
		"  turn, status, again (g)",
	}
	for _, line := range help {
		r.printLine(line)
	}
}

func (r *Runner) cmdStatus() {
	a := r.Engine.Arena
	r.printSystem(fmt.Sprintf("Turn: %d", a.Turn))
	r.printSystem(fmt.Sprintf("Alert: %d", a.Alert))
	if len(a.Counters) > 0 {
		keys := make([]string, 0, len(a.Counters))
		for k := range a.Counters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.printSystem(fmt.Sprintf("Counter %s: %s", k, num(a.Counters[k])))
		}
	}
	for _, t := range a.Traps() {
		r.printSystem(fmt.Sprintf("Trap %s: %s (%s)", t.Handle, t.Definition.Kind, t.Status))
	}
	for _, z := range a.Zones() {
		if z.Status == state.ZoneActive {
			r.printSystem(fmt.Sprintf("Zone %s: %s %s, %d turns left", z.Handle, z.Kind, z.Name, z.Remaining))
		}
	}
	for _, m := range a.Marks() {
		if m.Status == state.MarkActive {
			r.printSystem(fmt.Sprintf("Mark %s: %s %s -> %s, %d turns left", m.Handle, m.Kind, m.Actor, m.Target, m.Remaining))
		}
	}
}

// report prints each attempt, then the summary, then the step's output.
func (r *Runner) report(attempts []engine.Attempt, st engine.Step, summary string) {
	for _, a := range attempts {
		r.printLine(r.attemptLine(a))
	}
	if summary != "" {
		r.printLine(summary)
	}
	for _, line := range st.Output {
		r.printLine(line)
	}
	if r.Trace {
		r.printTrace(st)
	}
}

func (r *Runner) attemptLine(a engine.Attempt) string {
	line := fmt.Sprintf("%s %s %dd: %s", a.Actor, a.Feature, a.Pool, rollText(a.Roll))
	if a.Target.Effective > 0 {
		line += fmt.Sprintf(" vs %s -> %s (margin %s)",
			num(a.Target.Effective), r.paint(outcomeStyle(a.Outcome), label(a.Outcome)), num(a.Margin))
	}
	return line
}

func rollText(roll types.Roll) string {
	text := fmt.Sprintf("%v net %s", roll.Faces, num(roll.Net))
	if roll.Fumble {
		text += " (fumble)"
	}
	return text
}

func (r *Runner) printTrace(st engine.Step) {
	if len(st.Effects) > 0 {
		r.printTraceLine(fmt.Sprintf("[trace] Effects: %d", len(st.Effects)))
		for _, e := range st.Effects {
			r.printTraceLine(fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(st.Events) > 0 {
		r.printTraceLine(fmt.Sprintf("[trace] Events: %d", len(st.Events)))
		for _, e := range st.Events {
			r.printTraceLine(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
}

func (r *Runner) printLine(text string) {
	fmt.Fprintln(r.Out, text)
}

func (r *Runner) print(text string) {
	fmt.Fprint(r.Out, text)
}

func (r *Runner) printSystem(text string) {
	r.printLine(r.paint(styleSystem, "["+text+"]"))
}

func (r *Runner) printTraceLine(text string) {
	r.printLine(r.paint(styleTrace, text))
}

func (r *Runner) printError(err error) {
	code := errs.CodeOf(err)
	if code == "" {
		code = "ERROR"
	}
	r.printLine(r.paint(styleFailure, fmt.Sprintf("[%s: %v]", code, err)))
}
