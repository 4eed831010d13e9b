// Dicecore runs dice-pool resolution scenarios from a script or stdin.
// Usage: dicecore [--version] [--plain] [--trace] [--verbose] [--seed <n>]
//
//	[--rules <dir>] [--journal <file>] [--session <id>] [--script <file>]
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/nathoo/dicecore/cli"
	"github.com/nathoo/dicecore/config"
	"github.com/nathoo/dicecore/engine"
	"github.com/nathoo/dicecore/journal"
	"github.com/nathoo/dicecore/loader"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: dicecore [--version] [--plain] [--trace] [--verbose] [--seed <n>] [--rules <dir>] [--journal <file>] [--session <id>] [--script <file>]\n"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadRunner()
	if err != nil {
		return err
	}
	trace := false
	var scriptFile string

	value := func(i *int, flag string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value\n%s", flag, usage)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("dicecore %s (commit %s, built %s)\n", version, commit, date)
			return nil
		case "--plain":
			cfg.Plain = true
		case "--trace":
			trace = true
		case "--verbose":
			cfg.Verbose = true
		case "--seed":
			s, err := value(&i, "--seed")
			if err != nil {
				return err
			}
			if cfg.Seed, err = strconv.ParseInt(s, 10, 64); err != nil {
				return fmt.Errorf("--seed: %w", err)
			}
		case "--rules":
			if cfg.RulesDir, err = value(&i, "--rules"); err != nil {
				return err
			}
		case "--journal":
			if cfg.JournalPath, err = value(&i, "--journal"); err != nil {
				return err
			}
		case "--session":
			if cfg.Session, err = value(&i, "--session"); err != nil {
				return err
			}
		case "--script":
			if scriptFile, err = value(&i, "--script"); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown argument %q\n%s", args[i], usage)
		}
	}

	logger := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		logger = log.New(os.Stderr, "dicecore: ", log.LstdFlags)
	}
	opts := []engine.Option{engine.WithLogger(logger)}

	if cfg.RulesDir != "" {
		rs, err := loader.Load(cfg.RulesDir)
		if err != nil {
			return fmt.Errorf("loading rules: %w", err)
		}
		opts = append(opts, engine.WithRuleset(rs))
	}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Seed))
	}
	if cfg.Session != "" {
		opts = append(opts, engine.WithSession(cfg.Session))
	}

	var store *journal.Store
	if cfg.JournalPath != "" {
		store, err = journal.Open(ctx, cfg.JournalPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, engine.WithRecorder(store))
	}

	eng, err := engine.New(opts...)
	if err != nil {
		return err
	}

	// Resuming a journaled session continues its RNG stream.
	if store != nil && cfg.Session != "" {
		last, ok, err := store.Last(ctx, cfg.Session)
		if err != nil {
			return err
		}
		if ok {
			eng.Resume(last)
			logger.Printf("resumed session %s at seq %d", last.Session, last.Seq)
		}
	}

	r := cli.New(eng)
	r.Trace = trace
	r.Plain = cfg.Plain || !isTerminal()

	// Script mode: open file, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		r.In = f
		r.EchoInput = true
	}

	fmt.Fprintf(r.Out, "dicecore %s, ruleset %s, seed %d, session %s\n\n",
		version, eng.Ruleset.Name, eng.RNG.Seed(), eng.Session)
	return r.Run(ctx)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
