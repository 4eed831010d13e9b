package parser

import (
	"reflect"
	"testing"

	"github.com/nathoo/dicecore/errs"
)

func cmd(verb string, pools ...int) Command {
	return Command{
		Verb:  verb,
		Pools: pools,
		Nums:  map[string]int{},
		Opts:  map[string]string{},
		Flags: map[string]bool{},
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  func() Command
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  func() Command { return Command{} },
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  func() Command { return Command{} },
		},

		// Bare verbs
		{
			name:  "turn",
			input: "turn",
			want:  func() Command { return cmd("turn") },
		},
		{
			name:  "status alias",
			input: "st",
			want:  func() Command { return cmd("status") },
		},

		// Rolls and checks
		{
			name:  "roll",
			input: "roll 5",
			want:  func() Command { return cmd("roll", 5) },
		},
		{
			name:  "roll alias and case",
			input: "R 3",
			want:  func() Command { return cmd("roll", 3) },
		},
		{
			name:  "check vs",
			input: "check lockpicking 4 vs 2",
			want: func() Command {
				c := cmd("check", 4)
				c.Name = "lockpicking"
				c.Nums["dc"] = 2
				return c
			},
		},
		{
			name:  "check with actor and advantage",
			input: "check climb 3 dc 1 advantage as bo",
			want: func() Command {
				c := cmd("check", 3)
				c.Name = "climb"
				c.Actor = "bo"
				c.Nums["dc"] = 1
				c.Flags["advantage"] = true
				return c
			},
		},
		{
			name:  "contest",
			input: "contest 4 3",
			want:  func() Command { return cmd("contest", 4, 3) },
		},

		// Movement
		{
			name:  "climb stage",
			input: "climb 5 stage 2/6 dc 3",
			want: func() Command {
				c := cmd("climb", 5)
				c.Nums["stage"], c.Nums["total"], c.Nums["dc"] = 2, 6, 3
				return c
			},
		},
		{
			name:  "jump alias running",
			input: "jump 4 15 depth 20 running",
			want: func() Command {
				c := cmd("leap", 4)
				c.Nums["distance"], c.Nums["depth"] = 15, 20
				c.Flags["running"] = true
				return c
			},
		},
		{
			name:  "balance",
			input: "balance 4 rope_bridge height 30",
			want: func() Command {
				c := cmd("balance", 4)
				c.Name = "rope_bridge"
				c.Nums["height"] = 30
				return c
			},
		},
		{
			name:  "fall featherfall",
			input: "fall 20 pool 5 featherfall",
			want: func() Command {
				c := cmd("fall")
				c.Nums["height"], c.Nums["pool"] = 20, 5
				c.Flags["featherfall"] = true
				return c
			},
		},

		// Infiltration
		{
			name:  "party stealth",
			input: "sneak 5 2 3 surface noisy",
			want: func() Command {
				c := cmd("stealth", 5, 2, 3)
				c.Opts["surface"] = "noisy"
				return c
			},
		},
		{
			name:  "trap place",
			input: "trap place tripwire",
			want: func() Command {
				c := cmd("trap")
				c.Sub, c.Name = "place", "tripwire"
				return c
			},
		},
		{
			name:  "trap disarm with handle and tool",
			input: "trap disarm #2 4 tool masterwork",
			want: func() Command {
				c := cmd("trap", 4)
				c.Sub = "disarm"
				c.Nums["handle"] = 2
				c.Opts["tool"] = "masterwork"
				return c
			},
		},
		{
			name:  "trap clear",
			input: "trap clear #3",
			want: func() Command {
				c := cmd("trap")
				c.Sub = "clear"
				c.Nums["handle"] = 3
				return c
			},
		},
		{
			name:  "hack alias with will",
			input: "hack jotun_archive 6 will 3",
			want: func() Command {
				c := cmd("ice", 6)
				c.Name = "jotun_archive"
				c.Nums["will"] = 3
				return c
			},
		},
		{
			name:  "analyze alias for probe",
			input: "analyze military_server 4",
			want: func() Command {
				c := cmd("probe", 4)
				c.Name = "military_server"
				return c
			},
		},

		// Social and exploration
		{
			name:  "persuade",
			input: "persuade 4 major disposition hostile evidence",
			want: func() Command {
				c := cmd("persuade", 4)
				c.Name = "major"
				c.Opts["disposition"] = "hostile"
				c.Flags["evidence"] = true
				return c
			},
		},
		{
			name:  "scout",
			input: "scout 3 dense_ruins visibility poor kit",
			want: func() Command {
				c := cmd("scout", 3)
				c.Name = "dense_ruins"
				c.Opts["visibility"] = "poor"
				c.Flags["kit"] = true
				return c
			},
		},
		{
			name:  "synergy",
			input: "synergy track_to_lair 5 4",
			want: func() Command {
				c := cmd("synergy", 5, 4)
				c.Name = "track_to_lair"
				return c
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if want := tt.want(); !reflect.DeepEqual(got, want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	inputs := []string{
		"dance 3",
		"roll",
		"roll five",
		"roll 3 4",
		"check climb",
		"contest 4",
		"climb 3 stage 2",
		"climb 3 stage two/6",
		"stealth",
		"trap",
		"trap smash 1 3",
		"trap detect first 3",
		"ice 4",
		"fall 20 pool",
		"turn now",
	}
	for _, in := range inputs {
		if _, err := Parse(in); !errs.IsInvalid(err) {
			t.Errorf("Parse(%q) err = %v, want invalid input", in, err)
		}
	}
}

func TestCommand_Defaults(t *testing.T) {
	c, err := Parse("leap 4 10")
	if err != nil {
		t.Fatal(err)
	}
	if c.Num("depth", 7) != 7 || c.Num("distance", 0) != 10 {
		t.Errorf("nums = %v", c.Nums)
	}
	if c.Opt("surface", "normal") != "normal" || c.Flag("running") {
		t.Errorf("opts = %v flags = %v", c.Opts, c.Flags)
	}
}
