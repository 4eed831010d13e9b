package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/dicecore/engine/ruleset"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	ruleset    *lua.LTable
	thresholds []rawNamed
	traps      []rawNamed
	terminals  []rawNamed
	synergies  []rawNamed
	handlers   []rawHandler
}

// Load reads all .lua files from dir, overlays them onto the built-in
// ruleset, validates the result and returns it. The Lua VM is discarded
// after loading.
func Load(dir string) (*ruleset.Ruleset, error) {
	// Collect rule files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rules directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// ruleset.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Fresh VM per load, no stdlib until openSafeLibs.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	// Ruleset, Thresholds, Trap, Terminal, Synergy, On and the helpers.
	coll := &collector{}
	registerAPI(L, coll)

	// Files share one VM, so later files see globals set by earlier ones.
	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	// Overlay onto the built-in ruleset.
	rs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}

	// Cross-table checks; warnings alone do not fail the load.
	if err := validate(rs); err != nil {
		return nil, err
	}

	return rs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// print, type, pairs, ipairs, tostring, tonumber, ...
	lua.OpenBase(L)
	// table.insert for building trap and terminal lists
	lua.OpenTable(L)
	// string.format for narratives
	lua.OpenString(L)
	// math.floor, math.max for derived DCs
	lua.OpenMath(L)
}

// sandbox removes globals that reach the filesystem, bypass metatables or
// reseed the VM's random source.
func sandbox(L *lua.LState) {
	// Filesystem loaders and metatable bypasses.
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Rolls come from the engine's seeded stream, never from Lua.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
