// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config resolves the recompiler settings once at start-up, from
// defaults, the environment and an optional starlark script, in that
// order.
package config

import (
	"fmt"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/ezrec/vurec/block"
	"github.com/ezrec/vurec/emit"
	"github.com/ezrec/vurec/flags"
	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/kick"
)

// Environment variables.
const (
	ENV_FLAGS       = "VUREC_FLAGS"       // full, reduced or none
	ENV_CLAMP       = "VUREC_CLAMP"       // none, normal or sign
	ENV_FTZ         = "VUREC_FTZ"         // flush denormal results to zero
	ENV_BLOCK_PAIRS = "VUREC_BLOCK_PAIRS" // pairs per block without a branch
	ENV_CYCLES      = "VUREC_CYCLES"      // cycles per Execute, 0 for unlimited
	ENV_KICK_DEPTH  = "VUREC_KICK_DEPTH"  // XGKICK packets in flight
	ENV_HACKS       = "VUREC_HACKS"       // comma separated compatibility exceptions
	ENV_PORTABLE    = "VUREC_PORTABLE"    // baseline SSE2 code only
	ENV_VERBOSE     = "VUREC_VERBOSE"     // log compilation and dispatch
)

// Config holds every global setting of the recompiler.
type Config struct {
	FlagMode       flags.Mode
	Clamp          fpu.ClampMode
	FlushDenormals bool
	MaxBlockPairs  int
	CycleBudget    uint64
	KickQueueDepth int
	Hacks          emit.Hacks
	Portable       bool
	Verbose        bool
}

// Default returns the default settings.
func Default() Config {
	return Config{
		FlagMode:       flags.MODE_FULL,
		Clamp:          fpu.CLAMP_NORMAL,
		MaxBlockPairs:  block.DEFAULT_MAX_BLOCK_PAIRS,
		KickQueueDepth: kick.DEFAULT_DEPTH,
	}
}

// Load resolves the settings from the defaults, the environment and, if
// script is not empty, the starlark script file it names.
func Load(script string) (cfg Config, err error) {
	cfg = Default()
	err = cfg.Env()
	if err != nil {
		return
	}
	if script != "" {
		err = cfg.Script(script, nil)
	}
	return
}

func parseClamp(name string) (mode fpu.ClampMode, err error) {
	for _, mode = range []fpu.ClampMode{fpu.CLAMP_NONE, fpu.CLAMP_NORMAL, fpu.CLAMP_SIGN} {
		if mode.String() == name {
			return
		}
	}
	err = fmt.Errorf("%w: %q", ErrRange, name)
	return
}

func (cfg *Config) setFlags(name string) (err error) {
	cfg.FlagMode, err = flags.ParseMode(strings.TrimSpace(name))
	return
}

func (cfg *Config) setClamp(name string) (err error) {
	cfg.Clamp, err = parseClamp(strings.TrimSpace(name))
	return
}

func (cfg *Config) setHacks(list string) (err error) {
	cfg.Hacks, err = emit.ParseHacks(list)
	return
}

func (cfg *Config) setBlockPairs(pairs int) (err error) {
	if pairs < 1 {
		return ErrRange
	}
	cfg.MaxBlockPairs = pairs
	return
}

func (cfg *Config) setCycles(cycles int) (err error) {
	if cycles < 0 {
		return ErrRange
	}
	cfg.CycleBudget = uint64(cycles)
	return
}

func (cfg *Config) setKickDepth(depth int) (err error) {
	if depth < 1 {
		return ErrRange
	}
	cfg.KickQueueDepth = depth
	return
}

// Env applies the environment variables that are set.
func (cfg *Config) Env() (err error) {
	strs := []struct {
		name string
		set  func(string) error
	}{
		{ENV_FLAGS, cfg.setFlags},
		{ENV_CLAMP, cfg.setClamp},
		{ENV_HACKS, cfg.setHacks},
	}
	for _, entry := range strs {
		if !env.Has(entry.name) {
			continue
		}
		if err = entry.set(env.Str(entry.name)); err != nil {
			return &ErrSetting{Name: entry.name, Err: err}
		}
	}

	ints := []struct {
		name  string
		value int
		set   func(int) error
	}{
		{ENV_BLOCK_PAIRS, cfg.MaxBlockPairs, cfg.setBlockPairs},
		{ENV_CYCLES, int(cfg.CycleBudget), cfg.setCycles},
		{ENV_KICK_DEPTH, cfg.KickQueueDepth, cfg.setKickDepth},
	}
	for _, entry := range ints {
		if !env.Has(entry.name) {
			continue
		}
		if err = entry.set(env.Int(entry.name, entry.value)); err != nil {
			return &ErrSetting{Name: entry.name, Err: err}
		}
	}

	bools := []struct {
		name  string
		value *bool
	}{
		{ENV_FTZ, &cfg.FlushDenormals},
		{ENV_PORTABLE, &cfg.Portable},
		{ENV_VERBOSE, &cfg.Verbose},
	}
	for _, entry := range bools {
		if env.Has(entry.name) {
			*entry.value = env.Bool(entry.name)
		}
	}

	return
}

// Engine returns the flag and clamping engine settings.
func (cfg Config) Engine() flags.Engine {
	return flags.Engine{
		Mode:           cfg.FlagMode,
		Clamp:          cfg.Clamp,
		FlushDenormals: cfg.FlushDenormals,
	}
}

// Caps returns the host capabilities code is generated for.
func (cfg Config) Caps() host.Capabilities {
	return host.Resolve(cfg.Portable)
}

// Options returns the recompiler options.
func (cfg Config) Options(kicker emit.Kicker) block.Options {
	return block.Options{
		Caps:          cfg.Caps(),
		Engine:        cfg.Engine(),
		Hacks:         cfg.Hacks,
		MaxBlockPairs: cfg.MaxBlockPairs,
		CycleBudget:   cfg.CycleBudget,
		Kicker:        kicker,
		Verbose:       cfg.Verbose,
	}
}

func (cfg Config) String() string {
	return fmt.Sprintf("flags=%v clamp=%v ftz=%v block_pairs=%v cycles=%v kick_depth=%v hacks=%q portable=%v (%v)",
		cfg.FlagMode, cfg.Clamp, cfg.FlushDenormals, cfg.MaxBlockPairs, cfg.CycleBudget,
		cfg.KickQueueDepth, cfg.Hacks.String(), cfg.Portable, cfg.Caps())
}
