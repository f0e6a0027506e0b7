package config

import (
	"log"
	"strings"

	"github.com/xyproto/env/v2"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// setting applies one script global.
type setting func(cfg *Config, value starlark.Value) error

func stringSetting(set func(cfg *Config, text string) error) setting {
	return func(cfg *Config, value starlark.Value) error {
		text, ok := starlark.AsString(value)
		if !ok {
			return ErrType
		}
		return set(cfg, text)
	}
}

func intSetting(set func(cfg *Config, n int) error) setting {
	return func(cfg *Config, value starlark.Value) error {
		n, err := starlark.AsInt32(value)
		if err != nil {
			return ErrType
		}
		return set(cfg, n)
	}
}

func boolSetting(field func(cfg *Config) *bool) setting {
	return func(cfg *Config, value starlark.Value) error {
		b, ok := value.(starlark.Bool)
		if !ok {
			return ErrType
		}
		*field(cfg) = bool(b)
		return nil
	}
}

// Script globals, by name.
var settings = map[string]setting{
	"flags":       stringSetting((*Config).setFlags),
	"clamp":       stringSetting((*Config).setClamp),
	"hacks":       stringSetting((*Config).setHacks),
	"block_pairs": intSetting((*Config).setBlockPairs),
	"cycles":      intSetting((*Config).setCycles),
	"kick_depth":  intSetting((*Config).setKickDepth),
	"ftz":         boolSetting(func(cfg *Config) *bool { return &cfg.FlushDenormals }),
	"portable":    boolSetting(func(cfg *Config) *bool { return &cfg.Portable }),
	"verbose":     boolSetting(func(cfg *Config) *bool { return &cfg.Verbose }),
}

// getenv(name, default="") reads an environment variable.
func getenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, fallback string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &fallback); err != nil {
		return nil, err
	}
	return starlark.String(env.Str(name, fallback)), nil
}

// Script runs a starlark script and applies the settings it assigns.
// If src is nil, the script is read from filename. Functions, and globals
// starting with an underscore, are the script's own.
func (cfg *Config) Script(filename string, src any) (err error) {
	thread := &starlark.Thread{
		Name: "config",
		Print: func(_ *starlark.Thread, msg string) {
			log.Printf("config: %v", msg)
		},
	}
	predeclared := starlark.StringDict{
		"getenv": starlark.NewBuiltin("getenv", getenv),
	}

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, predeclared)
	if err != nil {
		return
	}

	for _, name := range globals.Keys() {
		value := globals[name]
		if strings.HasPrefix(name, "_") {
			continue
		}
		if _, ok := value.(starlark.Callable); ok {
			continue
		}

		set, ok := settings[name]
		if !ok {
			return &ErrSetting{Name: name, Err: ErrName}
		}
		if err = set(cfg, value); err != nil {
			return &ErrSetting{Name: name, Err: err}
		}
	}

	return
}
