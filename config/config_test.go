package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vurec/emit"
	"github.com/ezrec/vurec/flags"
	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/kick"
)

func TestDefault(t *testing.T) {
	assert := assert.New(t)

	cfg := Default()
	assert.Equal(flags.MODE_FULL, cfg.FlagMode)
	assert.Equal(fpu.CLAMP_NORMAL, cfg.Clamp)
	assert.Equal(kick.DEFAULT_DEPTH, cfg.KickQueueDepth)
	assert.Zero(cfg.CycleBudget)
	assert.Zero(cfg.Hacks)

	engine := cfg.Engine()
	assert.Equal(flags.Engine{Mode: flags.MODE_FULL, Clamp: fpu.CLAMP_NORMAL}, engine)

	cfg.Portable = true
	assert.Equal(host.BASELINE, cfg.Caps())

	opts := cfg.Options(nil)
	assert.Equal(host.BASELINE, opts.Caps)
	assert.Equal(cfg.MaxBlockPairs, opts.MaxBlockPairs)
}

func TestEnv(t *testing.T) {
	assert := assert.New(t)

	t.Setenv(ENV_FLAGS, "reduced")
	t.Setenv(ENV_CLAMP, "sign")
	t.Setenv(ENV_FTZ, "1")
	t.Setenv(ENV_BLOCK_PAIRS, "16")
	t.Setenv(ENV_CYCLES, "5000")
	t.Setenv(ENV_KICK_DEPTH, "2")
	t.Setenv(ENV_HACKS, "fsset-after-clip, mac-preserve-low")
	t.Setenv(ENV_PORTABLE, "true")

	cfg, err := Load("")
	assert.NoError(err)
	assert.Equal(flags.MODE_REDUCED, cfg.FlagMode)
	assert.Equal(fpu.CLAMP_SIGN, cfg.Clamp)
	assert.True(cfg.FlushDenormals)
	assert.Equal(16, cfg.MaxBlockPairs)
	assert.Equal(uint64(5000), cfg.CycleBudget)
	assert.Equal(2, cfg.KickQueueDepth)
	assert.True(cfg.Hacks.Has(emit.HACK_FSSET_AFTER_CLIP))
	assert.True(cfg.Hacks.Has(emit.HACK_MAC_PRESERVE_LOW))
	assert.True(cfg.Portable)
	assert.False(cfg.Verbose)
}

func TestEnvErrors(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		name  string
		value string
	}{
		{ENV_FLAGS, "most"},
		{ENV_CLAMP, "tight"},
		{ENV_HACKS, "go-faster"},
		{ENV_BLOCK_PAIRS, "0"},
		{ENV_KICK_DEPTH, "-1"},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			t.Setenv(entry.name, entry.value)

			_, err := Load("")
			var setting *ErrSetting
			if assert.ErrorAs(err, &setting) {
				assert.Equal(entry.name, setting.Name)
			}
		})
	}
}

func TestScript(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("VUREC_TEST_DEPTH", "6")

	cfg := Default()
	err := cfg.Script("test.star", `
def _double(n):
    return n * 2

flags = "none"
clamp = "none"
ftz = True
block_pairs = _double(8)
cycles = 1 << 20
kick_depth = int(getenv("VUREC_TEST_DEPTH", "1"))
hacks = ",".join(["mac-preserve-low"])
verbose = True
`)
	assert.NoError(err)
	assert.Equal(flags.MODE_NONE, cfg.FlagMode)
	assert.Equal(fpu.CLAMP_NONE, cfg.Clamp)
	assert.True(cfg.FlushDenormals)
	assert.Equal(16, cfg.MaxBlockPairs)
	assert.Equal(uint64(1<<20), cfg.CycleBudget)
	assert.Equal(6, cfg.KickQueueDepth)
	assert.Equal(emit.Hacks(emit.HACK_MAC_PRESERVE_LOW), cfg.Hacks)
	assert.True(cfg.Verbose)
}

func TestScriptErrors(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		src string
		err error
	}{
		{`speed = 11`, ErrName},
		{`flags = 1`, ErrType},
		{`ftz = "yes"`, ErrType},
		{`block_pairs = "many"`, ErrType},
		{`cycles = -1`, ErrRange},
		{`block_pairs = 0`, ErrRange},
	}

	for _, entry := range table {
		cfg := Default()
		err := cfg.Script("test.star", entry.src)
		assert.ErrorIs(err, entry.err, entry.src)
	}

	cfg := Default()
	assert.Error(cfg.Script("test.star", `flags = `))
}

func TestLoadFile(t *testing.T) {
	assert := assert.New(t)

	name := filepath.Join(t.TempDir(), "vurec.star")
	assert.NoError(os.WriteFile(name, []byte("cycles = 1000\n"), 0o644))

	t.Setenv(ENV_CYCLES, "10")
	cfg, err := Load(name)
	assert.NoError(err)
	assert.Equal(uint64(1000), cfg.CycleBudget)

	_, err = Load(filepath.Join(t.TempDir(), "missing.star"))
	assert.Error(err)
}
