// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/rocketlaunchr/dataframe-go"

	"github.com/ezrec/vurec/asm"
	"github.com/ezrec/vurec/block"
	"github.com/ezrec/vurec/config"
	"github.com/ezrec/vurec/internal"
	"github.com/ezrec/vurec/kick"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/vu"
)

var _emulator_defines = map[string]string{
	"UNITS": fmt.Sprintf("%v", memory.UNITS),
	"VU0":   "0",
	"VU1":   "1",
}

// Emulator state. Both vector units, their recompilers and the XGKICK
// consumer, sharing one arena.
type Emulator struct {
	Verbose bool          // If set, enables verbose logging.
	Config  config.Config // Settings the recompilers were built with.

	Arena      *memory.Arena
	Vif        [memory.UNITS]vu.VifRegs
	Unit       [memory.UNITS]*vu.Unit
	Recompiler [memory.UNITS]*block.Recompiler
	Exec       [memory.UNITS]vu.Executor // Active dispatch record of each unit.
	Program    [memory.UNITS]*asm.Program

	Kick     *kick.Queue
	consumer *kick.Consumer
}

// NewEmulator allocates the arena and builds both units. Packets kicked by
// unit 1 are passed to handler on the consumer goroutine; a nil handler
// discards them.
func NewEmulator(cfg config.Config, handler kick.Handler) (emu *Emulator, err error) {
	emu = &Emulator{
		Verbose: cfg.Verbose,
		Config:  cfg,
	}

	emu.Arena, err = memory.Allocate()
	if err != nil {
		return nil, err
	}

	emu.Kick, err = kick.NewQueue(cfg.KickQueueDepth)
	if err != nil {
		return nil, errors.Join(err, emu.Arena.Shutdown())
	}

	opts := cfg.Options(emu.Kick)
	for n := range memory.UNITS {
		emu.Unit[n] = vu.NewUnit(emu.Arena, n, &emu.Vif[n])

		var r *block.Recompiler
		r, err = block.New(emu.Unit[n], opts)
		if err != nil {
			emu.Kick.Close()
			return nil, errors.Join(err, emu.shutdown())
		}
		emu.Recompiler[n] = r
		emu.Exec[n] = r
	}

	emu.consumer = kick.NewConsumer(emu.Kick, handler)
	emu.consumer.Verbose = cfg.Verbose
	emu.consumer.Start()

	if emu.Verbose {
		log.Printf("emulator: %v", cfg)
	}

	err = emu.Reset()
	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		memory.Defines(),
	)
}

func (emu *Emulator) unit(n int) (err error) {
	if emu.Arena == nil {
		return ErrClosed
	}
	if n < 0 || n >= memory.UNITS {
		return ErrUnit
	}
	return
}

// Reset zero-fills both units and discards every compiled block.
func (emu *Emulator) Reset() (err error) {
	if err = emu.unit(0); err != nil {
		return
	}

	emu.Kick.Sync()
	for n, u := range emu.Unit {
		u.Reset()
		emu.Vif[n] = vu.VifRegs{}
		err = errors.Join(err, emu.Exec[n].Reset())
	}
	return
}

// Load copies an assembled program into a unit's micro memory and
// invalidates what it overwrote. A program loaded at 0 provides the line
// numbers of runtime errors.
func (emu *Emulator) Load(n int, prog *asm.Program, addr uint32) (err error) {
	if err = emu.unit(n); err != nil {
		return
	}

	prog.Load(emu.Unit[n], addr)
	emu.Exec[n].Clear(addr, prog.Size())
	if addr == 0 {
		emu.Program[n] = prog
	}
	return
}

// WriteMicro copies raw pairs into a unit's micro memory and invalidates
// what it overwrote.
func (emu *Emulator) WriteMicro(n int, addr uint32, pairs []uint64) (err error) {
	if err = emu.unit(n); err != nil {
		return
	}

	emu.Unit[n].WriteMicro(addr, pairs)
	emu.Exec[n].Clear(addr, uint32(len(pairs)*memory.PAIR_SIZE))
	return
}

// LineNo returns the source line of a unit's program counter, or 0.
func (emu *Emulator) LineNo(n int) int {
	prog := emu.Program[n]
	if prog == nil {
		return 0
	}
	line := prog.Debug(emu.Unit[n].TPC())
	if line == nil {
		return 0
	}
	return line.LineNo
}

// Run starts a unit at pc. It returns done once the program ends; when a
// cycle budget is configured it may return early, and Continue resumes.
func (emu *Emulator) Run(n int, pc uint32) (done bool, err error) {
	if err = emu.unit(n); err != nil {
		return
	}

	emu.Unit[n].SetTPC(pc)
	emu.Unit[n].EndPending = false
	return emu.Continue(n)
}

// Continue runs a unit from its program counter.
func (emu *Emulator) Continue(n int) (done bool, err error) {
	if err = emu.unit(n); err != nil {
		return
	}

	u := emu.Unit[n]
	err = emu.Exec[n].Execute()
	if err != nil {
		err = &ErrRuntime{Unit: n, PC: u.TPC(), LineNo: emu.LineNo(n), Err: err}
		return
	}

	done = !emu.Recompiler[n].Running()
	if emu.Verbose {
		log.Printf("vu%d: stopped at 0x%04x, cycle %d, done %v", n, u.TPC(), u.Cycle, done)
	}
	return
}

// Sync waits until the consumer has processed every kicked packet.
func (emu *Emulator) Sync() {
	emu.Kick.Sync()
}

// Freeze flushes both units' pipelines and the kick queue, and writes a
// save-state frame.
func (emu *Emulator) Freeze(w io.Writer, tag string) (err error) {
	if err = emu.unit(0); err != nil {
		return
	}

	for _, u := range emu.Unit {
		u.FlushAll()
	}
	emu.Kick.Sync()

	return emu.Arena.Freeze(w, tag)
}

// Thaw reads a save-state frame. Every compiled block is discarded, as
// micro memory has been replaced.
func (emu *Emulator) Thaw(r io.Reader, tag string) (err error) {
	if err = emu.unit(0); err != nil {
		return
	}

	err = emu.Arena.Thaw(r, tag)
	if err != nil {
		return
	}

	for n, u := range emu.Unit {
		u.EndPending = false
		err = errors.Join(err, emu.Exec[n].Reset())
	}
	return
}

// Stats returns the block cache table of a unit.
func (emu *Emulator) Stats(n int) (frame *dataframe.DataFrame, err error) {
	if err = emu.unit(n); err != nil {
		return
	}
	frame = emu.Recompiler[n].Cache().Stats()
	return
}

// Listing returns the native code of the block at pc on a unit.
func (emu *Emulator) Listing(n int, pc uint32) (text string, err error) {
	if err = emu.unit(n); err != nil {
		return
	}
	return emu.Recompiler[n].Listing(pc)
}

func (emu *Emulator) shutdown() (err error) {
	for n, exec := range emu.Exec {
		if exec != nil {
			err = errors.Join(err, exec.Shutdown())
			emu.Exec[n] = nil
		}
	}
	if emu.Arena != nil {
		err = errors.Join(err, emu.Arena.Shutdown())
		emu.Arena = nil
	}
	return
}

// Close stops the consumer, after it drains the queue, and releases every
// resource.
func (emu *Emulator) Close() (err error) {
	if emu.Arena == nil {
		return
	}

	emu.Kick.Close()
	emu.consumer.Wait()

	return emu.shutdown()
}
