// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/ezrec/vurec/asm"
	"github.com/ezrec/vurec/config"
	"github.com/ezrec/vurec/emulator"
	"github.com/ezrec/vurec/kick"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/translate"
	"github.com/ezrec/vurec/vu"
)

// FREEZE_TAG identifies save states written by this tool.
const FREEZE_TAG = "vurec"

func printRegs(u *vu.Unit) {
	fmt.Printf("tpc  0x%04x  cycle %d\n", u.TPC(), u.Cycle)
	for r := range memory.VI_COUNT {
		fmt.Printf("vi%-2d 0x%04x\n", r, u.VI(vu.VI(r)))
	}
	for r := range memory.VF_COUNT {
		q := u.VF(vu.VF(r))
		fmt.Printf("vf%-2d %08x %08x %08x %08x  (%g %g %g %g)\n", r, q[0], q[1], q[2], q[3],
			math.Float32frombits(q[0]), math.Float32frombits(q[1]),
			math.Float32frombits(q[2]), math.Float32frombits(q[3]))
	}
	acc := u.ACC()
	fmt.Printf("acc  %08x %08x %08x %08x\n", acc[0], acc[1], acc[2], acc[3])
}

func main() {
	var compile string
	var script string
	var unit int
	var pc uint
	var freeze string
	var thaw string
	var stats bool
	var listing bool
	var dump bool
	var regs bool
	var lang string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".vsm microprogram to assemble and load")
	flag.StringVar(&script, "config", "", "Starlark configuration script")
	flag.IntVar(&unit, "u", 1, "Vector unit to run")
	flag.UintVar(&pc, "pc", 0, "Start address")
	flag.StringVar(&freeze, "freeze", "", "Save state to write after the run")
	flag.StringVar(&thaw, "thaw", "", "Save state to restore before the run")
	flag.BoolVar(&stats, "stats", false, "Print block cache statistics")
	flag.BoolVar(&listing, "listing", false, "Print the native code of the start block")
	flag.BoolVar(&regs, "regs", false, "Print the unit's registers after the run")
	flag.BoolVar(&dump, "d", false, "Print the assembled listing, do not execute")
	flag.StringVar(&lang, "lang", "", "Message language")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		err := translate.Use(lang)
		if err != nil {
			log.Fatalf("%v: %v", lang, err)
		}
	}

	cfg, err := config.Load(script)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
	cfg.Verbose = cfg.Verbose || verbose

	handler := func(p kick.Packet) {
		fmt.Printf("xgkick 0x%03x: %d qwords\n", p.Qword, p.Qwords())
	}

	emu, err := emulator.NewEmulator(cfg, handler)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
	defer emu.Close()

	if len(thaw) != 0 {
		inf, err := os.Open(thaw)
		if err != nil {
			log.Fatalf("%v: %v", thaw, err)
		}
		err = emu.Thaw(inf, FREEZE_TAG)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", thaw, err)
		}
	}

	// Assemble a new microprogram.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		assembler := &asm.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			assembler.Predefine(key, value)
		}
		prog, err := assembler.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if dump {
			text, err := prog.Listing()
			if err != nil {
				log.Fatalf("%v: %v", compile, err)
			}
			fmt.Print(text)
			return
		}

		err = emu.Load(unit, prog, 0)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	done, err := emu.Run(unit, uint32(pc))
	for err == nil && !done {
		done, err = emu.Continue(unit)
	}
	if err != nil {
		log.Fatal(err)
	}
	emu.Sync()

	if regs {
		printRegs(emu.Unit[unit])
	}

	if listing {
		text, err := emu.Listing(unit, uint32(pc))
		if err != nil {
			log.Fatalf("0x%04x: %v", pc, err)
		}
		fmt.Print(text)
	}

	if stats {
		frame, err := emu.Stats(unit)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(frame.Table())
	}

	if len(freeze) != 0 {
		ouf, err := os.Create(freeze)
		if err != nil {
			log.Fatalf("%v: %v", freeze, err)
		}
		defer ouf.Close()

		err = emu.Freeze(ouf, FREEZE_TAG)
		if err != nil {
			log.Fatalf("%v: %v", freeze, err)
		}
	}
}
