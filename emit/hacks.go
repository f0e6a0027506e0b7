package emit

import (
	"sort"
	"strings"

	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/vu"
)

// Hack is a compatibility exception: a specific instruction sequence,
// seen in shipped programs, that is compiled differently from the rule.
type Hack uint32

const (
	// An FSSET right after a pair whose upper op is CLIP is dropped.
	HACK_FSSET_AFTER_CLIP = Hack(1 << 0)
	// An FMAND right after a pair whose lower op is an integer op keeps
	// the low four bits of its destination.
	HACK_MAC_PRESERVE_LOW = Hack(1 << 1)
)

var hackName = map[Hack]string{
	HACK_FSSET_AFTER_CLIP: "fsset-after-clip",
	HACK_MAC_PRESERVE_LOW: "mac-preserve-low",
}

var hackTrigger = map[Hack]func(prev *vu.Pair) bool{
	HACK_FSSET_AFTER_CLIP: func(prev *vu.Pair) bool {
		return prev.UpperOp == vu.OP_CLIP
	},
	HACK_MAC_PRESERVE_LOW: func(prev *vu.Pair) bool {
		return !prev.Immediate() && prev.LowerOp.Info().Pipe == vu.PIPE_IALU
	},
}

// Hacks is a set of enabled compatibility exceptions.
type Hacks uint32

// Has returns true if the hack is enabled.
func (hacks Hacks) Has(hack Hack) bool {
	return uint32(hacks)&uint32(hack) != 0
}

// Applies returns true if the hack is enabled and the previous pair of the
// block triggers it.
func (hacks Hacks) Applies(ctx *Context, hack Hack) bool {
	if !hacks.Has(hack) || ctx.prev == nil {
		return false
	}
	return hackTrigger[hack](ctx.prev)
}

func (hacks Hacks) String() string {
	var names []string
	for hack, name := range hackName {
		if hacks.Has(hack) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// ParseHacks parses a comma separated list of hack names.
func ParseHacks(list string) (hacks Hacks, err error) {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for hack, known := range hackName {
			if known == name {
				hacks |= Hacks(hack)
				found = true
			}
		}
		if !found {
			err = &ErrHack{Name: name}
			return
		}
	}
	return
}

// preserveLow keeps the low four bits of an integer register in t.
func (ctx *Context) preserveLow(vi vu.VI, t host.GPR) {
	b := ctx.B
	old := ctx.tempGPR()
	if vi == 0 {
		b.MovRI(old, 0)
	} else {
		b.MovZX16(old, ctx.readVI(vi))
	}
	b.AluRI(host.ALU_AND, old, 0xf)
	b.AluRI(host.ALU_AND, t, 0xfff0)
	b.AluRR(host.ALU_OR, t, old)
}
