// Package flags computes the MAC, status and clip flags of FMAC results,
// and saturates results beyond the finite range.
package flags

import (
	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/vu"
)

// Mode is how much of the flag state is maintained.
type Mode int

const (
	MODE_FULL    = Mode(0) // full
	MODE_REDUCED = Mode(1) // reduced
	MODE_NONE    = Mode(2) // none
)

var modeName = map[Mode]string{
	MODE_FULL:    "full",
	MODE_REDUCED: "reduced",
	MODE_NONE:    "none",
}

func (mode Mode) String() string {
	return modeName[mode]
}

// ParseMode returns the mode with the given name.
func ParseMode(name string) (mode Mode, err error) {
	for mode, text := range modeName {
		if text == name {
			return mode, nil
		}
	}
	err = &ErrMode{Name: name}
	return
}

// MAC flag groups. Within each group lane x is the highest bit.
const (
	MAC_ZERO      = uint32(0x000f) // zero
	MAC_SIGN      = uint32(0x00f0) // sign
	MAC_UNDERFLOW = uint32(0x0f00) // underflow
	MAC_OVERFLOW  = uint32(0xf000) // overflow
)

// Status flag bits. The sticky copies are the same bits shifted by
// STATUS_STICKY.
const (
	STATUS_Z      = uint32(0x001) // zero
	STATUS_S      = uint32(0x002) // sign
	STATUS_U      = uint32(0x004) // underflow
	STATUS_O      = uint32(0x008) // overflow
	STATUS_I      = uint32(0x010) // invalid
	STATUS_D      = uint32(0x020) // divide by zero
	STATUS_STICKY = 6
	STATUS_MASK   = uint32(0xfff)
)

// CLIP_MASK covers the four most recent clip judgements.
const CLIP_MASK = uint32(0xffffff)

// macBit places a flag for a lane within its group.
func macBit(group uint32, lane int) uint32 {
	return group & (0x1111 << (3 - lane))
}

// Engine is the flag and clamp configuration of a recompiler.
type Engine struct {
	Mode           Mode
	Clamp          fpu.ClampMode
	FlushDenormals bool
}

// Update finalises the written lanes of a result, returning the lanes and
// the MAC flags. Lanes outside dest are returned unchanged and have no
// flags.
func (e Engine) Update(q [4]uint32, dest vu.Mask) (out [4]uint32, mac uint32) {
	out = q
	for lane := range dest.Lanes() {
		v := q[lane]
		if e.Mode == MODE_FULL {
			if fpu.IsOverflow(v) {
				mac |= macBit(MAC_OVERFLOW, lane)
			}
			if fpu.IsDenormal(v) {
				mac |= macBit(MAC_UNDERFLOW, lane)
			}
		}
		if e.FlushDenormals {
			v = fpu.Flush(v)
		}
		v = fpu.Clamp(e.Clamp, v)
		if fpu.IsZero(v) {
			mac |= macBit(MAC_ZERO, lane)
		} else if v&fpu.SIGN != 0 {
			mac |= macBit(MAC_SIGN, lane)
		}
		out[lane] = v
	}
	return
}

// StatusFromMAC folds MAC flags into the status word, setting the sticky
// copies and keeping the divide unit's bits.
func StatusFromMAC(status, mac uint32) uint32 {
	var now uint32
	for n, group := range []uint32{MAC_ZERO, MAC_SIGN, MAC_UNDERFLOW, MAC_OVERFLOW} {
		if mac&group != 0 {
			now |= 1 << n
		}
	}
	return (status & (STATUS_MASK &^ 0xf)) | now | now<<STATUS_STICKY
}

// PackClip shifts a new judgement of fs against ±|w| into the clip flags.
func PackClip(clip uint32, fs [4]uint32, w uint32) uint32 {
	limit := fpu.Float(w)
	if limit < 0 {
		limit = -limit
	}

	var judge uint32
	for lane := range 3 {
		x := fpu.Float(fs[lane])
		if x > limit {
			judge |= 1 << (2 * lane)
		}
		if x < -limit {
			judge |= 2 << (2 * lane)
		}
	}
	return (clip<<6 | judge) & CLIP_MASK
}
