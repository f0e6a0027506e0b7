package vu

// FMAC flag results become visible after this many cycles.
const FMAC_LATENCY = 3

// FMAC_PIPES is the number of FMAC results in flight.
const FMAC_PIPES = 8

type fmacEntry struct {
	enable bool
	start  uint64
	reg    VF
	mask   Mask
	mac    uint32
	status uint32
	clip   uint32
	clipW  bool // The instruction judged clip flags.
}

type scalarEntry struct {
	enable bool
	start  uint64
	cycles uint64
	value  uint32
	status uint32
}

type pipelines struct {
	fmac [FMAC_PIPES]fmacEntry
	fdiv scalarEntry
	efu  scalarEntry
}

func (u *Unit) commitFMAC(entry *fmacEntry) {
	entry.enable = false
	u.SetCtrl(MAC, entry.mac)
	u.SetCtrl(STATUS, entry.status)
	if entry.clipW {
		u.SetCtrl(CLIP_P, u.Ctrl(CLIP))
	}
	u.SetCtrl(CLIP, entry.clip)
}

func (u *Unit) commitFDIV() {
	u.pipes.fdiv.enable = false
	u.SetCtrl(Q, u.pipes.fdiv.value)
	u.SetCtrl(STATUS, u.pipes.fdiv.status)
}

func (u *Unit) commitEFU() {
	u.pipes.efu.enable = false
	u.SetCtrl(P, u.pipes.efu.value)
}

// TestPipes commits every result whose latency has elapsed.
func (u *Unit) TestPipes() {
	for n := range u.pipes.fmac {
		entry := &u.pipes.fmac[n]
		if entry.enable && u.Cycle-entry.start >= FMAC_LATENCY {
			u.commitFMAC(entry)
		}
	}

	if fdiv := &u.pipes.fdiv; fdiv.enable && u.Cycle-fdiv.start >= fdiv.cycles {
		u.commitFDIV()
	}

	if efu := &u.pipes.efu; efu.enable && u.Cycle-efu.start >= efu.cycles {
		u.commitEFU()
	}
}

// StallFMAC waits for an in-flight FMAC result writing the register lanes,
// then commits its flags.
func (u *Unit) StallFMAC(ref VFRef) {
	if ref.Reg == 0 || ref.Mask == 0 {
		return
	}

	for n := range u.pipes.fmac {
		entry := &u.pipes.fmac[n]
		if !entry.enable || entry.reg != ref.Reg || entry.mask&ref.Mask == 0 {
			continue
		}

		elapsed := u.Cycle - entry.start
		if elapsed < FMAC_LATENCY {
			u.Cycle += FMAC_LATENCY - elapsed
		}
		u.commitFMAC(entry)
		u.TestPipes()
		return
	}
}

// AddFMAC records the issue-side flags of an upper instruction. clip is set
// for instructions that judge clip flags.
func (u *Unit) AddFMAC(ref VFRef, clip bool) {
	for n := range u.pipes.fmac {
		entry := &u.pipes.fmac[n]
		if entry.enable {
			continue
		}
		*entry = fmacEntry{
			enable: true,
			start:  u.Cycle,
			reg:    ref.Reg,
			mask:   ref.Mask,
			mac:    u.MacLive,
			status: u.StatusLive,
			clip:   u.ClipLive,
			clipW:  clip,
		}
		return
	}

	// All pipes busy: retire the oldest to make room.
	oldest := 0
	for n := range u.pipes.fmac {
		if u.pipes.fmac[n].start < u.pipes.fmac[oldest].start {
			oldest = n
		}
	}
	u.commitFMAC(&u.pipes.fmac[oldest])
	u.AddFMAC(ref, clip)
}

// FlushFDIV waits for the pending Q result.
func (u *Unit) FlushFDIV() {
	fdiv := &u.pipes.fdiv
	if !fdiv.enable {
		return
	}
	if elapsed := u.Cycle - fdiv.start; elapsed < fdiv.cycles {
		u.Cycle += fdiv.cycles - elapsed
	}
	u.commitFDIV()
}

// FlushEFU waits for the pending P result.
func (u *Unit) FlushEFU() {
	efu := &u.pipes.efu
	if !efu.enable {
		return
	}
	if elapsed := u.Cycle - efu.start; elapsed < efu.cycles {
		u.Cycle += efu.cycles - elapsed
	}
	u.commitEFU()
}

// AddFDIV issues a Q result with the divide unit's status bits.
func (u *Unit) AddFDIV(q uint32, flags uint32, cycles int) {
	u.StatusLive = (u.StatusLive &^ 0x30) | flags | flags<<6
	u.pipes.fdiv = scalarEntry{
		enable: true,
		start:  u.Cycle,
		cycles: uint64(cycles),
		value:  q,
		status: u.StatusLive,
	}
}

// AddEFU issues a P result.
func (u *Unit) AddEFU(p uint32, cycles int) {
	u.pipes.efu = scalarEntry{
		enable: true,
		start:  u.Cycle,
		cycles: uint64(cycles),
		value:  p,
	}
}

// Pending returns true if any result is still in flight.
func (u *Unit) Pending() bool {
	if u.pipes.fdiv.enable || u.pipes.efu.enable {
		return true
	}
	for _, entry := range u.pipes.fmac {
		if entry.enable {
			return true
		}
	}
	return false
}

// FlushAll advances the clock until every result has landed.
func (u *Unit) FlushAll() {
	for u.Pending() {
		u.TestPipes()
		if u.Pending() {
			u.Cycle++
		}
	}
}

// BeginPair runs the issue checks for a pair: results that have landed are
// committed, reads of in-flight FMAC results stall, and a new FDIV or EFU
// instruction waits for its unit.
func (u *Unit) BeginPair(p *Pair) {
	u.TestPipes()

	for _, ref := range p.UpperRW.Read {
		u.StallFMAC(ref)
	}
	if p.Immediate() {
		return
	}
	for _, ref := range p.LowerRW.Read {
		u.StallFMAC(ref)
	}

	switch p.LowerOp.Info().Pipe {
	case PIPE_FDIV:
		u.FlushFDIV()
	case PIPE_EFU:
		u.FlushEFU()
	}
}

// EndPair records the pair's FMAC result and advances one cycle.
func (u *Unit) EndPair(p *Pair) {
	info := p.UpperOp.Info()
	if info.Pipe == PIPE_FMAC && (info.Flags || p.UpperOp == OP_CLIP || p.UpperRW.Write.Reg != 0) {
		u.AddFMAC(p.UpperRW.Write, p.UpperOp == OP_CLIP)
	}
	u.Cycle++
}
