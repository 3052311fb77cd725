package emu

// numRegisters is the per-thread register count: 256 registers, each
// holding a raw int32 bit pattern reinterpreted by IU or FPU semantics.
const numRegisters = 256

// RegFile holds the per-thread register state for an entire warp: a
// single contiguous block of warp_width * 256 int32 slots, indexed as
// regs[i*256+r], per spec.md §9's "vector of vectors → contiguous
// block" redesign note.
type RegFile struct {
	warpWidth int
	regs      []int32
}

// NewRegFile allocates a register file for a warp of the given width.
func NewRegFile(warpWidth int) *RegFile {
	return &RegFile{
		warpWidth: warpWidth,
		regs:      make([]int32, warpWidth*numRegisters),
	}
}

// Reset zeroes every thread's register file, per spec.md §4.4.1's
// "register file is reset-by-contract at each block dispatch".
func (r *RegFile) Reset() {
	for i := range r.regs {
		r.regs[i] = 0
	}
}

func (r *RegFile) index(thread int, reg uint8) int {
	return thread*numRegisters + int(reg)
}

// Read returns thread i's register reg as its raw int32 bit pattern.
func (r *RegFile) Read(thread int, reg uint8) int32 {
	return r.regs[r.index(thread, reg)]
}

// ReadUint32 returns thread i's register reg reinterpreted as uint32,
// the view IU arithmetic and LSU addressing use.
func (r *RegFile) ReadUint32(thread int, reg uint8) uint32 {
	return uint32(r.Read(thread, reg))
}

// Write stores v into thread i's register reg.
func (r *RegFile) Write(thread int, reg uint8, v int32) {
	r.regs[r.index(thread, reg)] = v
}

// WriteUint32 stores v into thread i's register reg via its int32 bit
// pattern.
func (r *RegFile) WriteUint32(thread int, reg uint8, v uint32) {
	r.Write(thread, reg, int32(v))
}
