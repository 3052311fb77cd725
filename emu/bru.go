package emu

import "github.com/sarchlab/bgpu/isa"

// execBRU applies BRU semantics to thread i, per spec.md §4.4.6.
// Unlike the other families it owns the thread's PC update; traced
// reports whether the step should be appended to the register trace
// (false for STOP, which produces no visible register write, and for
// SYNC_THREADS while the thread is waiting at the barrier).
func (cu *CU) execBRU(thread int, inst isa.Instruction) (traced bool, err error) {
	switch inst.Subtype {
	case isa.BRUStop:
		cu.stopped[thread] = true
		return false, nil

	case isa.BRUSyncThreads:
		cu.syncing[thread] = true
		return false, nil

	case isa.BRUBrnz, isa.BRUBrz:
		guard := cu.regs.Read(thread, inst.Op2)
		taken := (inst.Subtype == isa.BRUBrnz && guard != 0) ||
			(inst.Subtype == isa.BRUBrz && guard == 0)
		if taken {
			offset := isa.SignExtendBranchOffset(inst.Op1)
			cu.pc[thread] = uint32(int64(cu.pc[thread]) + (int64(offset)+1)*4)
		} else {
			cu.pc[thread] += 4
		}
		return true, nil
	}
	return false, nil
}
