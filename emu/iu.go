package emu

import "github.com/sarchlab/bgpu/isa"

// execIU applies IU semantics to thread i, per spec.md §4.4.3. All
// results are truncated to 32 bits and stored as a signed int32 bit
// pattern; shifts take their amount modulo 32.
func (cu *CU) execIU(thread int, inst isa.Instruction) error {
	switch inst.Subtype {
	case isa.IUTid:
		cu.regs.WriteUint32(thread, inst.Dst, uint32(thread))
		return nil
	case isa.IUWid:
		cu.regs.WriteUint32(thread, inst.Dst, 0)
		return nil
	case isa.IUBid:
		cu.regs.WriteUint32(thread, inst.Dst, uint32(cu.tbID))
		return nil
	case isa.IUTbid:
		cu.regs.WriteUint32(thread, inst.Dst, uint32(cu.tbID)*uint32(cu.warpWidth)+uint32(thread))
		return nil
	case isa.IUDpa:
		cu.regs.WriteUint32(thread, inst.Dst, cu.dpAddr)
		return nil
	case isa.IULdi:
		imm := isa.DecodeImm16(inst.Op2, inst.Op1)
		cu.regs.WriteUint32(thread, inst.Dst, uint32(imm))
		return nil
	}

	src1 := cu.regs.ReadUint32(thread, inst.Op2)

	var src2 uint32
	ri := isIURegisterImmediate(inst.Subtype)
	if ri {
		src2 = uint32(inst.Op1)
	} else {
		src2 = cu.regs.ReadUint32(thread, inst.Op1)
	}

	result, ok := iuAluOp(inst.Subtype, src1, src2)
	if !ok {
		return nil
	}
	cu.regs.WriteUint32(thread, inst.Dst, result)
	return nil
}

// isIURegisterImmediate reports whether subtype is the "...I" member of
// an RR/RI pair, whose second source is an unsigned 8-bit immediate in
// Op1 rather than a register id.
func isIURegisterImmediate(sub isa.Subtype) bool {
	switch sub {
	case isa.IUAddI, isa.IUSubI, isa.IUAndI, isa.IUOrI, isa.IUXorI,
		isa.IUShlI, isa.IUShrI, isa.IUMulI,
		isa.IUCmpltI, isa.IUCmpneI, isa.IUMaxI, isa.IUDivI:
		return true
	}
	return false
}

func iuAluOp(sub isa.Subtype, a, b uint32) (uint32, bool) {
	switch sub {
	case isa.IUAdd, isa.IUAddI:
		return a + b, true
	case isa.IUSub, isa.IUSubI:
		return a - b, true
	case isa.IUAnd, isa.IUAndI:
		return a & b, true
	case isa.IUOr, isa.IUOrI:
		return a | b, true
	case isa.IUXor, isa.IUXorI:
		return a ^ b, true
	case isa.IUShl, isa.IUShlI:
		return a << (b & 31), true
	case isa.IUShr, isa.IUShrI:
		return uint32(int32(a) >> (b & 31)), true
	case isa.IUMul, isa.IUMulI:
		return a * b, true
	case isa.IUCmplt, isa.IUCmpltI:
		if int32(a) < int32(b) {
			return 1, true
		}
		return 0, true
	case isa.IUCmpne, isa.IUCmpneI:
		if a != b {
			return 1, true
		}
		return 0, true
	case isa.IUMax, isa.IUMaxI:
		if int32(a) > int32(b) {
			return a, true
		}
		return b, true
	case isa.IUDiv, isa.IUDivI:
		if b == 0 {
			return 0, true
		}
		return uint32(int32(a) / int32(b)), true
	}
	return 0, false
}
