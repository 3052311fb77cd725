package emu

import (
	"math"

	"github.com/sarchlab/bgpu/isa"
)

// execFPU applies FPU semantics to thread i, per spec.md §4.4.5.
// Registers hold IEEE-754 binary32 bit patterns; every op reinterprets
// its sources as float32, computes in IEEE-754 default rounding, and
// writes the bit-pattern result back. Division-by-zero and overflow
// follow IEEE defaults; this never returns an error.
func (cu *CU) execFPU(thread int, inst isa.Instruction) error {
	src1 := isa.BitsToFloat32(cu.regs.ReadUint32(thread, inst.Op1))
	src2 := isa.BitsToFloat32(cu.regs.ReadUint32(thread, inst.Op2))

	switch inst.Subtype {
	case isa.FPUAdd:
		cu.regs.WriteUint32(thread, inst.Dst, isa.Float32ToBits(src2+src1))
	case isa.FPUSub:
		cu.regs.WriteUint32(thread, inst.Dst, isa.Float32ToBits(src2-src1))
	case isa.FPUMul:
		cu.regs.WriteUint32(thread, inst.Dst, isa.Float32ToBits(src2*src1))
	case isa.FPUMax:
		cu.regs.WriteUint32(thread, inst.Dst, isa.Float32ToBits(fpuMax(src2, src1)))
	case isa.FPUExp2:
		cu.regs.WriteUint32(thread, inst.Dst, isa.Float32ToBits(float32(math.Exp2(float64(src1)))))
	case isa.FPULog2:
		cu.regs.WriteUint32(thread, inst.Dst, isa.Float32ToBits(float32(math.Log2(float64(src1)))))
	case isa.FPURecip:
		cu.regs.WriteUint32(thread, inst.Dst, isa.Float32ToBits(1/src1))
	case isa.FPUCmplt:
		if src2 < src1 {
			cu.regs.WriteUint32(thread, inst.Dst, 1)
		} else {
			cu.regs.WriteUint32(thread, inst.Dst, 0)
		}
	case isa.FPUCastFromInt:
		asInt := int32(cu.regs.ReadUint32(thread, inst.Op1))
		cu.regs.WriteUint32(thread, inst.Dst, isa.Float32ToBits(float32(asInt)))
	case isa.FPUCastToInt:
		cu.regs.Write(thread, inst.Dst, int32(src1))
	}
	return nil
}

func fpuMax(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
