package asm

import "github.com/sarchlab/bgpu/isa"

// NewFloatUnit builds the FPU's VID table. Grounded on
// original_source/src/bgpu_assembler.py's AssemblerFPUnit, which reuses
// IU's exact mnemonics (add/sub/mul/max/exp2/log2/recip/cmplt) and
// disambiguates purely by requiring the RR and FDType modifier groups —
// the cross-unit search in Assembler.find tries IU first, so an int32
// instruction still resolves to IU and only a float32 one falls through
// to here. castfromint/casttoint have no AssemblerFPUnit equivalent
// (spec.md names FCAST_FROM_INT/FCAST_TO_INT beyond what the original
// assembler exposes) so they keep unprefixed, but original-source-less,
// names in the same bare-word style as "ldparam".
func NewFloatUnit() ExecutionUnit {
	u := &fpuUnit{}
	return ExecutionUnit{
		Tag:  isa.FPU,
		Name: "FPU",
		Instructions: []ValidInstruction{
			binaryFpuVID("add", isa.FPUAdd, u),
			binaryFpuVID("sub", isa.FPUSub, u),
			binaryFpuVID("mul", isa.FPUMul, u),
			binaryFpuVID("max", isa.FPUMax, u),
			binaryFpuVID("cmplt", isa.FPUCmplt, u),
			unaryFpuVID("exp2", isa.FPUExp2, u),
			unaryFpuVID("log2", isa.FPULog2, u),
			unaryFpuVID("recip", isa.FPURecip, u),
			unaryFpuVID("castfromint", isa.FPUCastFromInt, u),
			unaryFpuVID("casttoint", isa.FPUCastToInt, u),
		},
	}
}

type fpuUnit struct{}

// binaryFpuVID and unaryFpuVID require exactly one RR modifier and one
// FDType modifier, mirroring AssemblerFPUnit's
// [[REGISTER_REGISTER],[FDTYPE]] modifier groups. Without this, these
// mnemonics (shared with IU) would accept any or no modifiers at all.
func binaryFpuVID(mnemonic string, sub isa.Subtype, u *fpuUnit) ValidInstruction {
	return ValidInstruction{
		Mnemonic:       mnemonic,
		ModifierGroups: [][]ModifierKind{{RR}, {FDType}},
		Operands:       [][]OperandKind{{Register}, {Register}, {Register}},
		Encode:         u.encodeBinary(sub),
	}
}

func unaryFpuVID(mnemonic string, sub isa.Subtype, u *fpuUnit) ValidInstruction {
	return ValidInstruction{
		Mnemonic:       mnemonic,
		ModifierGroups: [][]ModifierKind{{RR}, {FDType}},
		Operands:       [][]OperandKind{{Register}, {Register}},
		Encode:         u.encodeUnary(sub),
	}
}

// encodeBinary implements spec.md §4.3.4's "FPU ALU instructions"
// convention: dst | src1<<8 | src2 | subtype<<24, matching IU's
// encodeAlu (the first source operand lands in the op2 field, the
// second in op1) so emu's op2-OP-op1 evaluation order lines up with
// the assembly's dst, src1, src2 operand order.
func (u *fpuUnit) encodeBinary(sub isa.Subtype) EncodeFunc {
	return func(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
		dst := encodeDestReg(p.Operands[0])
		src1 := encodeRegAt(p.Operands[1], 1)
		src2 := encodeRegAt(p.Operands[2], 0)
		return dst | src1 | src2 | encodeSubtype(sub), nil
	}
}

// encodeUnary places the sole source in both op1 and op2 for decoder
// symmetry, per spec.md §4.3.4.
func (u *fpuUnit) encodeUnary(sub isa.Subtype) EncodeFunc {
	return func(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
		dst := encodeDestReg(p.Operands[0])
		src := encodeRegAt(p.Operands[1], 0)
		srcHigh := encodeRegAt(p.Operands[1], 1)
		return dst | src | srcHigh | encodeSubtype(sub), nil
	}
}
