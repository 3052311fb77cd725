package asm

import (
	"fmt"

	"github.com/sarchlab/bgpu/isa"
)

// NewIntegerUnit builds the IU's Valid Instruction Descriptor table:
// mov (with its LDI / 32-bit-split expansion), the register-register
// and register-immediate ALU family, the special thread/block/param
// sources, and the signed comparisons. Grounded on
// original_source/src/bgpu_assembler.py's AssemblerIntegerUnit.
func NewIntegerUnit() ExecutionUnit {
	u := &iuUnit{}
	u.unit = ExecutionUnit{
		Tag:  isa.IU,
		Name: "IU",
		Instructions: []ValidInstruction{
			{
				Mnemonic:       "mov",
				ModifierGroups: [][]ModifierKind{{RI, RR}, {IDType, FDType}},
				Operands:       [][]OperandKind{{Register}, {Register, IntImmediate, FloatImmediate}},
				Encode:         u.encodeMov,
				Expand:         u.expandMov,
			},
			aluVID("add", isa.IUAdd, isa.IUAddI, u),
			aluVID("sub", isa.IUSub, isa.IUSubI, u),
			aluVID("and", isa.IUAnd, isa.IUAndI, u),
			aluVID("or", isa.IUOr, isa.IUOrI, u),
			aluVID("xor", isa.IUXor, isa.IUXorI, u),
			aluVID("shl", isa.IUShl, isa.IUShlI, u),
			aluVID("shr", isa.IUShr, isa.IUShrI, u),
			aluVID("mul", isa.IUMul, isa.IUMulI, u),
			aluVID("cmplt", isa.IUCmplt, isa.IUCmpltI, u),
			aluVID("cmpne", isa.IUCmpne, isa.IUCmpneI, u),
			aluVID("max", isa.IUMax, isa.IUMaxI, u),
			aluVID("div", isa.IUDiv, isa.IUDivI, u),
			{
				Mnemonic: "special",
				Operands: [][]OperandKind{{Register}, {Special}},
				Encode:   u.encodeSpecial,
			},
		},
	}
	return u.unit
}

type iuUnit struct {
	unit ExecutionUnit
}

func aluVID(mnemonic string, rr, ri isa.Subtype, u *iuUnit) ValidInstruction {
	return ValidInstruction{
		Mnemonic:       mnemonic,
		ModifierGroups: [][]ModifierKind{{RI, RR}, {IDType}},
		Operands:       [][]OperandKind{{Register}, {Register}, {Register, IntImmediate}},
		Encode:         u.encodeAlu(rr, ri),
	}
}

// encodeAlu implements spec.md §4.3.4's "ALU IU instructions" convention:
// dst | src1<<8 | (src2_reg_or_imm) | subtype<<24, choosing the RI
// subtype iff the instruction is register-immediate.
func (u *iuUnit) encodeAlu(rr, ri isa.Subtype) EncodeFunc {
	return func(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
		dst := encodeDestReg(p.Operands[0])
		src1 := encodeRegAt(p.Operands[1], 1)
		if p.IsRR() {
			src2 := encodeRegAt(p.Operands[2], 0)
			return dst | src1 | src2 | encodeSubtype(rr), nil
		}
		src2, err := encodeSmallImmediate(p.Operands[2])
		if err != nil {
			return 0, err
		}
		return dst | src1 | src2 | encodeSubtype(ri), nil
	}
}

func (u *iuUnit) encodeSpecial(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
	dst := encodeDestReg(p.Operands[0])
	name := p.Operands[1].Special
	var sub isa.Subtype
	switch name {
	case "l":
		sub = isa.IUTid
	case "g":
		sub = isa.IUBid
	case "param":
		sub = isa.IUDpa
	default:
		return 0, fmt.Errorf("unknown special operand %%%s", name)
	}
	return dst | encodeSubtype(sub), nil
}

func (u *iuUnit) encodeMov(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
	if !p.IsRI() {
		return 0, fmt.Errorf("mov.rr must have been expanded before encoding")
	}
	imm, err := encodeLargeImmediate(p.Operands[1])
	if err != nil {
		return 0, err
	}
	return encodeDestReg(p.Operands[0]) | imm | encodeSubtype(isa.IULdi), nil
}

// expandMov implements spec.md §4.3.2's mov expansion rules.
func (u *iuUnit) expandMov(p ParsedInstruction) ([]ParsedInstruction, error) {
	if p.IsRR() {
		// No bare register-to-register move exists in the ISA; it is
		// synthesized as `add dst, src, 0` (spec.md §4.3.2).
		rewritten := p
		rewritten.Mnemonic = "add"
		rewritten.Modifiers = []Modifier{ClassifyModifier("ri"), ClassifyModifier("int32")}
		rewritten.Operands = []Operand{p.Operands[0], p.Operands[1], {Kind: IntImmediate, Int: 0}}
		return []ParsedInstruction{rewritten}, nil
	}

	dst := p.Operands[0]
	immOp := p.Operands[1]

	typeMod := ClassifyModifier("int32")
	if dtypes := p.DTypeModifiers(); len(dtypes) > 0 {
		typeMod = dtypes[0]
	}

	var val uint32
	if immOp.Kind == FloatImmediate {
		val = isa.Float32ToBits(immOp.Float)
		typeMod = ClassifyModifier("int32")
	} else {
		val = uint32(immOp.Int)
	}

	modRI := []Modifier{ClassifyModifier("ri"), typeMod}

	if val <= 0xFFFF {
		single := p
		single.Modifiers = modRI
		single.Operands = []Operand{dst, {Kind: IntImmediate, Int: int64(val)}}
		return []ParsedInstruction{single}, nil
	}

	line, ln, label := p.SourceLine, p.Line, p.Label

	upper := (val >> 16) & 0xFFFF
	next8 := (val >> 8) & 0xFF
	last8 := val & 0xFF

	mk := func(mnemonic string, ops []Operand, withLabel bool) ParsedInstruction {
		inst := ParsedInstruction{
			Mnemonic:   mnemonic,
			Modifiers:  modRI,
			Operands:   ops,
			SourceLine: line,
			Line:       ln,
			Addr:       -1,
		}
		if withLabel {
			inst.Label = label
		}
		return inst
	}

	return []ParsedInstruction{
		mk("mov", []Operand{dst, {Kind: IntImmediate, Int: int64(upper)}}, true),
		mk("shl", []Operand{dst, dst, {Kind: IntImmediate, Int: 8}}, false),
		mk("or", []Operand{dst, dst, {Kind: IntImmediate, Int: int64(next8)}}, false),
		mk("shl", []Operand{dst, dst, {Kind: IntImmediate, Int: 8}}, false),
		mk("or", []Operand{dst, dst, {Kind: IntImmediate, Int: int64(last8)}}, false),
	}, nil
}
