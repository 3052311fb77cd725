package asm

import (
	"fmt"

	"github.com/sarchlab/bgpu/isa"
)

// NewLoadStoreUnit builds the LSU's VID table: ld/st (width routed by
// the IDTYPE/FDTYPE modifier) and ldparam. Grounded on
// original_source/src/bgpu_assembler.py's AssemblerLoadStoreUnit.
func NewLoadStoreUnit() ExecutionUnit {
	u := &lsuUnit{}
	return ExecutionUnit{
		Tag:  isa.LSU,
		Name: "LSU",
		Instructions: []ValidInstruction{
			{
				Mnemonic:       "ld",
				ModifierGroups: [][]ModifierKind{{IDType, FDType}, {MemoryType}},
				Operands:       [][]OperandKind{{Register}, {Register}},
				Encode:         u.encodeLoad,
			},
			{
				Mnemonic:       "st",
				ModifierGroups: [][]ModifierKind{{IDType, FDType}, {MemoryType}},
				Operands:       [][]OperandKind{{Register}, {Register}},
				Encode:         u.encodeStore,
			},
			{
				// ldparam accepts and ignores a data-type modifier,
				// per spec.md §9's resolution of that open question.
				Mnemonic: "ldparam",
				Operands: [][]OperandKind{{Register}, {IntImmediate}},
				Encode:   u.encodeLoadParam,
			},
		},
	}
}

type lsuUnit struct{}

func widthSubtype(mods []Modifier, byWidth map[int]isa.Subtype) (isa.Subtype, error) {
	if len(mods) != 1 {
		return 0, fmt.Errorf("ld/st requires exactly one data-type modifier")
	}
	width := mods[0].DataWidth()
	sub, ok := byWidth[width]
	if !ok {
		return 0, fmt.Errorf("invalid data width %d for ld/st", width)
	}
	return sub, nil
}

// encodeLoad: dst is the loaded register; op2 = address register.
// float32 loads route through LOAD_WORD, per spec.md §4.3.4.
func (u *lsuUnit) encodeLoad(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
	sub, err := widthSubtype(p.DTypeModifiers(), map[int]isa.Subtype{
		1: isa.LSULoadByte, 2: isa.LSULoadHalf, 4: isa.LSULoadWord,
	})
	if err != nil {
		return 0, err
	}
	dst := encodeDestReg(p.Operands[0])
	addr := encodeRegAt(p.Operands[1], 1)
	return dst | addr | encodeSubtype(sub), nil
}

// encodeStore: per spec.md §3's layout exception, the first syntactic
// operand (the address register) is written into the dst field, and
// the second (the value register) into the op2 field.
func (u *lsuUnit) encodeStore(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
	sub, err := widthSubtype(p.DTypeModifiers(), map[int]isa.Subtype{
		1: isa.LSUStoreByte, 2: isa.LSUStoreHalf, 4: isa.LSUStoreWord,
	})
	if err != nil {
		return 0, err
	}
	addrAsDst := encodeDestReg(p.Operands[0])
	valueAsOp2 := encodeRegAt(p.Operands[1], 1)
	return addrAsDst | valueAsOp2 | encodeSubtype(sub), nil
}

func (u *lsuUnit) encodeLoadParam(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
	imm, err := encodeLargeImmediate(p.Operands[1])
	if err != nil {
		return 0, err
	}
	return encodeDestReg(p.Operands[0]) | imm | encodeSubtype(isa.LSULoadParam), nil
}
