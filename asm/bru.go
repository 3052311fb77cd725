package asm

import (
	"fmt"

	"github.com/sarchlab/bgpu/isa"
)

// NewBranchUnit builds the BRU's VID table: the conditional branches
// (brnz/brz against a signed 8-bit PC-relative displacement), the warp
// barrier, and the terminating stop. Grounded on
// original_source/src/bgpu_assembler.py's AssemblerBranchUnit.
func NewBranchUnit() ExecutionUnit {
	u := &bruUnit{}
	return ExecutionUnit{
		Tag:  isa.BRU,
		Name: "BRU",
		Instructions: []ValidInstruction{
			{
				Mnemonic: "br",
				ModifierGroups: [][]ModifierKind{{Condition}, {Label}},
				Operands:       [][]OperandKind{{Register}},
				Encode:         u.encodeBranch,
			},
			{
				Mnemonic:       "sync",
				ModifierGroups: [][]ModifierKind{{SyncDomain}},
				Encode:         u.encodeSyncThreads,
			},
			{
				Mnemonic: "stop",
				Encode:   u.encodeStop,
			},
		},
	}
}

type bruUnit struct{}

func (u *bruUnit) encodeBranch(p ParsedInstruction, ctx *EncodeContext) (uint32, error) {
	var sub isa.Subtype
	switch {
	case hasCondition(p, "nz"):
		sub = isa.BRUBrnz
	case hasCondition(p, "ez"):
		sub = isa.BRUBrz
	default:
		return 0, fmt.Errorf("br requires a .nz or .ez condition")
	}

	target := labelTarget(p)
	if target == "" {
		return 0, fmt.Errorf("br requires a label modifier")
	}
	addr, ok := ctx.Labels[target]
	if !ok {
		return 0, fmt.Errorf("unresolved label %q", target)
	}
	offset := int64(addr) - (int64(p.Addr) + 1)
	encoded, ok := isa.EncodeBranchOffset(offset)
	if !ok {
		return 0, fmt.Errorf("branch offset %d to %q out of range [-128,127]", offset, target)
	}

	guard := encodeRegAt(p.Operands[0], 1)
	return guard | uint32(encoded) | encodeSubtype(sub), nil
}

func (u *bruUnit) encodeSyncThreads(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
	if !hasSyncDomain(p, "threads") {
		return 0, fmt.Errorf("sync requires a .threads domain")
	}
	return encodeSubtype(isa.BRUSyncThreads), nil
}

func (u *bruUnit) encodeStop(p ParsedInstruction, _ *EncodeContext) (uint32, error) {
	return encodeSubtype(isa.BRUStop), nil
}

func hasCondition(p ParsedInstruction, value string) bool {
	for _, m := range p.FindModifiers(Condition) {
		if m.Value == value {
			return true
		}
	}
	return false
}

func hasSyncDomain(p ParsedInstruction, value string) bool {
	for _, m := range p.FindModifiers(SyncDomain) {
		if m.Value == value {
			return true
		}
	}
	return false
}

func labelTarget(p ParsedInstruction) string {
	for _, m := range p.FindModifiers(Label) {
		return m.Value
	}
	return ""
}
