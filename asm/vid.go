package asm

import (
	"fmt"

	"github.com/sarchlab/bgpu/isa"
)

// EncodeContext carries the information an encode function needs
// beyond the instruction itself: the label→address map built after
// placement (spec.md §4.3.3), used only by branch encoding.
type EncodeContext struct {
	Labels map[string]int32
}

// EncodeFunc produces the low 30 bits of an instruction word (the
// assembler ORs in eu<<30). It returns an error for an encoding
// failure such as an out-of-range immediate or an unresolved label.
type EncodeFunc func(ParsedInstruction, *EncodeContext) (uint32, error)

// ExpandFunc rewrites a ParsedInstruction into its final form, which
// may be itself (unchanged), or a multi-instruction replacement
// sequence (spec.md §4.3.2). A nil ExpandFunc means pass-through.
type ExpandFunc func(ParsedInstruction) ([]ParsedInstruction, error)

// ValidInstruction (VID) is one legal mnemonic/modifier/operand shape
// for an execution unit, per spec.md §4.3.1.
type ValidInstruction struct {
	Mnemonic string

	// ModifierGroups: each group is a set of kinds from which exactly
	// one modifier must be present on a matching instruction.
	ModifierGroups [][]ModifierKind

	// Operands: per position, the set of operand kinds accepted there.
	Operands [][]OperandKind

	Encode EncodeFunc
	Expand ExpandFunc
}

// Matches reports whether a ParsedInstruction satisfies this VID's
// mnemonic, modifier-group, and operand-shape requirements.
func (v ValidInstruction) Matches(p ParsedInstruction) bool {
	if p.Mnemonic != v.Mnemonic {
		return false
	}

	for _, group := range v.ModifierGroups {
		count := 0
		for _, m := range p.Modifiers {
			for _, want := range group {
				if m.Kind == want {
					count++
					break
				}
			}
		}
		if count != 1 {
			return false
		}
	}

	if len(p.Operands) != len(v.Operands) {
		return false
	}
	for i, want := range v.Operands {
		if !kindAllowed(p.Operands[i].Kind, want) {
			return false
		}
	}

	return true
}

func kindAllowed(got OperandKind, allowed []OperandKind) bool {
	for _, k := range allowed {
		if k == got {
			return true
		}
	}
	return false
}

// ExecutionUnit is the per-EU table of VIDs, per spec.md §4.1/§4.3.1.
type ExecutionUnit struct {
	Tag          isa.EU
	Name         string
	Instructions []ValidInstruction
}

// Find returns the first VID whose mnemonic and shape the instruction
// matches, or nil if none does.
func (u ExecutionUnit) Find(p ParsedInstruction) *ValidInstruction {
	for i := range u.Instructions {
		if u.Instructions[i].Matches(p) {
			return &u.Instructions[i]
		}
	}
	return nil
}

// --- shared encode helpers, used by every unit's VID table ---

func encodeDestReg(op Operand) uint32 {
	return uint32(op.Reg) << 16
}

func encodeRegAt(op Operand, position int) uint32 {
	return uint32(op.Reg) << (uint(position) * 8)
}

func encodeSubtype(s isa.Subtype) uint32 {
	return uint32(s&0x3F) << 24
}

func encodeLargeImmediate(op Operand) (uint32, error) {
	if op.Int < 0 || op.Int > 0xFFFF {
		return 0, fmt.Errorf("immediate %d out of 16-bit range", op.Int)
	}
	return uint32(op.Int) & 0xFFFF, nil
}

func encodeSmallImmediate(op Operand) (uint32, error) {
	if op.Int < 0 || op.Int > 0xFF {
		return 0, fmt.Errorf("immediate %d out of 8-bit range", op.Int)
	}
	return uint32(op.Int) & 0xFF, nil
}
