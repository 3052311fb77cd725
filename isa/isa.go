// Package isa defines the BGPU instruction encoding: the execution-unit
// tags, the per-unit opcode subtypes, the 32-bit instruction word layout,
// and the bit-preserving value conversions shared by the assembler and
// the emulator.
package isa

import "math"

// EU identifies the execution unit that owns an instruction's opcode
// space. It occupies the top two bits of every instruction word.
type EU uint8

// Execution units.
const (
	IU  EU = 0
	LSU EU = 1
	BRU EU = 2
	FPU EU = 3
)

// String returns the mnemonic-table name of the execution unit.
func (e EU) String() string {
	switch e {
	case IU:
		return "IU"
	case LSU:
		return "LSU"
	case BRU:
		return "BRU"
	case FPU:
		return "FPU"
	default:
		return "EU(?)"
	}
}

// Subtype is the 6-bit opcode within an execution unit. Its meaning is
// namespaced by EU: the same numeric value means different things for
// IU, LSU, BRU and FPU.
type Subtype uint8

// IU subtypes.
const (
	IUTid Subtype = 0x00
	IUWid Subtype = 0x01
	IUBid Subtype = 0x02
	IUTbid Subtype = 0x03
	IUDpa Subtype = 0x04

	IUAdd Subtype = 0x05
	IUSub Subtype = 0x06
	IUAnd Subtype = 0x07
	IUOr  Subtype = 0x08
	IUXor Subtype = 0x09
	IUShl Subtype = 0x0A
	IUShr Subtype = 0x0B
	IUMul Subtype = 0x0C

	IULdi Subtype = 0x0D

	IUAddI Subtype = 0x0E
	IUSubI Subtype = 0x0F
	IUAndI Subtype = 0x10
	IUOrI  Subtype = 0x11
	IUXorI Subtype = 0x12
	IUShlI Subtype = 0x13
	IUShrI Subtype = 0x14
	IUMulI Subtype = 0x15

	// CMPLT, CMPNE, MAX and DIV follow the same RR/"...I" split as the
	// ADD..MUL family above.
	IUCmplt Subtype = 0x16
	IUCmpne Subtype = 0x17
	IUMax   Subtype = 0x18
	IUDiv   Subtype = 0x19

	IUCmpltI Subtype = 0x1A
	IUCmpneI Subtype = 0x1B
	IUMaxI   Subtype = 0x1C
	IUDivI   Subtype = 0x1D
)

// LSU subtypes.
const (
	LSULoadByte  Subtype = 0x00
	LSULoadHalf  Subtype = 0x01
	LSULoadWord  Subtype = 0x02
	LSUStoreByte Subtype = 0x03
	LSUStoreHalf Subtype = 0x04
	LSUStoreWord Subtype = 0x05
	LSULoadParam Subtype = 0x06
)

// BRU subtypes.
const (
	BRUBrnz       Subtype = 0x00
	BRUBrz        Subtype = 0x01
	BRUSyncThreads Subtype = 0x02
	BRUStop       Subtype = 0b111111
)

// FPU subtypes.
const (
	FPUAdd         Subtype = 0x00
	FPUSub         Subtype = 0x01
	FPUMul         Subtype = 0x02
	FPUMax         Subtype = 0x03
	FPUExp2        Subtype = 0x04
	FPULog2        Subtype = 0x05
	FPURecip       Subtype = 0x06
	FPUCmplt       Subtype = 0x07
	FPUCastFromInt Subtype = 0x08
	FPUCastToInt   Subtype = 0x09
)

// Instruction is the decoded form of a 32-bit BGPU instruction word.
//
// Field meaning is context-dependent: for most IU/FPU instructions Op1
// is a register id or register-immediate source; for branches Op1 is a
// signed 8-bit PC-relative displacement; for LDI and LOAD_PARAM, Op2
// and Op1 together pack a 16-bit immediate.
type Instruction struct {
	EU      EU
	Subtype Subtype
	Dst     uint8
	Op2     uint8
	Op1     uint8
}

// Decode unpacks a 32-bit instruction word per the BGPU layout:
//
//	bits 31-30 eu, 29-24 subtype, 23-16 dst, 15-8 op2, 7-0 op1.
func Decode(word uint32) Instruction {
	return Instruction{
		EU:      EU(word >> 30),
		Subtype: Subtype((word >> 24) & 0x3F),
		Dst:     uint8(word >> 16),
		Op2:     uint8(word >> 8),
		Op1:     uint8(word),
	}
}

// Encode packs an Instruction back into its 32-bit word.
func Encode(inst Instruction) uint32 {
	return uint32(inst.EU&0x3)<<30 |
		uint32(inst.Subtype&0x3F)<<24 |
		uint32(inst.Dst)<<16 |
		uint32(inst.Op2)<<8 |
		uint32(inst.Op1)
}

// EncodeWord builds an instruction word directly from its fields,
// without an intermediate Instruction. The assembler applies it to the
// output of a VID encode function, which already packs dst/op2/op1/
// subtype into their bit positions and only needs the EU tag ORed in.
func EncodeWord(eu EU, low30 uint32) uint32 {
	return uint32(eu&0x3)<<30 | (low30 & 0x3FFFFFFF)
}

// Imm16 packs a 16-bit immediate the way LDI and LOAD_PARAM do: the
// high byte in Op2, the low byte in Op1.
func Imm16(v uint16) (op2, op1 uint8) {
	return uint8(v >> 8), uint8(v)
}

// DecodeImm16 reassembles a 16-bit immediate packed by Imm16.
func DecodeImm16(op2, op1 uint8) uint16 {
	return uint16(op2)<<8 | uint16(op1)
}

// SignExtendBranchOffset interprets an 8-bit branch displacement field
// as a signed two's-complement value in instruction units.
func SignExtendBranchOffset(op1 uint8) int32 {
	return int32(int8(op1))
}

// EncodeBranchOffset converts a signed instruction-unit displacement
// into its 8-bit two's-complement encoding. ok is false if the offset
// does not fit in 8 signed bits (-128..127), which is a link error.
func EncodeBranchOffset(offset int64) (encoded uint8, ok bool) {
	if offset < -128 || offset > 127 {
		return 0, false
	}
	return uint8(int8(offset)), true
}

// Float32ToBits reinterprets a float32 value as its IEEE-754 binary32
// bit pattern.
func Float32ToBits(f float32) uint32 {
	return math.Float32bits(f)
}

// BitsToFloat32 reinterprets an IEEE-754 binary32 bit pattern as a
// float32 value.
func BitsToFloat32(bits uint32) float32 {
	return math.Float32frombits(bits)
}
