package asm_test

import (
	"encoding/binary"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bgpu/asm"
	"github.com/sarchlab/bgpu/isa"
)

func decodeAt(bin []byte, word int) isa.Instruction {
	return isa.Decode(binary.LittleEndian.Uint32(bin[word*4:]))
}

func decodeAll(bin []byte) []isa.Instruction {
	out := make([]isa.Instruction, len(bin)/4)
	for i := range out {
		out[i] = decodeAt(bin, i)
	}
	return out
}

var _ = Describe("Assembler", func() {
	var a *asm.Assembler

	BeforeEach(func() {
		a = asm.NewAssembler()
	})

	Describe("mov", func() {
		It("encodes a small immediate as a single LDI", func() {
			bin, err := a.Assemble([]string{"mov.ri.int32 r0, 42"})
			Expect(err).NotTo(HaveOccurred())
			Expect(bin).To(HaveLen(4))

			inst := decodeAt(bin, 0)
			Expect(inst.EU).To(Equal(isa.IU))
			Expect(inst.Subtype).To(Equal(isa.IULdi))
			Expect(inst.Dst).To(Equal(uint8(0)))
			Expect(isa.DecodeImm16(inst.Op2, inst.Op1)).To(Equal(uint16(42)))
		})

		It("expands a >16-bit immediate into five instructions", func() {
			bin, err := a.Assemble([]string{"mov.ri.int32 r0, 0x12345678"})
			Expect(err).NotTo(HaveOccurred())
			Expect(bin).To(HaveLen(4 * 5))

			Expect(decodeAt(bin, 0).Subtype).To(Equal(isa.IULdi))
			Expect(decodeAt(bin, 1).Subtype).To(Equal(isa.IUShlI))
			Expect(decodeAt(bin, 2).Subtype).To(Equal(isa.IUOrI))
			Expect(decodeAt(bin, 3).Subtype).To(Equal(isa.IUShlI))
			Expect(decodeAt(bin, 4).Subtype).To(Equal(isa.IUOrI))
		})

		It("synthesizes mov.rr as add dst, src, 0", func() {
			bin, err := a.Assemble([]string{"mov.rr.int32 r1, r2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(bin).To(HaveLen(4))

			inst := decodeAt(bin, 0)
			Expect(inst.EU).To(Equal(isa.IU))
			Expect(inst.Subtype).To(Equal(isa.IUAddI))
			Expect(inst.Dst).To(Equal(uint8(1)))
			Expect(inst.Op2).To(Equal(uint8(2)))
			Expect(inst.Op1).To(Equal(uint8(0)))
		})

		It("carries a float immediate's bit pattern through the split expansion", func() {
			bin, err := a.Assemble([]string{"mov.ri.float32 r0, 1.0"})
			Expect(err).NotTo(HaveOccurred())
			Expect(bin).To(HaveLen(4 * 5))

			ldi := decodeAt(bin, 0)
			Expect(ldi.Subtype).To(Equal(isa.IULdi))
			got := uint32(isa.DecodeImm16(ldi.Op2, ldi.Op1))
			for _, w := range []int{1, 2, 3, 4} {
				inst := decodeAt(bin, w)
				switch inst.Subtype {
				case isa.IUShlI:
					got = got << 8
				case isa.IUOrI:
					got |= uint32(inst.Op1)
				}
			}
			Expect(got).To(Equal(isa.Float32ToBits(1.0)))
		})
	})

	Describe("ALU instructions", func() {
		It("encodes add.rr with dst/src1/src2 in the documented positions", func() {
			bin, err := a.Assemble([]string{"add.rr.int32 r5, r6, r7"})
			Expect(err).NotTo(HaveOccurred())
			inst := decodeAt(bin, 0)
			Expect(inst.Subtype).To(Equal(isa.IUAdd))
			Expect(inst.Dst).To(Equal(uint8(5)))
			Expect(inst.Op2).To(Equal(uint8(6)))
			Expect(inst.Op1).To(Equal(uint8(7)))
		})

		It("encodes add.ri with an 8-bit immediate in op1", func() {
			bin, err := a.Assemble([]string{"add.ri.int32 r5, r6, 9"})
			Expect(err).NotTo(HaveOccurred())
			inst := decodeAt(bin, 0)
			Expect(inst.Subtype).To(Equal(isa.IUAddI))
			Expect(inst.Op1).To(Equal(uint8(9)))
		})

		It("rejects an out-of-range immediate", func() {
			_, err := a.Assemble([]string{"add.ri.int32 r5, r6, 999"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("load/store", func() {
		It("encodes ld with dst and the address register in op2", func() {
			bin, err := a.Assemble([]string{"ld.int32.global r1, r2"})
			Expect(err).NotTo(HaveOccurred())
			inst := decodeAt(bin, 0)
			Expect(inst.EU).To(Equal(isa.LSU))
			Expect(inst.Subtype).To(Equal(isa.LSULoadWord))
			Expect(inst.Dst).To(Equal(uint8(1)))
			Expect(inst.Op2).To(Equal(uint8(2)))
		})

		It("encodes st with the address register in dst and the value in op2", func() {
			bin, err := a.Assemble([]string{"st.int32.global r1, r2"})
			Expect(err).NotTo(HaveOccurred())
			inst := decodeAt(bin, 0)
			Expect(inst.EU).To(Equal(isa.LSU))
			Expect(inst.Subtype).To(Equal(isa.LSUStoreWord))
			Expect(inst.Dst).To(Equal(uint8(1)))
			Expect(inst.Op2).To(Equal(uint8(2)))
		})

		It("routes byte- and half-width dtypes to their own subtypes", func() {
			bin, err := a.Assemble([]string{"ld.int8.global r0, r1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(decodeAt(bin, 0).Subtype).To(Equal(isa.LSULoadByte))
		})
	})

	Describe("branches", func() {
		It("resolves a forward label to a positive offset", func() {
			bin, err := a.Assemble([]string{
				"br.nz.target r0",
				"add.ri.int32 r1, r1, 1",
				"target: stop",
			})
			Expect(err).NotTo(HaveOccurred())
			inst := decodeAt(bin, 0)
			Expect(inst.EU).To(Equal(isa.BRU))
			Expect(inst.Subtype).To(Equal(isa.BRUBrnz))
			Expect(inst.Op2).To(Equal(uint8(0)))
			// target_address(2) - (this_address(0) + 1) = 1
			Expect(isa.SignExtendBranchOffset(inst.Op1)).To(Equal(int32(1)))
		})

		It("resolves a backward label to a negative offset", func() {
			bin, err := a.Assemble([]string{
				"loop: add.ri.int32 r1, r1, 1",
				"br.ez.loop r0",
			})
			Expect(err).NotTo(HaveOccurred())
			inst := decodeAt(bin, 1)
			Expect(inst.Subtype).To(Equal(isa.BRUBrz))
			// target_address(0) - (this_address(1) + 1) = -2
			Expect(isa.SignExtendBranchOffset(inst.Op1)).To(Equal(int32(-2)))
		})

		It("fails on an unresolved label", func() {
			_, err := a.Assemble([]string{"br.nz.nowhere r0"})
			Expect(err).To(HaveOccurred())
		})

		It("encodes sync.threads and stop with no operands", func() {
			bin, err := a.Assemble([]string{"sync.threads", "stop"})
			Expect(err).NotTo(HaveOccurred())
			Expect(decodeAt(bin, 0).Subtype).To(Equal(isa.BRUSyncThreads))
			Expect(decodeAt(bin, 1).Subtype).To(Equal(isa.BRUStop))
		})
	})

	Describe("decode(encode(parsed)) round-trip", func() {
		It("reproduces the exact decoded instruction sequence", func() {
			bin, err := a.Assemble([]string{
				"add.rr.int32 r1, r2, r3",
				"ld.int32.global r4, r1",
				"stop",
			})
			Expect(err).NotTo(HaveOccurred())

			want := []isa.Instruction{
				{EU: isa.IU, Subtype: isa.IUAdd, Dst: 1, Op2: 2, Op1: 3},
				{EU: isa.LSU, Subtype: isa.LSULoadWord, Dst: 4, Op2: 1, Op1: 0},
				{EU: isa.BRU, Subtype: isa.BRUStop, Dst: 0, Op2: 0, Op1: 0},
			}

			if diff := cmp.Diff(want, decodeAll(bin)); diff != "" {
				Fail("decoded instructions differ (-want +got):\n" + diff)
			}
		})
	})

	Describe("WithBaseAddress", func() {
		It("rebases placement and label resolution", func() {
			a := asm.NewAssembler(asm.WithBaseAddress(100))
			bin, err := a.Assemble([]string{
				"br.nz.target r0",
				"target: stop",
			})
			Expect(err).NotTo(HaveOccurred())
			inst := decodeAt(bin, 0)
			// target_address(101) - (this_address(100) + 1) = 0
			Expect(isa.SignExtendBranchOffset(inst.Op1)).To(Equal(int32(0)))
		})
	})
})
