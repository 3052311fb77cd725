package asm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bgpu/asm"
	"github.com/sarchlab/bgpu/isa"
)

var _ = Describe("FPU mnemonic resolution", func() {
	var a *asm.Assembler

	BeforeEach(func() {
		a = asm.NewAssembler()
	})

	It("resolves a shared mnemonic with the float32 modifier to the FPU, not IU", func() {
		bin, err := a.Assemble([]string{"add.rr.float32 r1, r2, r3"})
		Expect(err).NotTo(HaveOccurred())
		inst := decodeAt(bin, 0)
		Expect(inst.EU).To(Equal(isa.FPU))
		Expect(inst.Subtype).To(Equal(isa.FPUAdd))
		Expect(inst.Dst).To(Equal(uint8(1)))
	})

	It("still resolves the same shared mnemonic with int32 to IU", func() {
		bin, err := a.Assemble([]string{"add.rr.int32 r1, r2, r3"})
		Expect(err).NotTo(HaveOccurred())
		inst := decodeAt(bin, 0)
		Expect(inst.EU).To(Equal(isa.IU))
		Expect(inst.Subtype).To(Equal(isa.IUAdd))
	})

	It("resolves cmplt.rr.float32 to the FPU", func() {
		bin, err := a.Assemble([]string{"cmplt.rr.float32 r1, r2, r3"})
		Expect(err).NotTo(HaveOccurred())
		inst := decodeAt(bin, 0)
		Expect(inst.EU).To(Equal(isa.FPU))
		Expect(inst.Subtype).To(Equal(isa.FPUCmplt))
	})

	It("resolves a unary FPU mnemonic and mirrors its source into op1 and op2", func() {
		bin, err := a.Assemble([]string{"recip.rr.float32 r4, r5"})
		Expect(err).NotTo(HaveOccurred())
		inst := decodeAt(bin, 0)
		Expect(inst.EU).To(Equal(isa.FPU))
		Expect(inst.Subtype).To(Equal(isa.FPURecip))
		Expect(inst.Dst).To(Equal(uint8(4)))
		Expect(inst.Op1).To(Equal(uint8(5)))
		Expect(inst.Op2).To(Equal(uint8(5)))
	})

	It("rejects an FPU-shaped instruction missing the float32 modifier", func() {
		_, err := a.Assemble([]string{"max.rr r1, r2, r3"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects add.float32 with no RR modifier at all", func() {
		_, err := a.Assemble([]string{"add.float32 r1, r2, r3"})
		Expect(err).To(HaveOccurred())
	})
})
