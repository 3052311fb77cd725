package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bgpu/emu"
	"github.com/sarchlab/bgpu/isa"
)

var _ = Describe("FPU execution", func() {
	const warpWidth = 1
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory(4096)
	})

	It("executes FADD on two float32 sources", func() {
		bin := assembleOrDie([]string{
			"mov.ri.float32 r0, 1.5",
			"mov.ri.float32 r1, 2.25",
			"add.rr.float32 r2, r0, r1",
			"stop",
		})
		Expect(mem.LoadBytes(0, bin)).To(Succeed())

		cu := emu.NewCU(warpWidth, mem)
		Expect(cu.Dispatch(0, 0, warpWidth, 1, 0)).To(Succeed())

		got := isa.BitsToFloat32(cu.RegFile().ReadUint32(0, 2))
		Expect(got).To(BeNumerically("~", 3.75, 0.0001))
	})

	It("executes FCMPLT as a signed float comparison", func() {
		bin := assembleOrDie([]string{
			"mov.ri.float32 r0, -1.0",
			"mov.ri.float32 r1, 0.5",
			"cmplt.rr.float32 r2, r0, r1",
			"stop",
		})
		Expect(mem.LoadBytes(0, bin)).To(Succeed())

		cu := emu.NewCU(warpWidth, mem)
		Expect(cu.Dispatch(0, 0, warpWidth, 1, 0)).To(Succeed())

		Expect(cu.RegFile().Read(0, 2)).To(Equal(int32(1)))
	})

	It("executes FCAST_FROM_INT, converting a signed int32 register to its float32 bit pattern", func() {
		bin := assembleOrDie([]string{
			"mov.ri.int32 r0, 4",
			"castfromint.rr.float32 r1, r0",
			"stop",
		})
		Expect(mem.LoadBytes(0, bin)).To(Succeed())

		cu := emu.NewCU(warpWidth, mem)
		Expect(cu.Dispatch(0, 0, warpWidth, 1, 0)).To(Succeed())

		got := isa.BitsToFloat32(cu.RegFile().ReadUint32(0, 1))
		Expect(got).To(BeNumerically("==", 4.0))
	})
})
