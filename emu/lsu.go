package emu

import "github.com/sarchlab/bgpu/isa"

// execLSU applies LSU semantics to thread i, per spec.md §4.4.4.
// Loads take their address from the Op2 register; stores take it from
// the Dst register and the value from Op2; LOAD_PARAM reads the word at
// dp_addr + imm16*4. Out-of-bounds and unaligned accesses are fatal for
// the current dispatch.
func (cu *CU) execLSU(thread int, inst isa.Instruction) error {
	if inst.Subtype == isa.LSULoadParam {
		imm := isa.DecodeImm16(inst.Op2, inst.Op1)
		addr := cu.dpAddr + uint32(imm)*4
		v, err := cu.memory.Read32(addr)
		if err != nil {
			return err
		}
		cu.regs.WriteUint32(thread, inst.Dst, v)
		return nil
	}

	switch inst.Subtype {
	case isa.LSULoadByte:
		addr := cu.regs.ReadUint32(thread, inst.Op2)
		v, err := cu.memory.Read8(addr)
		if err != nil {
			return err
		}
		cu.regs.WriteUint32(thread, inst.Dst, uint32(v))
	case isa.LSULoadHalf:
		addr := cu.regs.ReadUint32(thread, inst.Op2)
		v, err := cu.memory.Read16(addr)
		if err != nil {
			return err
		}
		cu.regs.WriteUint32(thread, inst.Dst, uint32(v))
	case isa.LSULoadWord:
		addr := cu.regs.ReadUint32(thread, inst.Op2)
		v, err := cu.memory.Read32(addr)
		if err != nil {
			return err
		}
		cu.regs.WriteUint32(thread, inst.Dst, v)
	case isa.LSUStoreByte:
		addr := cu.regs.ReadUint32(thread, inst.Dst)
		v := uint8(cu.regs.ReadUint32(thread, inst.Op2))
		if err := cu.memory.Write8(addr, v); err != nil {
			return err
		}
		cu.regs.Write(thread, inst.Dst, 0)
	case isa.LSUStoreHalf:
		addr := cu.regs.ReadUint32(thread, inst.Dst)
		v := uint16(cu.regs.ReadUint32(thread, inst.Op2))
		if err := cu.memory.Write16(addr, v); err != nil {
			return err
		}
		cu.regs.Write(thread, inst.Dst, 0)
	case isa.LSUStoreWord:
		addr := cu.regs.ReadUint32(thread, inst.Dst)
		v := cu.regs.ReadUint32(thread, inst.Op2)
		if err := cu.memory.Write32(addr, v); err != nil {
			return err
		}
		cu.regs.Write(thread, inst.Dst, 0)
	}
	return nil
}
