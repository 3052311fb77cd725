// Package driver provides the host-side collaborator the emulator's
// interfaces assume but do not implement themselves: device memory
// allocation, host↔device copies, parameter-block packing, and kernel
// dispatch. Grounded on original_source/src/bgpu_driver.py's
// BGPUDriver, which plays the same role against the Python emulator.
package driver

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/bgpu/emu"
)

// Driver owns a single device memory and hands out zeroed buffers from
// it with a bump allocator, per spec.md §6's alloc/copy_h2d/copy_d2h.
type Driver struct {
	memory    *emu.Memory
	warpWidth int
	next      uint32
}

// NewDriver allocates a device memory of memSize bytes for a warp of
// the given width.
func NewDriver(memSize, warpWidth int) *Driver {
	return &Driver{
		memory:    emu.NewMemory(memSize),
		warpWidth: warpWidth,
	}
}

// Memory exposes the underlying device memory, e.g. for a CU built
// outside the driver to share it.
func (d *Driver) Memory() *emu.Memory {
	return d.memory
}

// Alloc reserves size zeroed bytes and returns their base address, per
// spec.md §6's `alloc(size) → (base_address, size)`.
func (d *Driver) Alloc(size int) (base uint32, err error) {
	if size < 0 {
		return 0, fmt.Errorf("alloc: negative size %d", size)
	}
	base = d.next
	if int(base)+size > d.memory.Size() {
		return 0, fmt.Errorf("alloc: %d bytes at 0x%x exceeds device memory of %d bytes", size, base, d.memory.Size())
	}
	d.next += uint32(size)
	return base, nil
}

// CopyH2D copies src into device memory at dest.
func (d *Driver) CopyH2D(dest uint32, src []byte) error {
	return d.memory.LoadBytes(dest, src)
}

// CopyD2H copies len(dst) bytes from device memory at src into dst.
func (d *Driver) CopyD2H(dst []byte, src uint32) error {
	return d.memory.StoreBytes(src, dst)
}

// PackParams lays out a kernel's arguments as the 4-byte little-endian
// slot array spec.md §6 describes: `ldparam rd, K` reads the K-th such
// slot. Each argument here is itself a device address (a pointer into
// device memory), the common case for kernel arguments.
func PackParams(args []uint32) []byte {
	buf := make([]byte, 4*len(args))
	for i, a := range args {
		binary.LittleEndian.PutUint32(buf[i*4:], a)
	}
	return buf
}

// AllocParams allocates and writes a parameter block for args, in the
// layout PackParams describes, and returns its device address for use
// as dp_addr in Dispatch.
func (d *Driver) AllocParams(args []uint32) (uint32, error) {
	block := PackParams(args)
	addr, err := d.Alloc(len(block))
	if err != nil {
		return 0, err
	}
	if err := d.CopyH2D(addr, block); err != nil {
		return 0, err
	}
	return addr, nil
}

// Dispatch loads program into device memory at pc and runs it on a
// fresh compute unit across nBlocks thread blocks of tbSize threads
// each, per spec.md §6's `dispatch(pc, dp_addr, tb_size, n_blocks,
// tgroup_id)`. It returns the compute unit so the caller can inspect
// its register trace and final register state.
func (d *Driver) Dispatch(program []byte, pc, dpAddr uint32, tbSize, nBlocks, tgroupID int, opts ...emu.CUOption) (*emu.CU, error) {
	if err := d.CopyH2D(pc, program); err != nil {
		return nil, fmt.Errorf("loading kernel at 0x%x: %w", pc, err)
	}
	cu := emu.NewCU(d.warpWidth, d.memory, opts...)
	if err := cu.Dispatch(pc, dpAddr, tbSize, nBlocks, tgroupID); err != nil {
		return cu, err
	}
	return cu, nil
}
