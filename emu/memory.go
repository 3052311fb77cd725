package emu

import (
	"encoding/binary"
	"fmt"
)

// Memory is the flat, byte-addressable device memory shared by every
// thread in a block and by every block of a dispatch, per spec.md §5.
// It enforces the bounds and alignment invariants from §3: an access
// must fit entirely within the buffer and be aligned to its width.
type Memory struct {
	bytes []byte
}

// NewMemory allocates a zeroed device memory of the given size in
// bytes.
func NewMemory(size int) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// Size returns the memory's capacity in bytes.
func (m *Memory) Size() int {
	return len(m.bytes)
}

func (m *Memory) checkAccess(addr uint32, width int) error {
	if int(addr)+width > len(m.bytes) {
		return fmt.Errorf("memory access out of bounds: addr=0x%x width=%d size=%d", addr, width, len(m.bytes))
	}
	if addr%uint32(width) != 0 {
		return fmt.Errorf("unaligned memory access: addr=0x%x width=%d", addr, width)
	}
	return nil
}

// Read8 reads a single byte.
func (m *Memory) Read8(addr uint32) (uint8, error) {
	if err := m.checkAccess(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// Write8 writes a single byte.
func (m *Memory) Write8(addr uint32, v uint8) error {
	if err := m.checkAccess(addr, 1); err != nil {
		return err
	}
	m.bytes[addr] = v
	return nil
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint32) (uint16, error) {
	if err := m.checkAccess(addr, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.bytes[addr:]), nil
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint32, v uint16) error {
	if err := m.checkAccess(addr, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.bytes[addr:], v)
	return nil
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	if err := m.checkAccess(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.bytes[addr:]), nil
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, v uint32) error {
	if err := m.checkAccess(addr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.bytes[addr:], v)
	return nil
}

// Read64 reads a little-endian doubleword. BGPU registers are 32 bits,
// but the parameter block and a hardware back-end's memory-mapped
// registers are addressed in words; Read64/Write64 exist for the
// occasional 8-byte transfer a driver makes when copying doubles into
// device memory.
func (m *Memory) Read64(addr uint32) (uint64, error) {
	if err := m.checkAccess(addr, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.bytes[addr:]), nil
}

// Write64 writes a little-endian doubleword.
func (m *Memory) Write64(addr uint32, v uint64) error {
	if err := m.checkAccess(addr, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.bytes[addr:], v)
	return nil
}

// LoadBytes copies src into memory starting at addr, bypassing the
// alignment check (used by the driver's copy_h2d and by test setup
// that seeds memory directly).
func (m *Memory) LoadBytes(addr uint32, src []byte) error {
	if int(addr)+len(src) > len(m.bytes) {
		return fmt.Errorf("copy out of bounds: addr=0x%x len=%d size=%d", addr, len(src), len(m.bytes))
	}
	copy(m.bytes[addr:], src)
	return nil
}

// StoreBytes copies len(dst) bytes from memory starting at addr into
// dst (used by the driver's copy_d2h).
func (m *Memory) StoreBytes(addr uint32, dst []byte) error {
	if int(addr)+len(dst) > len(m.bytes) {
		return fmt.Errorf("copy out of bounds: addr=0x%x len=%d size=%d", addr, len(dst), len(m.bytes))
	}
	copy(dst, m.bytes[addr:])
	return nil
}
