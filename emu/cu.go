// Package emu implements the BGPU compute unit: a cycle-free functional
// emulator that decodes a packed instruction stream and executes it
// across a warp of lockstep threads, producing a per-thread register
// trace.
package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/bgpu/isa"
)

// CU is a BGPU compute unit: the warp-wide execution engine that
// dispatches thread blocks against a shared device memory, per
// spec.md §4.4.
type CU struct {
	warpWidth int
	memory    *Memory
	regs      *RegFile
	trace     TraceSink

	stdout io.Writer
	stderr io.Writer

	timestamp int64

	// per-block state, valid only while a block is running
	pc      []uint32
	stopped []bool
	syncing []bool
	tbID    int
	dpAddr  uint32
	tbSize  int
}

// CUOption is a functional option for configuring a CU.
type CUOption func(*CU)

// WithTraceSink sets the sink that receives register writes. The
// default is an in-memory MapTraceSink.
func WithTraceSink(sink TraceSink) CUOption {
	return func(cu *CU) { cu.trace = sink }
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) CUOption {
	return func(cu *CU) { cu.stdout = w }
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) CUOption {
	return func(cu *CU) { cu.stderr = w }
}

// NewCU builds a compute unit with the given warp width, sharing
// memory across every block it dispatches.
func NewCU(warpWidth int, memory *Memory, opts ...CUOption) *CU {
	cu := &CU{
		warpWidth: warpWidth,
		memory:    memory,
		regs:      NewRegFile(warpWidth),
		trace:     NewMapTraceSink(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,

		pc:      make([]uint32, warpWidth),
		stopped: make([]bool, warpWidth),
		syncing: make([]bool, warpWidth),
	}
	for _, opt := range opts {
		opt(cu)
	}
	return cu
}

// RegFile returns the warp's register file, primarily for tests that
// want to inspect post-dispatch state directly.
func (cu *CU) RegFile() *RegFile {
	return cu.regs
}

// Memory returns the compute unit's shared device memory.
func (cu *CU) Memory() *Memory {
	return cu.memory
}

// Dispatch runs n_blocks thread blocks of the loaded program, per
// spec.md §4.4.1. Each block resets per-thread state, runs until every
// active thread has stopped, and emits its register trace to the
// configured TraceSink. tgroupID is accepted for parity with the
// driver interface (spec.md §6); the CU neither stores nor uses it.
func (cu *CU) Dispatch(pc0 uint32, dpAddr uint32, tbSize, nBlocks, tgroupID int) error {
	if tbSize <= 0 || tbSize > cu.warpWidth {
		return fmt.Errorf("tb_size %d must be in (0, warp_width=%d]", tbSize, cu.warpWidth)
	}

	for block := 0; block < nBlocks; block++ {
		cu.resetBlock(pc0, dpAddr, block, tbSize)
		// Give the block its own (possibly empty) trace map in the
		// built-in sinks, even if it never writes a register.
		var blocks *[]map[int]map[uint8][]RegisterWrite
		switch s := cu.trace.(type) {
		case *MapTraceSink:
			blocks = &s.Blocks
		case *JSONTraceSink:
			blocks = &s.inner.Blocks
		}
		for blocks != nil && len(*blocks) <= block {
			*blocks = append(*blocks, map[int]map[uint8][]RegisterWrite{})
		}
		if err := cu.runBlock(block); err != nil {
			return fmt.Errorf("block %d: %w", block, err)
		}
	}
	return nil
}

func (cu *CU) resetBlock(pc0, dpAddr uint32, tbID, tbSize int) {
	cu.regs.Reset()
	for i := 0; i < cu.warpWidth; i++ {
		cu.pc[i] = pc0
		cu.stopped[i] = false
		cu.syncing[i] = false
	}
	cu.tbID = tbID
	cu.dpAddr = dpAddr
	cu.tbSize = tbSize
}

// runBlock executes rounds of the per-thread step loop until every
// active thread in the block has stopped, per spec.md §4.4.2.
func (cu *CU) runBlock(block int) error {
	for {
		for i := 0; i < cu.tbSize; i++ {
			if cu.stopped[i] || cu.syncing[i] {
				continue
			}
			if err := cu.step(block, i); err != nil {
				return err
			}
		}

		cu.releaseBarrierIfReady()

		if cu.blockDone() {
			return nil
		}
	}
}

func (cu *CU) blockDone() bool {
	for i := 0; i < cu.tbSize; i++ {
		if !cu.stopped[i] {
			return false
		}
	}
	return true
}

// releaseBarrierIfReady implements spec.md §4.4.6's SYNC_THREADS
// barrier: it releases once every non-stopped thread in the block is
// syncing. Stopped threads neither participate in nor block it.
func (cu *CU) releaseBarrierIfReady() {
	active, syncingCount := 0, 0
	for i := 0; i < cu.tbSize; i++ {
		if cu.stopped[i] {
			continue
		}
		active++
		if cu.syncing[i] {
			syncingCount++
		}
	}
	if active == 0 || syncingCount != active {
		return
	}
	for i := 0; i < cu.tbSize; i++ {
		if cu.syncing[i] {
			cu.syncing[i] = false
			cu.pc[i] += 4
		}
	}
}

// step fetches, decodes, and executes one instruction for thread i,
// per spec.md §4.4.2.
func (cu *CU) step(block, thread int) error {
	word, err := cu.memory.Read32(cu.pc[thread])
	if err != nil {
		return fmt.Errorf("fetch at pc=0x%x: %w", cu.pc[thread], err)
	}
	inst := isa.Decode(word)

	switch inst.EU {
	case isa.IU:
		if err := cu.execIU(thread, inst); err != nil {
			return err
		}
		cu.pc[thread] += 4
		cu.emitTrace(block, thread, inst.Dst)

	case isa.LSU:
		if err := cu.execLSU(thread, inst); err != nil {
			return err
		}
		cu.pc[thread] += 4
		cu.emitTrace(block, thread, inst.Dst)

	case isa.FPU:
		if err := cu.execFPU(thread, inst); err != nil {
			return err
		}
		cu.pc[thread] += 4
		cu.emitTrace(block, thread, inst.Dst)

	case isa.BRU:
		traced, err := cu.execBRU(thread, inst)
		if err != nil {
			return err
		}
		if traced {
			cu.emitTrace(block, thread, inst.Dst)
		}

	default:
		return fmt.Errorf("unknown execution unit %v at pc=0x%x", inst.EU, cu.pc[thread])
	}
	return nil
}

func (cu *CU) emitTrace(block, thread int, reg uint8) {
	cu.trace.Record(block, thread, reg, cu.timestamp, cu.regs.Read(thread, reg))
	cu.timestamp++
}
