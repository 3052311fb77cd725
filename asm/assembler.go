// Package asm implements the BGPU assembler: parsing, pseudo-instruction
// expansion, address placement, label resolution, and encoding into a
// packed 32-bit little-endian instruction stream.
package asm

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/bgpu/isa"
)

// AssemblerError reports a fatal assembly failure, with the offending
// source line preserved for diagnostics, per spec.md §7.
type AssemblerError struct {
	Line int
	Text string
	Msg  string
}

func (e *AssemblerError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Assembler runs the expand → place → link → encode pipeline over the
// four execution units' VID tables, in IU, LSU, BRU, FPU order.
type Assembler struct {
	units  []ExecutionUnit
	base   int32
	stderr io.Writer
}

// AssemblerOption configures an Assembler at construction time.
type AssemblerOption func(*Assembler)

// WithBaseAddress rebases the program: the first instruction is placed
// at this word address instead of 0, per spec.md §4.3.3's "the caller
// may rebase".
func WithBaseAddress(base int32) AssemblerOption {
	return func(a *Assembler) { a.base = base }
}

// WithStderr redirects the assembler's diagnostic stream (unused by the
// pipeline itself today, but kept for symmetry with the emulator's
// functional options and for future warnings).
func WithStderr(w io.Writer) AssemblerOption {
	return func(a *Assembler) { a.stderr = w }
}

// NewAssembler builds an Assembler wired to the standard IU/LSU/BRU/FPU
// execution units.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		units:  []ExecutionUnit{NewIntegerUnit(), NewLoadStoreUnit(), NewBranchUnit(), NewFloatUnit()},
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// find returns the execution unit and VID that the first matching unit
// (in IU, LSU, BRU, FPU order) offers for this instruction.
func (a *Assembler) find(p ParsedInstruction) (ExecutionUnit, *ValidInstruction) {
	for _, u := range a.units {
		if vid := u.Find(p); vid != nil {
			return u, vid
		}
	}
	return ExecutionUnit{}, nil
}

// Assemble runs the full pipeline over a program's source lines and
// returns the encoded little-endian byte stream.
func (a *Assembler) Assemble(lines []string) ([]byte, error) {
	parsed, err := Parse(lines)
	if err != nil {
		return nil, err
	}
	return a.AssembleParsed(parsed)
}

// AssembleParsed runs expand → place → link → encode over already
// parsed instructions, so callers that build Parsed Instructions
// programmatically (tests, tooling) can skip the text parser.
func (a *Assembler) AssembleParsed(parsed []ParsedInstruction) ([]byte, error) {
	expanded, err := a.expandAll(parsed)
	if err != nil {
		return nil, err
	}

	labels := a.place(expanded)

	ctx := &EncodeContext{Labels: labels}
	out := make([]byte, 4*len(expanded))
	for i, inst := range expanded {
		word, err := a.encode(inst, ctx)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(out[i*4:], word)
	}
	return out, nil
}

// expandAll implements spec.md §4.3.2: each Parsed Instruction is
// matched against the first VID (across all units, in unit order) that
// accepts it; its expand_fn (if any) replaces it with a final sequence.
// Expansions are final — expanded instructions are not re-expanded.
func (a *Assembler) expandAll(parsed []ParsedInstruction) ([]ParsedInstruction, error) {
	var out []ParsedInstruction
	for _, p := range parsed {
		_, vid := a.find(p)
		if vid == nil {
			return nil, &AssemblerError{Line: p.Line, Text: p.SourceLine, Msg: "unknown or ill-typed instruction"}
		}
		if vid.Expand == nil {
			out = append(out, p)
			continue
		}
		rewritten, err := vid.Expand(p)
		if err != nil {
			return nil, &AssemblerError{Line: p.Line, Text: p.SourceLine, Msg: err.Error()}
		}
		out = append(out, rewritten...)
	}
	return out, nil
}

// place assigns consecutive word addresses starting at a.base and
// returns the label→address map. A label attached to an instruction
// produced by expansion resolves to that expansion's first instruction,
// since expandMov only attaches the original label to the instruction
// it emits first.
func (a *Assembler) place(expanded []ParsedInstruction) map[string]int32 {
	labels := make(map[string]int32)
	for i := range expanded {
		expanded[i].Addr = a.base + int32(i)
		if expanded[i].Label != "" {
			labels[expanded[i].Label] = expanded[i].Addr
		}
	}
	return labels
}

// encode looks up the final VID for an already-expanded instruction and
// invokes its encode_fn, ORing in the owning execution unit's tag.
func (a *Assembler) encode(p ParsedInstruction, ctx *EncodeContext) (uint32, error) {
	unit, vid := a.find(p)
	if vid == nil {
		return 0, &AssemblerError{Line: p.Line, Text: p.SourceLine, Msg: "unknown or ill-typed instruction"}
	}
	low30, err := vid.Encode(p, ctx)
	if err != nil {
		return 0, &AssemblerError{Line: p.Line, Text: p.SourceLine, Msg: err.Error()}
	}
	return isa.EncodeWord(unit.Tag, low30), nil
}
