package asm

import (
	"fmt"
	"strings"
)

// ParsedInstruction is one line of BGPU assembly turned into structured
// form: mnemonic, modifier list, operand list, and bookkeeping the
// assembler fills in later (an attached label, and the instruction's
// final address once expansion and placement have run).
type ParsedInstruction struct {
	Mnemonic   string
	Modifiers  []Modifier
	Operands   []Operand
	SourceLine string
	Line       int
	Label      string

	// Addr is set by the assembler after expansion; -1 until then.
	Addr int32
}

// HasModifier reports whether any modifier has the given kind.
func (p ParsedInstruction) HasModifier(kind ModifierKind) bool {
	return len(p.FindModifiers(kind)) > 0
}

// FindModifiers returns every modifier of the given kind, in order.
func (p ParsedInstruction) FindModifiers(kind ModifierKind) []Modifier {
	var found []Modifier
	for _, m := range p.Modifiers {
		if m.Kind == kind {
			found = append(found, m)
		}
	}
	return found
}

// DTypeModifiers returns the IDTYPE/FDTYPE/BDTYPE modifiers, the ones
// that carry a data width or a float/bool tag.
func (p ParsedInstruction) DTypeModifiers() []Modifier {
	mods := p.FindModifiers(IDType)
	mods = append(mods, p.FindModifiers(FDType)...)
	mods = append(mods, p.FindModifiers(BDType)...)
	return mods
}

// IsRR reports whether the instruction is marked register-register.
func (p ParsedInstruction) IsRR() bool { return p.HasModifier(RR) }

// IsRI reports whether the instruction is marked register-immediate.
func (p ParsedInstruction) IsRI() bool { return p.HasModifier(RI) }

func (p ParsedInstruction) String() string {
	mods := make([]string, len(p.Modifiers))
	for i, m := range p.Modifiers {
		mods[i] = m.Value
	}
	ops := make([]string, len(p.Operands))
	for i, o := range p.Operands {
		ops[i] = o.String()
	}
	text := p.Mnemonic
	if len(mods) > 0 {
		text += "." + strings.Join(mods, ".")
	}
	text += " " + strings.Join(ops, ", ")
	if p.Label != "" {
		return fmt.Sprintf("%s: %s", p.Label, text)
	}
	return text
}

// ParseError reports a malformed source line, with the line number and
// raw text preserved for diagnostics, per spec.md §7.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Parse turns a sequence of source lines into ParsedInstructions,
// per spec.md §4.2: strip comments, skip blank lines, attach a label
// (on its own line or in front of an instruction on the same line) to
// the next instruction, split the head token on '.' into
// mnemonic and modifiers, classify the remaining tokens as operands.
//
// Unknown mnemonics are not a parse error; the assembler decides
// whether a mnemonic/modifier/operand combination is legal.
func Parse(lines []string) ([]ParsedInstruction, error) {
	var out []ParsedInstruction
	pendingLabel := ""
	havePendingLabel := false

	for i, raw := range lines {
		lineNo := i + 1
		line := raw
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)

		if strings.HasSuffix(fields[0], ":") {
			if havePendingLabel {
				return nil, &ParseError{Line: lineNo, Text: raw, Msg: "two consecutive labels"}
			}
			label := strings.TrimSuffix(fields[0], ":")
			if label == "" {
				return nil, &ParseError{Line: lineNo, Text: raw, Msg: "empty label"}
			}
			pendingLabel = label
			havePendingLabel = true
			fields = fields[1:]
			if len(fields) == 0 {
				continue
			}
		}

		head := fields[0]
		headParts := strings.Split(head, ".")
		mnemonic := headParts[0]

		modifiers := make([]Modifier, 0, len(headParts)-1)
		for _, m := range headParts[1:] {
			modifiers = append(modifiers, ClassifyModifier(m))
		}

		operands := make([]Operand, 0, len(fields)-1)
		for _, tok := range fields[1:] {
			tok = strings.TrimSuffix(tok, ",")
			op, err := ParseOperand(tok)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Text: raw, Msg: err.Error()}
			}
			operands = append(operands, op)
		}

		inst := ParsedInstruction{
			Mnemonic:   mnemonic,
			Modifiers:  modifiers,
			Operands:   operands,
			SourceLine: raw,
			Line:       lineNo,
			Addr:       -1,
		}
		if havePendingLabel {
			inst.Label = pendingLabel
			havePendingLabel = false
		}
		out = append(out, inst)
	}

	return out, nil
}
