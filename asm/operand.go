package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/bgpu/isa"
)

// OperandKind classifies the syntactic shape of an Operand.
type OperandKind uint8

// Operand kinds, per spec.md §3.
const (
	Register OperandKind = iota
	IntImmediate
	FloatImmediate
	Special
)

func (k OperandKind) String() string {
	switch k {
	case Register:
		return "register"
	case IntImmediate:
		return "int-immediate"
	case FloatImmediate:
		return "float-immediate"
	case Special:
		return "special"
	default:
		return "unknown"
	}
}

// Operand is the tagged-union value produced by parsing one token of
// instruction source: a register id, an integer immediate, a float
// immediate, or a named special source such as %l or %param.
type Operand struct {
	Kind    OperandKind
	Reg     uint8
	Int     int64
	Float   float32
	Special string
}

func (o Operand) String() string {
	switch o.Kind {
	case Register:
		return fmt.Sprintf("r%d", o.Reg)
	case IntImmediate:
		return strconv.FormatInt(o.Int, 10)
	case FloatImmediate:
		return strconv.FormatFloat(float64(o.Float), 'g', -1, 32)
	case Special:
		return "%" + o.Special
	default:
		return "?"
	}
}

// ParseOperand classifies a single operand token per spec.md §3/§6:
//
//	rN               register 0..255
//	[-]digits[U]      integer immediate (U marks an unsigned literal)
//	0xHEX[U]          integer immediate written in hexadecimal
//	[-]digits.digits  float immediate
//	0fXXXXXXXX        float immediate given as its IEEE-754 bit pattern
//	%name             special source
func ParseOperand(tok string) (Operand, error) {
	switch {
	case strings.HasPrefix(tok, "r"):
		digits := tok[1:]
		n, err := strconv.ParseUint(digits, 10, 16)
		if err != nil || n > 255 {
			return Operand{}, fmt.Errorf("malformed register operand %q", tok)
		}
		return Operand{Kind: Register, Reg: uint8(n)}, nil

	case strings.HasPrefix(tok, "0f"):
		bits, err := strconv.ParseUint(tok[2:], 16, 32)
		if err != nil {
			return Operand{}, fmt.Errorf("malformed hex float operand %q", tok)
		}
		return Operand{Kind: FloatImmediate, Float: isa.BitsToFloat32(uint32(bits))}, nil

	case strings.HasPrefix(tok, "%"):
		name := tok[1:]
		if name == "" {
			return Operand{}, fmt.Errorf("malformed special operand %q", tok)
		}
		return Operand{Kind: Special, Special: name}, nil

	case strings.Contains(tok, "."):
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return Operand{}, fmt.Errorf("malformed float operand %q", tok)
		}
		return Operand{Kind: FloatImmediate, Float: float32(f)}, nil

	default:
		body := tok
		if strings.HasSuffix(body, "U") {
			body = strings.TrimSuffix(body, "U")
		}
		base := 10
		if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
			body, base = body[2:], 16
		}
		n, err := strconv.ParseInt(body, base, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("malformed numeric operand %q", tok)
		}
		return Operand{Kind: IntImmediate, Int: n}, nil
	}
}
