// Package main provides bgpuasm, the BGPU assembler's command-line
// entry point: source.asm -> packed instruction stream.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sarchlab/bgpu/asm"
)

type assembleCmd struct {
	Source string `arg name:"source" help:"Path to a BGPU assembly source file" type:"existingfile"`
	Output string `short:"o" help:"Output path for the encoded binary" default:"a.bgpu"`
	Base   int32  `help:"Word address of the first instruction" default:"0"`

	Verbose bool `short:"v" help:"Print one line per parsed instruction (before expansion) and a size summary"`
}

func (c *assembleCmd) Run() error {
	src, err := os.ReadFile(c.Source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Source, err)
	}

	lines := splitLines(string(src))
	parsed, err := asm.Parse(lines)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.Source, err)
	}

	if c.Verbose {
		for _, p := range parsed {
			fmt.Printf("parsed: %s\n", p.String())
		}
	}

	assembler := asm.NewAssembler(asm.WithBaseAddress(c.Base))
	bin, err := assembler.AssembleParsed(parsed)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", c.Source, err)
	}

	if c.Verbose {
		fmt.Printf("encoded %d bytes (%d instructions) at base 0x%x\n", len(bin), len(bin)/4, c.Base)
	}

	if err := os.WriteFile(c.Output, bin, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.Output, err)
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

var root struct {
	Assemble assembleCmd `cmd help:"Assemble a BGPU source file into a binary"`
}

func main() {
	cli := kong.Parse(&root)
	err := cli.Run()
	cli.FatalIfErrorf(err)
}
