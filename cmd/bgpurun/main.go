// Package main provides bgpurun, the BGPU emulator's command-line
// entry point: binary -> dispatch -> register trace.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sarchlab/bgpu/driver"
	"github.com/sarchlab/bgpu/emu"
)

type runCmd struct {
	Binary string `arg name:"binary" help:"Path to an assembled BGPU binary" type:"existingfile"`

	MemSize   int    `help:"Device memory size in bytes" default:"1048576"`
	WarpWidth int    `help:"Number of lockstep threads per warp" default:"32"`
	TBSize    int    `help:"Threads per block" default:"32"`
	NBlocks   int    `help:"Number of thread blocks to dispatch" default:"1"`
	TGroupID  int    `help:"Thread-group id recorded alongside the dispatch" default:"0"`
	Params    []uint32 `help:"Kernel arguments, packed as a parameter block before dispatch"`

	TracePath string `help:"Write the register trace as JSON to this path"`
	Verbose   bool   `short:"v" help:"Print the dispatch parameters and a completion line (individual steps are not printed)"`
}

func (c *runCmd) Run() error {
	program, err := os.ReadFile(c.Binary)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Binary, err)
	}

	d := driver.NewDriver(c.MemSize, c.WarpWidth)

	pc, err := d.Alloc(len(program))
	if err != nil {
		return fmt.Errorf("allocating program space: %w", err)
	}

	dpAddr, err := d.AllocParams(c.Params)
	if err != nil {
		return fmt.Errorf("allocating parameter block: %w", err)
	}

	var opts []emu.CUOption
	var jsonSink *emu.JSONTraceSink
	if c.TracePath != "" {
		f, err := os.Create(c.TracePath)
		if err != nil {
			return fmt.Errorf("creating trace file %s: %w", c.TracePath, err)
		}
		defer f.Close()
		jsonSink = emu.NewJSONTraceSink(f)
		opts = append(opts, emu.WithTraceSink(jsonSink))
	}

	if c.Verbose {
		fmt.Printf("dispatching pc=0x%x dp_addr=0x%x tb_size=%d n_blocks=%d\n", pc, dpAddr, c.TBSize, c.NBlocks)
	}

	cu, err := d.Dispatch(program, pc, dpAddr, c.TBSize, c.NBlocks, c.TGroupID, opts...)
	if err != nil {
		if cu != nil && c.Verbose {
			fmt.Fprintf(os.Stderr, "dispatch failed after partial execution: %v\n", err)
		}
		return fmt.Errorf("dispatch: %w", err)
	}

	if jsonSink != nil {
		if err := jsonSink.Flush(); err != nil {
			return fmt.Errorf("writing trace to %s: %w", c.TracePath, err)
		}
	}

	if c.Verbose {
		fmt.Println("dispatch completed")
	}
	return nil
}

var root struct {
	Run runCmd `cmd help:"Dispatch an assembled BGPU binary and run it to completion"`
}

func main() {
	cli := kong.Parse(&root)
	err := cli.Run()
	cli.FatalIfErrorf(err)
}
