// Package main is a stub entry point for the BGPU toolchain.
//
// BGPU has two real commands, each its own binary:
//
//	go run ./cmd/bgpuasm assemble program.asm -o program.bgpu
//	go run ./cmd/bgpurun run program.bgpu
package main

import "fmt"

func main() {
	fmt.Println("BGPU toolchain")
	fmt.Println()
	fmt.Println("Assemble: go run ./cmd/bgpuasm assemble <source.asm> -o <out.bgpu>")
	fmt.Println("Run:      go run ./cmd/bgpurun run <binary.bgpu>")
}
