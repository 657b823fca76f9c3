// ppcregisterdump - dumps the bit layout of the core's control registers
//
// A standalone diagnostic, grounded on the teacher's cmd/ie32to64 shape: a
// small package main with its own copy of the layout tables it describes
// (the core itself is package main and exports nothing importable, matching
// the teacher's own flat layout), colourised only when stdout is a real
// terminal.
package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

type bitField struct {
	name string
	bits string
	desc string
}

var msrFields = []bitField{
	{"POW", "18", "power management enable"},
	{"ILE", "16", "exception little-endian mode"},
	{"EE", "15", "external interrupt enable"},
	{"PR", "14", "problem (user) state"},
	{"FP", "13", "floating-point available"},
	{"ME", "12", "machine check enable"},
	{"FE0/FE1", "11,8", "floating-point exception mode"},
	{"SE", "10", "single-step trace enable"},
	{"BE", "9", "branch trace enable"},
	{"IP", "6", "exception prefix (vector base)"},
	{"IR", "5", "instruction address translation"},
	{"DR", "4", "data address translation"},
	{"RI", "1", "recoverable exception"},
	{"LE", "0", "little-endian mode"},
}

var fpscrFields = []bitField{
	{"FX", "31", "exception summary (sticky)"},
	{"FEX", "30", "exception summary enabled"},
	{"VX", "29", "invalid-operation summary"},
	{"OX", "28", "overflow"},
	{"UX", "27", "underflow"},
	{"ZX", "26", "zero divide"},
	{"XX", "25", "inexact"},
	{"VXSNAN", "24", "invalid: signaling NaN"},
	{"VXISI", "23", "invalid: Inf-Inf"},
	{"VXIDI", "22", "invalid: Inf/Inf"},
	{"VXZDZ", "21", "invalid: 0/0"},
	{"VXIMZ", "20", "invalid: 0*Inf"},
	{"VXVC", "19", "invalid: compare"},
	{"FPCC", "15-12", "FL/FG/FE/FU condition bits"},
	{"VXSOFT", "10", "invalid: software request"},
	{"VXSQRT", "9", "invalid: sqrt of negative"},
	{"VXCVI", "8", "invalid: convert-to-integer"},
	{"RN", "1-0", "rounding mode"},
}

var batFields = []bitField{
	{"BEPI", "31-17", "block effective page index"},
	{"BL (this core)", "5-2", "block-size index (128KiB << n)"},
	{"Vs", "1", "valid in supervisor mode"},
	{"Vp", "0", "valid in user mode"},
}

func dump(title string, fields []bitField, useColor bool) {
	if useColor {
		fmt.Printf("\033[1m%s\033[0m\n", title)
	} else {
		fmt.Println(title)
	}
	for _, f := range fields {
		fmt.Printf("  %-16s bits %-6s %s\n", f.name, f.bits, f.desc)
	}
	fmt.Println()
}

func main() {
	useColor := term.IsTerminal(int(os.Stdout.Fd()))
	dump("MSR", msrFields, useColor)
	dump("FPSCR", fpscrFields, useColor)
	dump("BATU (this core's simplified encoding)", batFields, useColor)
}
