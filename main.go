// main.go - minimal bring-up harness for the core engine
//
// Machine assembly (concrete device models, image loading formats, host A/V
// bridging, the debug monitor) is explicitly out of scope for this core
// (spec.md §1's Non-goals); this entry point only wires RAM, the MMIO
// router, an interrupt controller, and a CPU together and optionally loads a
// raw binary image at a base address, mirroring main.go's original
// argv-driven bootstrap shape one level down from its GUI/backend wiring.

package main

import (
	"fmt"
	"os"
	"strconv"
)

func usage() {
	fmt.Println("Usage: coreemu <image.bin> [load-address-hex]")
	fmt.Println("  load-address-hex defaults to 0x00000000")
}

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		usage()
		os.Exit(1)
	}

	loadAddr := uint32(0)
	if len(os.Args) == 3 {
		v, err := strconv.ParseUint(os.Args[2], 16, 32)
		if err != nil {
			fmt.Printf("invalid load address %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		loadAddr = uint32(v)
	}

	image, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("failed to read image: %v\n", err)
		os.Exit(1)
	}

	const ramSize = 64 * 1024 * 1024
	ram := NewRAM(ramSize)
	bus := NewRouter()
	intc := NewInterruptController()
	if err := bus.Register(0xF0000000, 0x30, intc); err != nil {
		fmt.Printf("failed to register interrupt controller: %v\n", err)
		os.Exit(1)
	}

	cpu := NewCPU(ram, bus, intc)
	cpu.Reset()

	for i, b := range image {
		if err := ram.Write(loadAddr+uint32(i), 1, uint64(b)); err != nil {
			fmt.Printf("failed to load image at offset %#x: %v\n", i, err)
			os.Exit(1)
		}
	}
	cpu.State.PC = loadAddr

	cpu.Log.Infof("starting core at pc=%#08x, %d bytes loaded, host native FP rounding control=%v",
		loadAddr, len(image), hostRoundingModeSupported())
	cpu.Run()
}
