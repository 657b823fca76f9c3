//go:build !amd64 && !arm64

// fpu_round_generic.go - host FPU rounding-mode capability detection (fallback)

package main

// hostRoundingModeSupported falls back to reporting no native rounding
// control on architectures this core hasn't special-cased; the math/big
// emulation in fpu_round.go is used either way.
func hostRoundingModeSupported() bool { return false }
