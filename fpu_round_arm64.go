// fpu_round_arm64.go - host FPU rounding-mode capability detection (arm64)

package main

import "golang.org/x/sys/cpu"

// hostRoundingModeSupported mirrors fpu_round_amd64.go's informational
// detection, reporting whether the host's FPCR rounding-mode field is the
// architecturally-guaranteed one (ARM64 always has a VFP unit, so this is
// effectively constant-true; kept as its own query point rather than a
// literal so the three arch files stay structurally parallel).
func hostRoundingModeSupported() bool {
	return cpu.ARM64.HasFP
}
