// fpu_round_amd64.go - host FPU rounding-mode capability detection (amd64)

package main

import "golang.org/x/sys/cpu"

// hostRoundingModeSupported reports whether the host CPU exposes the SSE2
// MXCSR rounding-control field this core's interpretation loop could, in
// principle, drive directly instead of going through fpu_round.go's
// math/big emulation. Informational only: logged once at startup so a
// register-dump or diagnostic build can note it, per SPEC_FULL.md §3's
// x/sys/cpu wiring. The emulation path is used unconditionally regardless
// of the answer, since portable correctness across hosts matters more than
// the (unmeasured) speed of native MXCSR control here.
func hostRoundingModeSupported() bool {
	return cpu.X86.HasSSE2
}
