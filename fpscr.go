// fpscr.go - FPSCR bit layout and accessors

package main

// FPSCR bit positions, numbered from bit 31 (MSB) down per the architecture
// manual's own bit numbering turned into Go shift amounts (bit 0 = LSB).
const (
	fpscrFX     = 1 << 31 // exception summary (sticky)
	fpscrFEX    = 1 << 30 // exception summary enabled
	fpscrVX     = 1 << 29 // invalid-operation summary
	fpscrOX     = 1 << 28 // overflow
	fpscrUX     = 1 << 27 // underflow
	fpscrZX     = 1 << 26 // zero divide
	fpscrXX     = 1 << 25 // inexact
	fpscrVXSNAN = 1 << 24
	fpscrVXISI  = 1 << 23
	fpscrVXIDI  = 1 << 22
	fpscrVXZDZ  = 1 << 21
	fpscrVXIMZ  = 1 << 20
	fpscrVXVC   = 1 << 19
	fpscrFR     = 1 << 18
	fpscrFI     = 1 << 17
	fpscrFPRF   = 0x1F << 12 // FPCC + class bits, only FPCC (bits 12-15) used here
	fpscrFPCC   = 0xF << 12
	fpscrFU     = 1 << 12 // unordered/NaN
	fpscrFE     = 1 << 13 // equal/zero
	fpscrFG     = 1 << 14 // greater than
	fpscrFL     = 1 << 15 // less than
	fpscrVXSOFT = 1 << 10
	fpscrVXSQRT = 1 << 9
	fpscrVXCVI  = 1 << 8
	fpscrVEMask = 1 << 7 // invalid-operation exception enable (not individually decomposed)
	fpscrRNMask = 0x3
)

// all individual VX cause bits, used to recompute the VX summary.
const fpscrVXCauseMask = fpscrVXSNAN | fpscrVXISI | fpscrVXIDI | fpscrVXZDZ |
	fpscrVXIMZ | fpscrVXVC | fpscrVXSOFT | fpscrVXSQRT | fpscrVXCVI

// recomputeFEX sets FEX to the OR of the VX/OX/UX/ZX/XX summaries, each
// gated on its enable bit (VE=bit 7, OE=6, UE=5, ZE=4, XE=3 in Go shift
// numbering). The enable bits change only through guest writes to FPSCR; no
// handler in this core raises a program exception when FEX is set.
func recomputeFEX(fpscr uint32) uint32 {
	summary := fpscr&fpscrVX != 0 && fpscr&fpscrVEMask != 0 ||
		fpscr&fpscrOX != 0 && fpscr&(1<<6) != 0 ||
		fpscr&fpscrUX != 0 && fpscr&(1<<5) != 0 ||
		fpscr&fpscrZX != 0 && fpscr&(1<<4) != 0 ||
		fpscr&fpscrXX != 0 && fpscr&(1<<3) != 0
	if summary {
		return fpscr | fpscrFEX
	}
	return fpscr &^ fpscrFEX
}

// setFPSCRCause ORs the given cause bits into FPSCR, sets FX (sticky), and
// recomputes the VX summary and FEX, per spec.md §4.4 step 2.
func (s *State) setFPSCRCause(bits uint32) {
	s.FPSCR |= bits | fpscrFX
	if s.FPSCR&fpscrVXCauseMask != 0 {
		s.FPSCR |= fpscrVX
	}
	s.FPSCR = recomputeFEX(s.FPSCR)
}

// clearFPCC zeroes the FPCC field ahead of deriving a fresh one.
func (s *State) clearFPCC() { s.FPSCR &^= fpscrFPCC }

// setFPCCFromResult derives FL/FG/FE/FU from a computed double result, per
// spec.md §4.4 step 4.
func (s *State) setFPCCFromResult(v float64) {
	s.clearFPCC()
	switch {
	case v != v: // NaN
		s.FPSCR |= fpscrFU
	case v > 0:
		s.FPSCR |= fpscrFG
	case v < 0:
		s.FPSCR |= fpscrFL
	default:
		s.FPSCR |= fpscrFE
	}
	if isInfFloat(v) {
		s.FPSCR |= fpscrFU
	}
}

func isInfFloat(v float64) bool { return v > maxFiniteFloat64 || v < -maxFiniteFloat64 }

const maxFiniteFloat64 = 1.7976931348623157e+308

// roundingMode returns the two-bit FPSCR[RN] field.
func (s *State) roundingMode() uint32 { return s.FPSCR & fpscrRNMask }

// SetCR1FromFPSCR copies FX/FEX/VX/OX into CR1, per spec.md §4.1's Rc-bit
// contract for FP instructions.
func (s *State) SetCR1FromFPSCR() {
	var field uint32
	if s.FPSCR&fpscrFX != 0 {
		field |= 1 << CRBitLT
	}
	if s.FPSCR&fpscrFEX != 0 {
		field |= 1 << CRBitGT
	}
	if s.FPSCR&fpscrVX != 0 {
		field |= 1 << CRBitEQ
	}
	if s.FPSCR&fpscrOX != 0 {
		field |= 1 << CRBitSO
	}
	s.SetCRField(1, field)
}
