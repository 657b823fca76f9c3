// ops_system_test.go - privilege enforcement and SPR/BAT register round-trips

package main

import "testing"

// sprRawField inverts instr.spr()'s split 5+5 bit encoding so tests can
// target a specific SPR number.
func sprRawField(n int) uint32 {
	lo := uint32(n) >> 5 & 0x1F
	hi := uint32(n) & 0x1F
	return lo | hi<<5
}

func sprXForm(rD int, spr int, xo uint32) uint32 {
	return 31<<26 | uint32(rD)<<21 | sprRawField(spr)<<11 | xo<<1
}

func TestMtsprMfsprXERRoundTrip(t *testing.T) {
	c, ram, _ := newTestCPU()
	c.State.SetGPR32(1, 0xA)

	mtspr := sprXForm(1, sprXER, xoMtspr)
	if err := ram.Write(0, 4, uint64(mtspr)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0
	c.Step()
	if c.State.XER != 0xA {
		t.Fatalf("XER = %#x after mtspr, want 0xA", c.State.XER)
	}

	mfspr := sprXForm(2, sprXER, xoMfspr)
	if err := ram.Write(4, 4, uint64(mfspr)); err != nil {
		t.Fatal(err)
	}
	c.Step()
	if c.State.GPR32(2) != 0xA {
		t.Errorf("mfspr readback = %#x, want 0xA", c.State.GPR32(2))
	}
}

func TestMtmsrRequiresPrivilege(t *testing.T) {
	c, ram, _ := newTestCPU()
	c.State.setMSRBit(MSRBitPR, true) // user mode

	word := sprXForm(0 /* unused for mtmsr's rS */, 0, xoMtmsr) | uint32(1)<<21 // rS=1
	if err := ram.Write(0, 4, uint64(word)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0
	c.Step()

	if c.State.PC != vectorOffset[ExcProgram] {
		t.Errorf("mtmsr in user mode should raise a privilege program exception, PC=%#x", c.State.PC)
	}
}

func TestBatUpperRoundTrip(t *testing.T) {
	var b BatPair
	writeBatU(&b, 0xC0000003) // BEPI=0xC0000000, Vs=1, Vp=1, block size index 0
	if !b.ValidSuper || !b.ValidUser {
		t.Errorf("writeBatU should set both Vs and Vp from bits 1,0")
	}
	if b.VirtualBase != 0xC0000000 {
		t.Errorf("VirtualBase = %#x, want 0xC0000000", b.VirtualBase)
	}
	if got := readBatU(&b); got&0x3 != 0x3 {
		t.Errorf("readBatU round-trip lost the Vs/Vp bits: %#x", got)
	}
}

func TestMtcrfMasksOnlyNamedFields(t *testing.T) {
	c, ram, _ := newTestCPU()
	c.State.CR = 0xFFFFFFFF
	c.State.SetGPR32(1, 0x00000000)

	// mtcrf with FXM selecting only field 0 (the top nibble).
	fxm := uint32(0x80) << 12
	word := uint32(31)<<26 | uint32(1)<<21 | fxm | xoMtcrf<<1
	if err := ram.Write(0, 4, uint64(word)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0
	c.Step()

	if c.State.CRField(0) != 0 {
		t.Errorf("CRField(0) = %#x, want 0 (field 0 was named by FXM)", c.State.CRField(0))
	}
	if c.State.CRField(1) != 0xF {
		t.Errorf("CRField(1) = %#x, want 0xF (field 1 was not named by FXM, untouched)", c.State.CRField(1))
	}
}
