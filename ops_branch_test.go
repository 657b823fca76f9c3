// ops_branch_test.go - branch-taken semantics and CR-logical ops

package main

import "testing"

func bForm(li int32, aa, lk bool) uint32 {
	word := uint32(18)<<26 | (uint32(li) & 0x3FFFFFC)
	if aa {
		word |= 2
	}
	if lk {
		word |= 1
	}
	return word
}

func bcForm(bo, bi int, bd int32, aa, lk bool) uint32 {
	word := uint32(16)<<26 | uint32(bo)<<21 | uint32(bi)<<16 | (uint32(bd) & 0xFFFC)
	if aa {
		word |= 2
	}
	if lk {
		word |= 1
	}
	return word
}

func xlForm19(crbD, crbA, crbB int, xo uint32) uint32 {
	return 19<<26 | uint32(crbD)<<21 | uint32(crbA)<<16 | uint32(crbB)<<11 | xo<<1
}

func TestUnconditionalBranchAbsolute(t *testing.T) {
	c, ram, _ := newTestCPU()
	word := bForm(0x2000, true, false) // b 0x2000 (absolute)
	if err := ram.Write(0, 4, uint64(word)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0
	c.Step()
	if c.State.PC != 0x2000 {
		t.Errorf("PC = %#x, want 0x2000", c.State.PC)
	}
}

func TestBranchAndLinkSavesReturnAddress(t *testing.T) {
	c, ram, _ := newTestCPU()
	word := bForm(0x40, false, true) // bl .+0x40
	if err := ram.Write(0x1000, 4, uint64(word)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0x1000
	c.Step()
	if c.State.LR != 0x1004 {
		t.Errorf("LR = %#x, want 0x1004 (the instruction after the branch)", c.State.LR)
	}
	if c.State.PC != 0x1040 {
		t.Errorf("PC = %#x, want 0x1040", c.State.PC)
	}
}

func TestConditionalBranchNotTakenWhenConditionFails(t *testing.T) {
	c, ram, _ := newTestCPU()
	setCrBit(c.State, 2, false) // CR bit 2 (cr0[EQ]) clear

	word := bcForm(0x0C /* branch if true, CTR not decremented */, 2, 0x100, false, false)
	if err := ram.Write(0, 4, uint64(word)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0
	c.Step()
	if c.State.PC != 4 {
		t.Errorf("PC = %#x, want 4 (branch should not have been taken)", c.State.PC)
	}
}

func TestConditionalBranchTakenWhenConditionHolds(t *testing.T) {
	c, ram, _ := newTestCPU()
	setCrBit(c.State, 2, true)

	word := bcForm(0x0C, 2, 0x100, false, false)
	if err := ram.Write(0, 4, uint64(word)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0
	c.Step()
	if c.State.PC != 0x100 {
		t.Errorf("PC = %#x, want 0x100 (branch should have been taken)", c.State.PC)
	}
}

func TestCrAndCombinesBits(t *testing.T) {
	c, ram, _ := newTestCPU()
	setCrBit(c.State, 0, true)
	setCrBit(c.State, 1, true)

	word := xlForm19(4, 0, 1, xlCrand) // crand 4,0,1
	if err := ram.Write(0, 4, uint64(word)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0
	c.Step()
	if !crBit(c.State, 4) {
		t.Errorf("crand of two set bits should set the destination bit")
	}
}

func TestMcrfCopiesField(t *testing.T) {
	c, ram, _ := newTestCPU()
	c.State.SetCRField(2, 0xC)

	word := uint32(19)<<26 | uint32(1)<<23 | uint32(2)<<18 | xlMcrf<<1 // mcrf cr1,cr2
	if err := ram.Write(0, 4, uint64(word)); err != nil {
		t.Fatal(err)
	}
	c.State.PC = 0
	c.Step()
	if c.State.CRField(1) != 0xC {
		t.Errorf("CRField(1) = %#x, want 0xC copied from cr2", c.State.CRField(1))
	}
}
