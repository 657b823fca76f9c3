// ops_branch.go - branch instructions and condition-register logical ops
//
// Grounded on cpu_ie32.go's jump/call handlers for the "compute target,
// optionally save link, optionally fall through" shape, generalised to
// PowerPC's BO/BI conditional-branch encoding (spec.md §4.1).

package main

const (
	xlBclr  = 16
	xlBcctr = 528

	xlMcrf = 0

	xlCrand  = 257
	xlCror   = 449
	xlCrxor  = 193
	xlCrnand = 225
	xlCrnor  = 33
	xlCreqv  = 289
	xlCrandc = 129
	xlCrorc  = 417
)

func registerBranchOps() {
	primaryTable[18] = opB
	primaryTable[16] = opBc

	table19[xlBclr] = opBclr
	table19[xlBcctr] = opBcctr
	table19[xlMcrf] = opMcrf

	table19[xlCrand] = crLogical(func(a, b bool) bool { return a && b })
	table19[xlCror] = crLogical(func(a, b bool) bool { return a || b })
	table19[xlCrxor] = crLogical(func(a, b bool) bool { return a != b })
	table19[xlCrnand] = crLogical(func(a, b bool) bool { return !(a && b) })
	table19[xlCrnor] = crLogical(func(a, b bool) bool { return !(a || b) })
	table19[xlCreqv] = crLogical(func(a, b bool) bool { return a == b })
	table19[xlCrandc] = crLogical(func(a, b bool) bool { return a && !b })
	table19[xlCrorc] = crLogical(func(a, b bool) bool { return a || !b })
}

func crBit(s *State, n int) bool {
	return s.CR&(1<<(31-uint(n))) != 0
}

func setCrBit(s *State, n int, v bool) {
	mask := uint32(1) << (31 - uint(n))
	if v {
		s.CR |= mask
	} else {
		s.CR &^= mask
	}
}

func branchTaken(c *CPU, i instr) bool {
	bo, bi := i.bo(), i.bi()
	var ctrOk bool
	if bo&0x4 == 0 { // decrement CTR unless BO[2] set
		c.State.CTR--
		ctrOk = (c.State.CTR != 0) == (bo&0x2 == 0)
	} else {
		ctrOk = true
	}
	var condOk bool
	if bo&0x10 != 0 { // ignore condition
		condOk = true
	} else {
		condOk = crBit(c.State, bi) == (bo&0x8 != 0)
	}
	return ctrOk && condOk
}

func opB(c *CPU) {
	i := instr(c.State.CurInstr)
	target := branchTarget(c, i.li(), i.aa())
	if i.lk() {
		c.State.LR = c.State.PC
	}
	c.State.PC = target
}

func opBc(c *CPU) {
	i := instr(c.State.CurInstr)
	taken := branchTaken(c, i)
	link := c.State.PC
	if taken {
		c.State.PC = branchTarget(c, i.bd(), i.aa())
	}
	if i.lk() {
		c.State.LR = link
	}
}

func opBclr(c *CPU) {
	i := instr(c.State.CurInstr)
	taken := branchTaken(c, i)
	link := c.State.PC
	target := c.State.LR &^ 0x3
	if taken {
		c.State.PC = target
	}
	if i.lk() {
		c.State.LR = link
	}
}

func opBcctr(c *CPU) {
	i := instr(c.State.CurInstr)
	// bcctr evaluates only the condition (honouring the condition-ignore
	// bit) inline; CTR is neither tested nor decremented.
	bo := i.bo()
	condOk := bo&0x10 != 0 || crBit(c.State, i.bi()) == (bo&0x8 != 0)
	link := c.State.PC
	target := c.State.CTR &^ 0x3
	if condOk {
		c.State.PC = target
	}
	if i.lk() {
		c.State.LR = link
	}
}

func branchTarget(c *CPU, disp int32, absolute bool) uint32 {
	if absolute {
		return uint32(disp)
	}
	return c.instrPC + uint32(disp)
}

func opMcrf(c *CPU) {
	i := instr(c.State.CurInstr)
	src := i.crbA() >> 2 // source crf number is encoded in the crbA field's top bits
	c.State.SetCRField(i.crfD(), c.State.CRField(src))
}

func crLogical(f func(a, b bool) bool) Handler {
	return func(c *CPU) {
		i := instr(c.State.CurInstr)
		result := f(crBit(c.State, i.crbA()), crBit(c.State, i.crbB()))
		setCrBit(c.State, i.crbD(), result)
	}
}
