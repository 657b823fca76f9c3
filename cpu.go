// cpu.go - top-level CPU wiring and the dispatch loop

package main

// CPU owns one guest architectural state, its MMU, the shared MMIO router,
// and the interrupt controller feeding its external-interrupt input. It is
// the single dispatch thread described in spec.md §5; nothing else mutates
// State concurrently with Step/Run.
type CPU struct {
	State       *State
	MMU         *MMU
	Bus         *Router
	Interrupts  *InterruptController
	Log         *Logger

	instrPC uint32 // address of the instruction currently executing
	stop    bool   // cooperative stop request, checked between instructions

	// instrCount counts executed instructions. Interrupt/DEC checks are not
	// throttled by it: this core performs them on every instruction boundary
	// since interpretation is already the slow path.
	instrCount uint64
}

// NewCPU wires a CPU against a freshly-constructed RAM-backed bus and
// interrupt controller, or against caller-supplied ones (machine bring-up is
// an external collaborator per spec.md §1; this constructor just needs
// something to translate against).
func NewCPU(ram *RAM, bus *Router, intc *InterruptController) *CPU {
	state := NewState()
	return &CPU{
		State:      state,
		MMU:        NewMMU(state, ram, bus),
		Bus:        bus,
		Interrupts: intc,
		Log:        NewLogger("cpu"),
	}
}

// Reset applies the architectural reset values: MSR with translation and
// interrupts disabled, PC at the reset vector, BATs and SRs invalid/zeroed.
// spec.md §3: "Guest state is created once at reset, reset by the reset
// vector."
func (c *CPU) Reset() {
	*c.State = State{}
	c.State.MSR = 0 // IR=DR=EE=PR=0: real-mode, supervisor, interrupts masked
	c.State.PC = vectorOffset[ExcReset]
	c.MMU.InvalidateAll()
}

// Stop requests that the dispatch loop complete the current instruction and
// return, per spec.md §5's cancellation model.
func (c *CPU) Stop() { c.stop = true }

// raise delivers a guest exception: it updates SRR0/SRR1/MSR/PC via
// State.raise, using the address of the currently-dispatching instruction
// (not the incremented PC that Step sets before calling the handler).
func (c *CPU) raise(exc *Exception) {
	c.State.PC = c.instrPC
	c.State.raise(exc.Kind, exc.Cause)
}

// checkPending samples the external-interrupt and decrementer inputs at an
// instruction boundary, per spec.md §4.7/§7. It is called before fetching
// the next instruction so a pending condition is taken "at the end of the
// current instruction" as spec.md §4.7 requires.
func (c *CPU) checkPending() bool {
	if c.State.msrBit(MSRBitEE) && c.Interrupts != nil && c.Interrupts.Asserted() {
		c.State.raise(ExcExternalInterrupt, 0)
		return true
	}
	if c.State.DEC == 0 {
		c.State.DEC = 0xFFFFFFFF
		if c.State.msrBit(MSRBitEE) {
			c.State.raise(ExcDecrementer, 0)
			return true
		}
	} else {
		c.State.DEC--
	}
	return false
}

// Step executes exactly one instruction: sample pending interrupts, fetch,
// decode, dispatch, advance PC (spec.md §2's steady-state control flow).
func (c *CPU) Step() {
	if c.checkPending() {
		return
	}

	pc := c.State.PC
	c.instrPC = pc

	word, exc := c.MMU.FetchInstruction(pc)
	if exc != nil {
		c.raise(exc)
		return
	}

	c.State.CurInstr = word
	handler := decode(word)
	if handler == nil {
		c.raise(&Exception{Kind: ExcProgram, Cause: ProgramCauseIllegal})
		return
	}

	c.State.PC = pc + 4 // speculative; branch/system handlers may override
	handler(c)
	c.instrCount++
}

// Run steps the CPU until Stop is called.
func (c *CPU) Run() {
	c.stop = false
	for !c.stop {
		c.Step()
	}
}
