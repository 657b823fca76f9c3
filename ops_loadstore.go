// ops_loadstore.go - integer load/store instructions
//
// Grounded on machine_bus.go's width-dispatched read/write helpers, routed
// here through MMU.Load/MMU.Store instead of a flat byte slice. Floating
// -point loads/stores live in ops_fpu.go since they also touch FPSCR/FPR
// bit-aliasing.

package main

const (
	xoLwzx  = 23
	xoLwzux = 55
	xoLbzx  = 87
	xoLbzux = 119
	xoStwx  = 151
	xoStwux = 183
	xoStbx  = 215
	xoStbux = 247
	xoLhzx  = 279
	xoLhzux = 311
	xoLhax  = 343
	xoLhaux = 375
	xoSthx  = 407
	xoSthux = 439
)

func registerLoadStoreOps() {
	primaryTable[32] = loadD(4, false, false)
	primaryTable[33] = loadD(4, false, true)
	primaryTable[34] = loadD(1, false, false)
	primaryTable[35] = loadD(1, false, true)
	primaryTable[40] = loadD(2, false, false)
	primaryTable[41] = loadD(2, false, true)
	primaryTable[42] = loadD(2, true, false)
	primaryTable[43] = loadD(2, true, true)

	primaryTable[36] = storeD(4, false)
	primaryTable[37] = storeD(4, true)
	primaryTable[38] = storeD(1, false)
	primaryTable[39] = storeD(1, true)
	primaryTable[44] = storeD(2, false)
	primaryTable[45] = storeD(2, true)

	table31[xoLwzx] = loadX(4, false, false)
	table31[xoLwzux] = loadX(4, false, true)
	table31[xoLbzx] = loadX(1, false, false)
	table31[xoLbzux] = loadX(1, false, true)
	table31[xoLhzx] = loadX(2, false, false)
	table31[xoLhzux] = loadX(2, false, true)
	table31[xoLhax] = loadX(2, true, false)
	table31[xoLhaux] = loadX(2, true, true)

	table31[xoStwx] = storeX(4, false)
	table31[xoStwux] = storeX(4, true)
	table31[xoStbx] = storeX(1, false)
	table31[xoStbux] = storeX(1, true)
	table31[xoSthx] = storeX(2, false)
	table31[xoSthux] = storeX(2, true)
}

// illegalUpdateWithZeroRA implements spec.md §4.2's rule that an update-form
// load/store naming rA=0 is an illegal instruction rather than a silent
// no-update.
func illegalUpdateWithZeroRA(c *CPU, update bool, ra int) bool {
	if update && ra == 0 {
		c.raise(&Exception{Kind: ExcProgram, Cause: ProgramCauseIllegal})
		return true
	}
	return false
}

func signExtend(v uint64, width int) uint64 {
	switch width {
	case 1:
		return uint64(int64(int8(v)))
	case 2:
		return uint64(int64(int16(v)))
	case 4:
		return uint64(int64(int32(v)))
	default:
		return v
	}
}

func loadD(width int, signed bool, update bool) Handler {
	return func(c *CPU) {
		i := instr(c.State.CurInstr)
		ra := i.rA()
		if illegalUpdateWithZeroRA(c, update, ra) {
			return
		}
		var base uint32
		if ra != 0 {
			base = c.State.GPR32(ra)
		}
		addr := base + uint32(i.d())
		v, exc := c.MMU.Load(addr, width, IntentLoad)
		if exc != nil {
			c.raise(exc)
			return
		}
		if signed {
			v = signExtend(v, width)
		}
		c.State.SetGPR32(i.rD(), uint32(v))
		if update {
			c.State.SetGPR32(ra, addr)
		}
	}
}

func storeD(width int, update bool) Handler {
	return func(c *CPU) {
		i := instr(c.State.CurInstr)
		ra := i.rA()
		if illegalUpdateWithZeroRA(c, update, ra) {
			return
		}
		var base uint32
		if ra != 0 {
			base = c.State.GPR32(ra)
		}
		addr := base + uint32(i.d())
		v := uint64(c.State.GPR32(i.rS()))
		if exc := c.MMU.Store(addr, width, v); exc != nil {
			c.raise(exc)
			return
		}
		if update {
			c.State.SetGPR32(ra, addr)
		}
	}
}

func loadX(width int, signed bool, update bool) Handler {
	return func(c *CPU) {
		i := instr(c.State.CurInstr)
		ra := i.rA()
		if illegalUpdateWithZeroRA(c, update, ra) {
			return
		}
		var base uint32
		if ra != 0 {
			base = c.State.GPR32(ra)
		}
		addr := base + c.State.GPR32(i.rB())
		v, exc := c.MMU.Load(addr, width, IntentLoad)
		if exc != nil {
			c.raise(exc)
			return
		}
		if signed {
			v = signExtend(v, width)
		}
		c.State.SetGPR32(i.rD(), uint32(v))
		if update {
			c.State.SetGPR32(ra, addr)
		}
	}
}

func storeX(width int, update bool) Handler {
	return func(c *CPU) {
		i := instr(c.State.CurInstr)
		ra := i.rA()
		if illegalUpdateWithZeroRA(c, update, ra) {
			return
		}
		var base uint32
		if ra != 0 {
			base = c.State.GPR32(ra)
		}
		addr := base + c.State.GPR32(i.rB())
		v := uint64(c.State.GPR32(i.rS()))
		if exc := c.MMU.Store(addr, width, v); exc != nil {
			c.raise(exc)
			return
		}
		if update {
			c.State.SetGPR32(ra, addr)
		}
	}
}
