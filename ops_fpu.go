// ops_fpu.go - floating-point load/store and arithmetic instructions
//
// Grounded on fpu_m68881.go's coprocessor dispatch plus fpr.go's bit-aliased
// register for the integer/float dual view stfiwx and fctiw(z) need.

package main

import "math"

const (
	xoFdiv    = 18
	xoFsub    = 20
	xoFadd    = 21
	xoFsqrt   = 22
	xoFsel    = 23
	xoFres    = 24
	xoFmul    = 25
	xoFrsqrte = 26
	xoFmsub   = 28
	xoFmadd   = 29
	xoFnmsub  = 30
	xoFnmadd  = 31
)

const (
	xoFcmpu = 0
	xoFrsp  = 12
	xoFctiw = 14
	xoFctiwz = 15
	xoFcmpo = 32
	xoFneg  = 40
	xoMcrfs = 64
	xoFmr   = 72
	xoFnabs = 136
	xoFabs  = 264
	xoMffs  = 583
	xoMtfsf = 711
)

const (
	xoLfsx   = 535
	xoLfsux  = 567
	xoLfdx   = 599
	xoLfdux  = 631
	xoStfsx  = 663
	xoStfsux = 695
	xoStfdx  = 727
	xoStfdux = 759
	xoStfiwx = 983
)

func registerFPUOps() {
	primaryTable[48] = fpLoadD(4, false)
	primaryTable[49] = fpLoadDUpdate(4, false)
	primaryTable[50] = fpLoadD(8, true)
	primaryTable[51] = fpLoadDUpdate(8, true)
	primaryTable[52] = fpStoreD(4, false)
	primaryTable[53] = fpStoreDUpdate(4, false)
	primaryTable[54] = fpStoreD(8, true)
	primaryTable[55] = fpStoreDUpdate(8, true)

	table31[xoLfsx] = fpLoadX(4, false, false)
	table31[xoLfsux] = fpLoadX(4, false, true)
	table31[xoLfdx] = fpLoadX(8, true, false)
	table31[xoLfdux] = fpLoadX(8, true, true)
	table31[xoStfsx] = fpStoreX(4, false, false)
	table31[xoStfsux] = fpStoreX(4, false, true)
	table31[xoStfdx] = fpStoreX(8, true, false)
	table31[xoStfdux] = fpStoreX(8, true, true)
	table31[xoStfiwx] = opStfiwx

	for _, double := range []bool{true, false} {
		tbl := table59
		if double {
			tbl = table63
		}
		tbl[xoFadd] = fpArith2(double, func(rn uint32, a, b float64) float64 { return roundedAdd(rn, a, b) },
			func(c *CPU, a, b float64) (float64, bool) { return checkInvalidSub(c, a, b, false) })
		tbl[xoFsub] = fpArith2(double, func(rn uint32, a, b float64) float64 { return roundedSub(rn, a, b) },
			func(c *CPU, a, b float64) (float64, bool) { return checkInvalidSub(c, a, b, true) })
		tbl[xoFmul] = fpArith2(double, func(rn uint32, a, b float64) float64 { return roundedMul(rn, a, b) }, checkInvalidMul)
		tbl[xoFdiv] = fpDiv(double)
		tbl[xoFsqrt] = fpSqrt(double)
		tbl[xoFmadd] = fpArith3(double, +1, +1)
		tbl[xoFmsub] = fpArith3(double, +1, -1)
		tbl[xoFnmadd] = fpArith3(double, -1, -1)
		tbl[xoFnmsub] = fpArith3(double, -1, +1)
		tbl[xoFsel] = opFsel
	}
	table59[xoFres] = opFres
	table63[xoFrsqrte] = opFrsqrte

	table63[xoFcmpu] = fpCompare(false)
	table63[xoFcmpo] = fpCompare(true)
	table63[xoFrsp] = opFrsp
	table63[xoFctiw] = fpToInt(false)
	table63[xoFctiwz] = fpToInt(true)
	table63[xoFneg] = fpUnarySign(func(v float64) float64 { return -v })
	table63[xoFabs] = fpUnarySign(func(v float64) float64 { return math.Abs(v) })
	table63[xoFnabs] = fpUnarySign(func(v float64) float64 { return -math.Abs(v) })
	table63[xoFmr] = opFmr
	table63[xoMffs] = opMffs
	table63[xoMtfsf] = opMtfsf
	table63[xoMcrfs] = opMcrfs
}

func fpLoadD(width int, double bool) Handler  { return fpLoadImpl(width, double, false) }
func fpLoadDUpdate(width int, double bool) Handler { return fpLoadImpl(width, double, true) }
func fpStoreD(width int, double bool) Handler { return fpStoreImpl(width, double, false) }
func fpStoreDUpdate(width int, double bool) Handler { return fpStoreImpl(width, double, true) }

func fpLoadImpl(width int, double bool, update bool) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
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
		raw, exc := c.MMU.Load(addr, width, IntentLoad)
		if exc != nil {
			c.raise(exc)
			return
		}
		storeFPLoaded(c, i.rD(), raw, double)
		if update {
			c.State.SetGPR32(ra, addr)
		}
	}
}

func fpStoreImpl(width int, double bool, update bool) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
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
		raw := fpStoreRaw(c, i.rD(), double)
		if exc := c.MMU.Store(addr, width, raw); exc != nil {
			c.raise(exc)
			return
		}
		if update {
			c.State.SetGPR32(ra, addr)
		}
	}
}

func fpLoadX(width int, double bool, update bool) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
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
		raw, exc := c.MMU.Load(addr, width, IntentLoad)
		if exc != nil {
			c.raise(exc)
			return
		}
		storeFPLoaded(c, i.rD(), raw, double)
		if update {
			c.State.SetGPR32(ra, addr)
		}
	}
}

func fpStoreX(width int, double bool, update bool) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
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
		raw := fpStoreRaw(c, i.rD(), double)
		if exc := c.MMU.Store(addr, width, raw); exc != nil {
			c.raise(exc)
			return
		}
		if update {
			c.State.SetGPR32(ra, addr)
		}
	}
}

// opStfiwx stores the raw low 32 bits of an FPR as an integer, bypassing
// any float conversion, per spec.md §4.4's bit-aliasing requirement.
func opStfiwx(c *CPU) {
	if !fpuAvailable(c) {
		return
	}
	i := instr(c.State.CurInstr)
	var base uint32
	if i.rA() != 0 {
		base = c.State.GPR32(i.rA())
	}
	addr := base + c.State.GPR32(i.rB())
	raw := uint64(c.State.FPR[i.rD()].Lo32())
	if exc := c.MMU.Store(addr, 4, raw); exc != nil {
		c.raise(exc)
	}
}

func storeFPLoaded(c *CPU, fd int, raw uint64, double bool) {
	if double {
		c.State.FPR[fd].SetBits(raw)
		return
	}
	c.State.FPR[fd].SetFloat64(float64(math.Float32frombits(uint32(raw))))
}

func fpStoreRaw(c *CPU, fs int, double bool) uint64 {
	if double {
		return c.State.FPR[fs].Bits()
	}
	return uint64(math.Float32bits(float32(c.State.FPR[fs].Float64())))
}

// fpArith2 builds a two-operand A-form handler (fadd/fsub/fmul): check the
// instruction-specific invalid condition, fall back to the generic SNaN
// check, then compute under the current rounding mode.
func fpArith2(double bool, op func(rn uint32, a, b float64) float64, invalidCheck func(c *CPU, a, b float64) (float64, bool)) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
		i := instr(c.State.CurInstr)
		a, b := c.State.FPR[i.rA()].Float64(), c.State.FPR[i.rB()].Float64()
		var result float64
		if forced, bad := checkOperandsInvalid(c, a, b); bad {
			result = forced
		} else if forced, bad := invalidCheck(c, a, b); bad {
			result = forced
		} else {
			result = op(c.State.roundingMode(), a, b)
			if !double {
				result = roundToSingle(c.State.roundingMode(), result)
			}
		}
		finishFPResult(c, i.rD(), result, i.rc())
	}
}

func fpDiv(double bool) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
		i := instr(c.State.CurInstr)
		a, b := c.State.FPR[i.rA()].Float64(), c.State.FPR[i.rB()].Float64()
		var result float64
		_, opInvalid := checkOperandsInvalid(c, a, b)
		_, divInvalid := checkInvalidDiv(c, a, b)
		switch {
		case opInvalid, divInvalid:
			result = quietNaN()
		default:
			checkDivideByZero(c, a, b)
			result = roundedDiv(c.State.roundingMode(), a, b)
			if !double {
				result = roundToSingle(c.State.roundingMode(), result)
			}
		}
		finishFPResult(c, i.rD(), result, i.rc())
	}
}

func fpSqrt(double bool) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
		i := instr(c.State.CurInstr)
		b := c.State.FPR[i.rB()].Float64()
		var result float64
		bBits := math.Float64bits(b)
		switch {
		case isSignalingNaN(bBits):
			c.State.setFPSCRCause(fpscrVXSNAN)
			result = quietNaN()
		case isNaN(b):
			result = quietNaN()
		default:
			if forced, bad := checkInvalidSqrt(c, b); bad {
				result = forced
			} else {
				result = roundedSqrt(c.State.roundingMode(), b)
				if !double {
					result = roundToSingle(c.State.roundingMode(), result)
				}
			}
		}
		finishFPResult(c, i.rD(), result, i.rc())
	}
}

// fpArith3 builds the fmadd/fmsub/fnmadd/fnmsub family: result = aSign*(A*C)
// + bSign*B, where A=frA, C=frC, B=frB per the architecture's A-form operand
// naming for these instructions.
func fpArith3(double bool, aSign, bSign float64) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
		i := instr(c.State.CurInstr)
		a := c.State.FPR[i.rA()].Float64()
		bb := c.State.FPR[i.rB()].Float64()
		cc := c.State.FPR[i.rC()].Float64()
		var result float64
		if forced, bad := checkOperandsInvalid(c, a, cc); bad {
			result = forced
		} else if forced, bad := checkOperandsInvalid(c, bb, bb); bad {
			result = forced
		} else if forced, bad := checkInvalidMul(c, a, cc); bad {
			result = forced
		} else {
			result = roundedFMA(c.State.roundingMode(), aSign*a, cc, bSign*bb)
			if !double {
				result = roundToSingle(c.State.roundingMode(), result)
			}
		}
		finishFPResult(c, i.rD(), result, i.rc())
	}
}

// opFsel implements fsel: selects frC if frA >= 0 (including -0), else frB;
// a NaN frA fails the comparison and so selects frB. fsel never raises an FP
// exception, per spec.md's testable property 5.
func opFsel(c *CPU) {
	if !fpuAvailable(c) {
		return
	}
	i := instr(c.State.CurInstr)
	a := c.State.FPR[i.rA()].Float64()
	var result float64
	if a >= 0 {
		result = c.State.FPR[i.rC()].Float64()
	} else {
		result = c.State.FPR[i.rB()].Float64()
	}
	c.State.FPR[i.rD()].SetFloat64(result)
	if i.rc() {
		c.State.SetCR1FromFPSCR()
	}
}

func opFres(c *CPU) {
	if !fpuAvailable(c) {
		return
	}
	i := instr(c.State.CurInstr)
	b := c.State.FPR[i.rB()].Float64()
	result := roundToSingle(c.State.roundingMode(), 1/b)
	finishFPResult(c, i.rD(), result, i.rc())
}

func opFrsqrte(c *CPU) {
	if !fpuAvailable(c) {
		return
	}
	i := instr(c.State.CurInstr)
	b := c.State.FPR[i.rB()].Float64()
	var result float64
	if forced, bad := checkInvalidSqrt(c, b); bad {
		result = forced
	} else {
		result = 1 / math.Sqrt(b)
	}
	finishFPResult(c, i.rD(), result, i.rc())
}

func fpCompare(ordered bool) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
		i := instr(c.State.CurInstr)
		a, b := c.State.FPR[i.rA()].Float64(), c.State.FPR[i.rB()].Float64()
		var field uint32
		switch {
		case isNaN(a) || isNaN(b):
			if isSignalingNaN(math.Float64bits(a)) || isSignalingNaN(math.Float64bits(b)) {
				c.State.setFPSCRCause(fpscrVXSNAN)
			} else if ordered {
				c.State.setFPSCRCause(fpscrVXVC)
			}
			c.State.clearFPCC()
			c.State.FPSCR |= fpscrFU
			field = fpscrFU >> 12
		case a < b:
			c.State.clearFPCC()
			c.State.FPSCR |= fpscrFL
			field = fpscrFL >> 12
		case a > b:
			c.State.clearFPCC()
			c.State.FPSCR |= fpscrFG
			field = fpscrFG >> 12
		default:
			c.State.clearFPCC()
			c.State.FPSCR |= fpscrFE
			field = fpscrFE >> 12
		}
		c.State.SetCRField(i.crfD(), field)
	}
}

func opFrsp(c *CPU) {
	if !fpuAvailable(c) {
		return
	}
	i := instr(c.State.CurInstr)
	b := c.State.FPR[i.rB()].Float64()
	result := roundToSingle(c.State.roundingMode(), b)
	finishFPResult(c, i.rD(), result, i.rc())
}

// fpToInt implements fctiw/fctiwz: convert to a 32-bit signed integer,
// tagged into the FPR's low word per spec.md §4.4's fctiw(z) convention
// (SetLo32Tagged), with VXCVI raised for out-of-range or NaN operands.
func fpToInt(roundToZero bool) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
		i := instr(c.State.CurInstr)
		b := c.State.FPR[i.rB()].Float64()
		var result int32
		invalid := false
		switch {
		case isNaN(b):
			invalid = true
			result = -2147483648
		case b >= 2147483647.5 || b < -2147483648.5:
			invalid = true
			if b > 0 {
				result = 2147483647
			} else {
				result = -2147483648
			}
		default:
			if roundToZero {
				result = int32(b)
			} else {
				result = int32(math.RoundToEven(b))
			}
		}
		if invalid {
			c.State.setFPSCRCause(fpscrVXCVI)
		}
		c.State.FPR[i.rD()].SetLo32Tagged(uint32(result))
		if i.rc() {
			c.State.SetCR1FromFPSCR()
		}
	}
}

func fpUnarySign(f func(v float64) float64) Handler {
	return func(c *CPU) {
		if !fpuAvailable(c) {
			return
		}
		i := instr(c.State.CurInstr)
		result := f(c.State.FPR[i.rB()].Float64())
		c.State.FPR[i.rD()].SetFloat64(result)
		if i.rc() {
			c.State.SetCR1FromFPSCR()
		}
	}
}

func opFmr(c *CPU) {
	if !fpuAvailable(c) {
		return
	}
	i := instr(c.State.CurInstr)
	c.State.FPR[i.rD()].SetBits(c.State.FPR[i.rB()].Bits())
	if i.rc() {
		c.State.SetCR1FromFPSCR()
	}
}

// opMffs moves FPSCR into the low 32 bits of an FPR, per the architecture;
// SetLo32Tagged sets the high word to 0xFFF80000.
func opMffs(c *CPU) {
	if !fpuAvailable(c) {
		return
	}
	i := instr(c.State.CurInstr)
	c.State.FPR[i.rD()].SetLo32Tagged(c.State.FPSCR)
	if i.rc() {
		c.State.SetCR1FromFPSCR()
	}
}

// opMtfsf moves the low 32 bits of an FPR into FPSCR under the FM field
// mask (bits 7-14 in the raw instruction word), per the architecture's
// XFL-form encoding.
func opMtfsf(c *CPU) {
	if !fpuAvailable(c) {
		return
	}
	i := instr(c.State.CurInstr)
	fm := (uint32(c.State.CurInstr) >> 17) & 0xFF
	v := c.State.FPR[i.rB()].Lo32()
	var bitmask uint32
	for field := 0; field < 8; field++ {
		if fm&(1<<(7-field)) != 0 {
			bitmask |= 0xF << uint(28-4*field)
		}
	}
	c.State.FPSCR = (c.State.FPSCR &^ bitmask) | (v & bitmask)
}

func opMcrfs(c *CPU) {
	i := instr(c.State.CurInstr)
	srcField := i.crbA() >> 2
	shift := uint(28 - 4*srcField)
	field := (c.State.FPSCR >> shift) & 0xF
	c.State.SetCRField(i.crfD(), field)
}
