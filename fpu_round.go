// fpu_round.go - rounding-mode-aware double-precision arithmetic
//
// Go's native float64 operators are hardwired to round-to-nearest-even;
// honouring FPSCR[RN] (spec.md §4.4) for the other three IEEE rounding
// directions needs the operation redone at extended precision and rounded
// down to 53 bits under the selected mode, which math/big.Float provides
// directly (its RoundingMode enumerates exactly the four IEEE directions).
// No library in the example pack offers portable rounding-direction control
// over basic arithmetic — see DESIGN.md's FPU entry for why this one corner
// stays on the standard library instead of reaching for a pack dependency.
package main

import (
	"math"
	"math/big"
)

const bigPrec = 53

func bigRoundingMode(rn uint32) big.RoundingMode {
	switch rn {
	case 1:
		return big.ToZero
	case 2:
		return big.ToPositiveInf
	case 3:
		return big.ToNegativeInf
	default:
		return big.ToNearestEven
	}
}

func newBigFloat(mode big.RoundingMode, v float64) *big.Float {
	return new(big.Float).SetPrec(bigPrec).SetMode(mode).SetFloat64(v)
}

func roundedBinOp(rn uint32, a, b float64, op func(z, x, y *big.Float) *big.Float) float64 {
	mode := bigRoundingMode(rn)
	x := newBigFloat(mode, a)
	y := newBigFloat(mode, b)
	z := new(big.Float).SetPrec(bigPrec).SetMode(mode)
	op(z, x, y)
	f, _ := z.Float64()
	return f
}

func roundedAdd(rn uint32, a, b float64) float64 {
	return roundedBinOp(rn, a, b, func(z, x, y *big.Float) *big.Float { return z.Add(x, y) })
}

func roundedSub(rn uint32, a, b float64) float64 {
	return roundedBinOp(rn, a, b, func(z, x, y *big.Float) *big.Float { return z.Sub(x, y) })
}

func roundedMul(rn uint32, a, b float64) float64 {
	return roundedBinOp(rn, a, b, func(z, x, y *big.Float) *big.Float { return z.Mul(x, y) })
}

func roundedDiv(rn uint32, a, b float64) float64 {
	return roundedBinOp(rn, a, b, func(z, x, y *big.Float) *big.Float { return z.Quo(x, y) })
}

func roundedSqrt(rn uint32, a float64) float64 {
	mode := bigRoundingMode(rn)
	x := newBigFloat(mode, a)
	z := new(big.Float).SetPrec(bigPrec).SetMode(mode)
	z.Sqrt(x)
	f, _ := z.Float64()
	return f
}

// roundedFMA computes a*b+c as a single rounded operation (fmadd family),
// rounding once at the target precision rather than twice, per the
// architecture's fused-multiply-add semantics.
func roundedFMA(rn uint32, a, b, c float64) float64 {
	mode := bigRoundingMode(rn)
	x := newBigFloat(mode, a)
	y := newBigFloat(mode, b)
	w := newBigFloat(mode, c)
	prod := new(big.Float).SetPrec(bigPrec * 2).Mul(x, y)
	sum := new(big.Float).SetPrec(bigPrec).SetMode(mode).Add(prod, w)
	f, _ := sum.Float64()
	return f
}

// roundToSingle rounds a double-precision value to the nearest representable
// single-precision value under the current rounding mode, then widens back
// to float64 (frsp / the implicit single rounding single-precision FP
// instructions perform before storing into an FPR).
func roundToSingle(rn uint32, a float64) float64 {
	mode := bigRoundingMode(rn)
	x := new(big.Float).SetPrec(24).SetMode(mode).SetFloat64(a)
	f, _ := x.Float64()
	return float32ClampRange(f)
}

// float32ClampRange saturates a value outside single-precision's finite
// range to +-Inf rather than letting the float32 round-trip wrap silently.
func float32ClampRange(v float64) float64 {
	const maxSingle = 3.4028234663852886e+38
	switch {
	case v > maxSingle:
		return math.Inf(1)
	case v < -maxSingle:
		return math.Inf(-1)
	default:
		return float64(float32(v))
	}
}
