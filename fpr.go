// fpr.go - bit-aliased floating-point register

package main

import "math"

// FPR is one of the 32 floating-point registers. Its storage is a single
// 64-bit cell; Float64/SetFloat64 and Bits/SetBits are two views onto that
// same cell. This aliasing is load-bearing: stfiwx stores the raw integer
// view without going through a float conversion, and mffs/mtfsf rely on the
// same bit pattern being observable through either accessor. Go gives no
// language-level union, so the cell is kept as raw bits and every access
// converts explicitly rather than relying on unsafe.Pointer aliasing.
type FPR struct {
	bits uint64
}

// Float64 returns the IEEE-754 double-precision view of the register.
func (f FPR) Float64() float64 { return math.Float64frombits(f.bits) }

// SetFloat64 stores v as the IEEE-754 bit pattern of the register.
func (f *FPR) SetFloat64(v float64) { f.bits = math.Float64bits(v) }

// Bits returns the raw 64-bit integer view of the register.
func (f FPR) Bits() uint64 { return f.bits }

// SetBits stores the raw 64-bit pattern directly, bypassing any float
// conversion. Used by stfiwx's low-32-bit store and by mtfsf-adjacent paths
// that must not round the payload.
func (f *FPR) SetBits(v uint64) { f.bits = v }

// Lo32 returns the low 32 bits of the raw integer view, used by stfiwx and by
// fctiw(z)'s result placement.
func (f FPR) Lo32() uint32 { return uint32(f.bits) }

// SetLo32Tagged sets the low 32 bits to v and the high 32 bits to the integer
// payload tag 0xFFF80000, per spec.md §4.4's fctiw(z) result convention.
func (f *FPR) SetLo32Tagged(v uint32) {
	f.bits = uint64(0xFFF80000)<<32 | uint64(v)
}
