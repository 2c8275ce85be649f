package agora

import "github.com/gaze-network/uint128"

// mulWide returns the full 128-bit product a*b.
func mulWide(a, b uint64) uint128.Uint128 {
	return uint128.From64(a).Mul64(b)
}

// shlChecked shifts x left by n bits; ok is false when set bits fall off.
func shlChecked(x uint128.Uint128, n uint) (uint128.Uint128, bool) {
	if n >= 128 {
		return uint128.Zero, x.IsZero()
	}
	if !x.IsZero() && uint(x.LeadingZeros()) < n {
		return uint128.Zero, false
	}
	return x.Lsh(n), true
}

// divCeil64 divides by d > 0 rounding up.
func divCeil64(x uint128.Uint128, d uint64) uint128.Uint128 {
	q, rem := x.QuoRem64(d)
	if rem != 0 {
		q = q.Add64(1)
	}
	return q
}

// fit64 returns x when it fits in 64 bits.
func fit64(x uint128.Uint128) (uint64, bool) {
	return x.Lo, x.Hi == 0
}
