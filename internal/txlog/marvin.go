package txlog

import (
	"math/bits"

	"github.com/joshuapare/regview/internal/buf"
)

// MarvinSeed is the seed Windows uses when hashing log entries.
const MarvinSeed uint64 = 0x82EF4D887A4E55C5

// Marvin32 computes the 64-bit Marvin32 hash of b with the given seed, as
// stored in the hash fields of HvLE log entries.
func Marvin32(seed uint64, b []byte) uint64 {
	lo, hi := uint32(seed), uint32(seed>>32)
	for len(b) >= 4 {
		lo += buf.U32LE(b)
		lo, hi = marvinMix(lo, hi)
		b = b[4:]
	}
	var final uint32
	switch len(b) {
	case 0:
		final = 0x80
	case 1:
		final = 0x8000 | uint32(b[0])
	case 2:
		final = 0x800000 | uint32(buf.U16LE(b))
	case 3:
		final = 0x80000000 | uint32(b[2])<<16 | uint32(buf.U16LE(b))
	}
	lo += final
	lo, hi = marvinMix(lo, hi)
	lo, hi = marvinMix(lo, hi)
	return uint64(lo) | uint64(hi)<<32
}

func marvinMix(lo, hi uint32) (uint32, uint32) {
	hi ^= lo
	lo = bits.RotateLeft32(lo, 20)
	lo += hi
	hi = bits.RotateLeft32(hi, 9)
	hi ^= lo
	lo = bits.RotateLeft32(lo, 27)
	lo += hi
	hi = bits.RotateLeft32(hi, 19)
	return lo, hi
}
