package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe returns a+b and false when the sum would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		return 0, false
	}
	return a + b, true
}

// Slice returns b[off:off+n] when the whole range lies inside b.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is addressable.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// CheckListBounds validates that count elements of size bytes starting at
// offset fit in a buffer of bufLen bytes and returns the end offset.
func CheckListBounds(bufLen, offset, count, size int) (int, error) {
	if offset < 0 || count < 0 || size < 0 {
		return 0, fmt.Errorf("negative list geometry: off=%d count=%d size=%d", offset, count, size)
	}
	if size != 0 && count > math.MaxInt/size {
		return 0, fmt.Errorf("overflow: count=%d * size=%d", count, size)
	}
	end, ok := AddOverflowSafe(offset, count*size)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + %d", offset, count*size)
	}
	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}
