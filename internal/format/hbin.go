package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/regview/internal/buf"
)

// HBIN describes a hive bin header. Bins are 4 KiB multiples laid out back to
// back after the base block.
//
//	Offset  Size  Field
//	0x00    4     'h' 'b' 'i' 'n'
//	0x04    4     Offset of this bin relative to the first bin
//	0x08    4     Size of this bin
type HBIN struct {
	FileOffset uint32
	Size       uint32
}

// NextHBIN validates the bin header at off within b and returns it along with
// the offset of the following bin.
func NextHBIN(b []byte, off int) (HBIN, int, error) {
	head, ok := buf.Slice(b, off, HBINHeaderSize)
	if !ok {
		return HBIN{}, 0, fmt.Errorf("hbin at 0x%x: %w", off, ErrTruncated)
	}
	if !bytes.Equal(head[:4], HBINSignature) {
		return HBIN{}, 0, fmt.Errorf("hbin at 0x%x: %w", off, ErrSignatureMismatch)
	}
	size := buf.U32LE(head[HBINSizePos:])
	if size == 0 || size%HBINAlignment != 0 {
		return HBIN{}, 0, fmt.Errorf("hbin at 0x%x: invalid size %d", off, size)
	}
	next, ok := buf.AddOverflowSafe(off, int(size))
	if !ok || next > len(b) {
		return HBIN{}, 0, fmt.Errorf("hbin at 0x%x: %w", off, ErrTruncated)
	}
	return HBIN{FileOffset: buf.U32LE(head[HBINFileOffsetPos:]), Size: size}, next, nil
}
