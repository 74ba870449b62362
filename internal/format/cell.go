package format

import (
	"errors"
	"fmt"

	"github.com/joshuapare/regview/internal/buf"
)

// Cell is one allocation inside a bin.
//
//	Offset  Size  Description
//	0x00    4     Signed size including this header; negative when allocated
//	0x04    ...   Payload; allocated records start with a two-byte tag
type Cell struct {
	Offset int
	Size   int
	Free   bool
	Data   []byte
}

// Tag returns the two-byte record signature, or "" for short payloads.
func (c Cell) Tag() string {
	if len(c.Data) < SignatureSize {
		return ""
	}
	return string(c.Data[:SignatureSize])
}

// ParseCell decodes the cell starting at off within b. The cell must fit in
// b entirely.
func ParseCell(b []byte, off int) (Cell, error) {
	if !buf.Has(b, off, CellHeaderSize) {
		return Cell{}, fmt.Errorf("cell at 0x%x: %w", off, ErrTruncated)
	}
	raw := buf.I32LE(b[off:])
	if raw == 0 {
		return Cell{}, errors.New("cell: zero length")
	}
	size := int(raw)
	allocated := raw < 0
	if allocated {
		size = -size
	}
	if size < CellHeaderSize {
		return Cell{}, fmt.Errorf("cell at 0x%x: declared size too small (%d)", off, size)
	}
	body, ok := buf.Slice(b, off+CellHeaderSize, size-CellHeaderSize)
	if !ok {
		return Cell{}, fmt.Errorf("cell at 0x%x: %w", off, ErrTruncated)
	}
	return Cell{Offset: off, Size: size, Free: !allocated, Data: body}, nil
}

// NextCell decodes the cell at off inside bin h and returns the offset of the
// cell following it. Cells crossing the bin boundary are rejected.
func NextCell(b []byte, binStart int, h HBIN, off int) (Cell, int, error) {
	binEnd := binStart + int(h.Size)
	if off < binStart+HBINHeaderSize || off >= binEnd {
		return Cell{}, 0, fmt.Errorf("cell: offset 0x%x outside hbin", off)
	}
	c, err := ParseCell(b[:binEnd], off)
	if err != nil {
		return Cell{}, 0, err
	}
	return c, off + c.Size, nil
}
