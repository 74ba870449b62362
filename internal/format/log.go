package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/regview/internal/buf"
)

// DirtyPage is one run of hive-bins bytes carried by a log entry. Offset is
// relative to the start of the first bin.
type DirtyPage struct {
	Offset uint32
	Data   []byte
}

// LogEntry is a decoded HvLE record of a new-format transaction log.
//
//	Offset  Size  Field
//	0x00    4     'H' 'v' 'L' 'E'
//	0x04    4     Entry size (multiple of 512)
//	0x08    4     Flags
//	0x0C    4     Sequence number
//	0x10    4     Hive bins data size
//	0x14    4     Dirty pages count
//	0x18    8     Hash-1 (Marvin32 of bytes 0x28..size)
//	0x20    8     Hash-2 (Marvin32 of bytes 0x00..0x20)
//	0x28    8*n   Dirty page references {offset, size}
//	...           Page data, in reference order
type LogEntry struct {
	Size             uint32
	Flags            uint32
	Sequence         uint32
	HiveBinsDataSize uint32
	Hash1            uint64
	Hash2            uint64
	Pages            []DirtyPage
	Raw              []byte
}

// IsLogEntry reports whether b starts with an HvLE signature.
func IsLogEntry(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], HvLESignature)
}

// DecodeLogEntry decodes the entry at the start of b. Hashes are returned but
// not verified.
func DecodeLogEntry(b []byte) (LogEntry, error) {
	if len(b) < LogEntryRefsOffset {
		return LogEntry{}, fmt.Errorf("log entry: %w", ErrTruncated)
	}
	if !IsLogEntry(b) {
		return LogEntry{}, fmt.Errorf("log entry: %w", ErrSignatureMismatch)
	}
	size := buf.U32LE(b[LogEntrySizeOffset:])
	if size < LogEntryRefsOffset || size%LogEntryAlignment != 0 {
		return LogEntry{}, fmt.Errorf("log entry: invalid size %d", size)
	}
	raw, ok := buf.Slice(b, 0, int(size))
	if !ok {
		return LogEntry{}, fmt.Errorf("log entry: %w (size %d, have %d)", ErrTruncated, size, len(b))
	}
	e := LogEntry{
		Size:             size,
		Flags:            buf.U32LE(raw[LogEntryFlagsOffset:]),
		Sequence:         buf.U32LE(raw[LogEntrySeqOffset:]),
		HiveBinsDataSize: buf.U32LE(raw[LogEntryBinsOffset:]),
		Hash1:            buf.U64LE(raw[LogEntryHash1Offset:]),
		Hash2:            buf.U64LE(raw[LogEntryHash2Offset:]),
		Raw:              raw,
	}
	count := int(buf.U32LE(raw[LogEntryDirtyOffset:]))
	dataOff, err := buf.CheckListBounds(len(raw), LogEntryRefsOffset, count, LogEntryRefSize)
	if err != nil {
		return LogEntry{}, fmt.Errorf("log entry refs: %w: %w", ErrTruncated, err)
	}
	e.Pages = make([]DirtyPage, count)
	for i := range e.Pages {
		ref := raw[LogEntryRefsOffset+i*LogEntryRefSize:]
		off, n := buf.U32LE(ref), int(buf.U32LE(ref[4:]))
		data, ok := buf.Slice(raw, dataOff, n)
		if !ok {
			return LogEntry{}, fmt.Errorf("log entry page %d: %w", i, ErrTruncated)
		}
		e.Pages[i] = DirtyPage{Offset: off, Data: data}
		dataOff += n
	}
	return e, nil
}

// DirtyVector is the body of a legacy log: a bitmap with one bit per 512-byte
// sector of hive bins data, followed by the dirty sectors in bit order.
type DirtyVector struct {
	Bitmap  []byte
	Sectors []byte
}

// DecodeDirtyVector decodes the legacy log body starting at b, where b begins
// at the DIRT signature and binsSize is the hive bins data size from the log
// base block.
func DecodeDirtyVector(b []byte, binsSize uint32) (DirtyVector, error) {
	if len(b) < LogDirtVectorHeaderSz || !bytes.Equal(b[:4], DIRTSignature) {
		return DirtyVector{}, fmt.Errorf("dirty vector: %w", ErrSignatureMismatch)
	}
	bits := int(binsSize) / LogSectorSize
	bitmapLen := (bits + 7) / 8
	bitmap, ok := buf.Slice(b, LogDirtVectorHeaderSz, bitmapLen)
	if !ok {
		return DirtyVector{}, fmt.Errorf("dirty vector bitmap: %w", ErrTruncated)
	}
	// Sector data starts at the next 512-byte boundary, measured from the
	// start of the log file (b begins 512 bytes in).
	end := LogBaseBlockSize + LogDirtVectorHeaderSz + bitmapLen
	start := (end+LogSectorSize-1)/LogSectorSize*LogSectorSize - LogBaseBlockSize
	if start > len(b) {
		return DirtyVector{}, fmt.Errorf("dirty vector sectors: %w", ErrTruncated)
	}
	return DirtyVector{Bitmap: bitmap, Sectors: b[start:]}, nil
}

// Pages expands the bitmap into dirty pages, one per set bit.
func (v DirtyVector) Pages() ([]DirtyPage, error) {
	var out []DirtyPage
	next := 0
	for i := 0; i < len(v.Bitmap)*8; i++ {
		if v.Bitmap[i/8]&(1<<(i%8)) == 0 {
			continue
		}
		data, ok := buf.Slice(v.Sectors, next, LogSectorSize)
		if !ok {
			return nil, fmt.Errorf("dirty sector %d: %w", i, ErrTruncated)
		}
		out = append(out, DirtyPage{Offset: uint32(i * LogSectorSize), Data: data})
		next += LogSectorSize
	}
	return out, nil
}
