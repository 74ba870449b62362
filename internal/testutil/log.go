package testutil

import (
	"bytes"

	"github.com/joshuapare/regview/internal/buf"
	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/internal/txlog"
)

// Page is a run of hive bins bytes at Offset (relative to the first bin).
type Page struct {
	Offset uint32
	Data   []byte
}

// Entry describes one HvLE entry.
type Entry struct {
	Sequence uint32
	BinsSize uint32
	Pages    []Page
}

// DiffPages returns the 512-byte pages of updated's hive bins that differ
// from old's, including pages beyond the end of old.
func DiffPages(old, updated []byte) []Page {
	var out []Page
	ob, nb := old[format.HeaderSize:], updated[format.HeaderSize:]
	for off := 0; off < len(nb); off += format.LogSectorSize {
		end := min(off+format.LogSectorSize, len(nb))
		if end <= len(ob) && bytes.Equal(ob[off:end], nb[off:end]) {
			continue
		}
		out = append(out, Page{Offset: uint32(off), Data: append([]byte(nil), nb[off:end]...)})
	}
	return out
}

// BinsSize returns the hive bins data size of a hive image.
func BinsSize(hive []byte) uint32 { return uint32(len(hive) - format.HeaderSize) }

// BuildLog produces a new-format log whose base block copies hive's.
func BuildLog(hive []byte, entries ...Entry) []byte {
	out := make([]byte, format.LogBaseBlockSize)
	copy(out, hive[:format.LogBaseBlockSize])
	buf.PutU32LE(out[format.REGFTypeOffset:], format.FileTypeLogNew)
	format.SetHeaderChecksum(out)
	for _, e := range entries {
		out = append(out, EncodeEntry(e)...)
	}
	return out
}

// EncodeEntry serialises e with valid Marvin32 hashes.
func EncodeEntry(e Entry) []byte {
	size := format.LogEntryRefsOffset + format.LogEntryRefSize*len(e.Pages)
	for _, p := range e.Pages {
		size += len(p.Data)
	}
	size = (size + format.LogEntryAlignment - 1) / format.LogEntryAlignment * format.LogEntryAlignment

	b := make([]byte, size)
	copy(b, format.HvLESignature)
	buf.PutU32LE(b[format.LogEntrySizeOffset:], uint32(size))
	buf.PutU32LE(b[format.LogEntrySeqOffset:], e.Sequence)
	buf.PutU32LE(b[format.LogEntryBinsOffset:], e.BinsSize)
	buf.PutU32LE(b[format.LogEntryDirtyOffset:], uint32(len(e.Pages)))
	data := format.LogEntryRefsOffset + format.LogEntryRefSize*len(e.Pages)
	for i, p := range e.Pages {
		ref := b[format.LogEntryRefsOffset+format.LogEntryRefSize*i:]
		buf.PutU32LE(ref, p.Offset)
		buf.PutU32LE(ref[4:], uint32(len(p.Data)))
		copy(b[data:], p.Data)
		data += len(p.Data)
	}
	buf.PutU64LE(b[format.LogEntryHash1Offset:], txlog.Marvin32(txlog.MarvinSeed, b[format.LogEntryRefsOffset:]))
	buf.PutU64LE(b[format.LogEntryHash2Offset:], txlog.Marvin32(txlog.MarvinSeed, b[:format.LogEntryHash2Covered]))
	return b
}

// BuildLegacyLog produces a DIRT log describing the 512-byte sectors of
// pages. Every page must be sector aligned and sector sized.
func BuildLegacyLog(hive []byte, sequence uint32, pages []Page) []byte {
	bins := BinsSize(hive)
	base := make([]byte, format.LogBaseBlockSize)
	copy(base, hive[:format.LogBaseBlockSize])
	buf.PutU32LE(base[format.REGFPrimarySeqOffset:], sequence)
	buf.PutU32LE(base[format.REGFSecondarySeqOffset:], sequence)
	buf.PutU32LE(base[format.REGFTypeOffset:], format.FileTypeLog1)
	buf.PutU32LE(base[format.REGFDataSizeOffset:], bins)
	format.SetHeaderChecksum(base)

	bitmap := make([]byte, (int(bins)/format.LogSectorSize+7)/8)
	sectors := map[int][]byte{}
	for _, p := range pages {
		i := int(p.Offset) / format.LogSectorSize
		bitmap[i/8] |= 1 << (i % 8)
		sectors[i] = p.Data
	}
	out := append(base, format.DIRTSignature...)
	out = append(out, bitmap...)
	if pad := len(out) % format.LogSectorSize; pad != 0 {
		out = append(out, make([]byte, format.LogSectorSize-pad)...)
	}
	for i := 0; i < len(bitmap)*8; i++ {
		if data, ok := sectors[i]; ok {
			sector := make([]byte, format.LogSectorSize)
			copy(sector, data)
			out = append(out, sector...)
		}
	}
	return out
}
