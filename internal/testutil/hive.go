// Package testutil builds synthetic hives and transaction logs in memory so
// tests never depend on binary fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regview/internal/buf"
	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/pkg/types"
)

// Key describes one key of a synthetic hive.
type Key struct {
	Name      string
	LastWrite time.Time
	Values    []Value
	Subkeys   []*Key
	// List selects the subkey index flavour: "lh" (default), "lf", "li" or
	// "ri" (lh leaves of two entries behind an ri).
	List string
	// CycleToRoot appends the root's offset to this key's subkey list.
	CycleToRoot bool
}

// Value describes one value of a synthetic hive.
type Value struct {
	Name string
	Type types.RegType
	Data []byte
}

// Options tweak the generated base block.
type Options struct {
	MinorVersion uint32
	Primary      uint32
	Secondary    uint32
	FileName     string
	LastWrite    time.Time
}

type Option func(*Options)

func WithMinorVersion(v uint32) Option { return func(o *Options) { o.MinorVersion = v } }

// WithSequence sets the base block sequence numbers; unequal values produce
// a dirty hive.
func WithSequence(primary, secondary uint32) Option {
	return func(o *Options) { o.Primary, o.Secondary = primary, secondary }
}

func WithFileName(name string) Option { return func(o *Options) { o.FileName = name } }

// RootOffset is where BuildHive always places the root key node.
const RootOffset = format.HBINHeaderSize

// BuildHive serialises root into a complete hive image.
func BuildHive(root *Key, opts ...Option) []byte {
	o := Options{MinorVersion: 5, Primary: 1, Secondary: 1, FileName: "SYNTHETIC", LastWrite: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	for _, opt := range opts {
		opt(&o)
	}
	b := &builder{minor: o.MinorVersion}
	rootOff := b.alloc(format.NKMinSize + len(encodeName(root.Name)))
	b.rootOff = uint32(rootOff)
	payload := b.key(root, format.NKFlagHiveEntry|format.NKFlagNoDelete)
	copy(b.bins[rootOff+format.CellHeaderSize:], payload)
	b.closeBin()

	out := make([]byte, format.HeaderSize+len(b.bins))
	copy(out, format.REGFSignature)
	buf.PutU32LE(out[format.REGFPrimarySeqOffset:], o.Primary)
	buf.PutU32LE(out[format.REGFSecondarySeqOffset:], o.Secondary)
	buf.PutU64LE(out[format.REGFTimeStampOffset:], format.TimeToFiletime(o.LastWrite))
	buf.PutU32LE(out[format.REGFMajorVersionOffset:], 1)
	buf.PutU32LE(out[format.REGFMinorVersionOffset:], o.MinorVersion)
	buf.PutU32LE(out[format.REGFFormatOffset:], format.FileFormatDirect)
	buf.PutU32LE(out[format.REGFRootCellOffset:], uint32(rootOff))
	buf.PutU32LE(out[format.REGFDataSizeOffset:], uint32(len(b.bins)))
	buf.PutU32LE(out[format.REGFClusterOffset:], 1)
	for i, r := range []rune(o.FileName) {
		if 2*i+2 > format.REGFFileNameSize {
			break
		}
		buf.PutU16LE(out[format.REGFFileNameOffset+2*i:], uint16(r))
	}
	format.SetHeaderChecksum(out)
	copy(out[format.HeaderSize:], b.bins)
	return out
}

// ZeroBaseBlock returns a copy of hive with its first 4096 bytes cleared.
func ZeroBaseBlock(hive []byte) []byte {
	out := append([]byte(nil), hive...)
	clear(out[:format.HeaderSize])
	return out
}

// SetSequence rewrites the sequence numbers of hive in place and fixes the
// checksum.
func SetSequence(hive []byte, primary, secondary uint32) {
	buf.PutU32LE(hive[format.REGFPrimarySeqOffset:], primary)
	buf.PutU32LE(hive[format.REGFSecondarySeqOffset:], secondary)
	format.SetHeaderChecksum(hive)
}

// WriteFile stores data under t.TempDir() and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600), "failed to write %s", name)
	return path
}

type builder struct {
	bins     []byte
	binStart int
	cur      int
	minor    uint32
	rootOff  uint32
}

func align8(n int) int { return (n + format.CellAlignment - 1) &^ (format.CellAlignment - 1) }

// alloc reserves an allocated cell for payloadLen bytes and returns its
// offset relative to the first bin.
func (b *builder) alloc(payloadLen int) int {
	size := align8(payloadLen + format.CellHeaderSize)
	if len(b.bins) == 0 || b.cur+size > len(b.bins) {
		b.closeBin()
		b.openBin(size)
	}
	off := b.cur
	buf.PutU32LE(b.bins[off:], uint32(-int32(size)))
	b.cur += size
	return off
}

func (b *builder) write(payload []byte) uint32 {
	off := b.alloc(len(payload))
	copy(b.bins[off+format.CellHeaderSize:], payload)
	return uint32(off)
}

func (b *builder) openBin(cellSize int) {
	need := format.HBINHeaderSize + cellSize
	size := (need + format.HBINAlignment - 1) / format.HBINAlignment * format.HBINAlignment
	start := len(b.bins)
	b.bins = append(b.bins, make([]byte, size)...)
	copy(b.bins[start:], format.HBINSignature)
	buf.PutU32LE(b.bins[start+format.HBINFileOffsetPos:], uint32(start))
	buf.PutU32LE(b.bins[start+format.HBINSizePos:], uint32(size))
	b.binStart = start
	b.cur = start + format.HBINHeaderSize
}

// closeBin turns the unused tail of the current bin into one free cell.
func (b *builder) closeBin() {
	if len(b.bins) == 0 {
		return
	}
	if rest := len(b.bins) - b.cur; rest > 0 {
		buf.PutU32LE(b.bins[b.cur:], uint32(rest))
		b.cur = len(b.bins)
	}
}

// key writes everything k references and returns its nk payload.
func (b *builder) key(k *Key, flags uint16) []byte {
	children := make([]uint32, 0, len(k.Subkeys)+1)
	for _, c := range k.Subkeys {
		children = append(children, b.write(b.key(c, 0)))
	}
	if k.CycleToRoot {
		children = append(children, b.rootOff)
	}
	listOff := uint32(format.InvalidOffset)
	if len(children) > 0 {
		listOff = b.subkeyList(k, children)
	}

	valueListOff := uint32(format.InvalidOffset)
	if len(k.Values) > 0 {
		offs := make([]byte, 4*len(k.Values))
		for i, v := range k.Values {
			buf.PutU32LE(offs[4*i:], b.value(v))
		}
		valueListOff = b.write(offs)
	}

	name := encodeName(k.Name)
	if isCompressible(k.Name) {
		flags |= format.NKFlagCompressedName
	}
	p := make([]byte, format.NKMinSize+len(name))
	copy(p, format.NKSignature)
	buf.PutU16LE(p[format.NKFlagsOffset:], flags)
	buf.PutU64LE(p[format.NKLastWriteOffset:], format.TimeToFiletime(k.LastWrite))
	buf.PutU32LE(p[format.NKParentOffset:], format.InvalidOffset)
	buf.PutU32LE(p[format.NKSubkeyCountOffset:], uint32(len(children)))
	buf.PutU32LE(p[format.NKSubkeyListOffset:], listOff)
	buf.PutU32LE(p[format.NKVolSubkeyListOffset:], format.InvalidOffset)
	buf.PutU32LE(p[format.NKValueCountOffset:], uint32(len(k.Values)))
	buf.PutU32LE(p[format.NKValueListOffset:], valueListOff)
	buf.PutU32LE(p[format.NKSecurityOffset:], format.InvalidOffset)
	buf.PutU32LE(p[format.NKClassNameOffset:], format.InvalidOffset)
	buf.PutU16LE(p[format.NKNameLenOffset:], uint16(len(name)))
	copy(p[format.NKNameOffset:], name)
	return p
}

func (b *builder) subkeyList(k *Key, children []uint32) uint32 {
	names := make([]string, 0, len(children))
	for _, c := range k.Subkeys {
		names = append(names, c.Name)
	}
	for len(names) < len(children) {
		names = append(names, "")
	}
	switch k.List {
	case "li":
		return b.write(listCell("li", children, nil))
	case "lf":
		return b.write(listCell("lf", children, func(i int) uint32 { return lfHint(names[i]) }))
	case "ri":
		var leaves []uint32
		for i := 0; i < len(children); i += 2 {
			end := min(i+2, len(children))
			part := names[i:end]
			leaves = append(leaves, b.write(listCell("lh", children[i:end], func(j int) uint32 { return lhHash(part[j]) })))
		}
		return b.write(listCell("ri", leaves, nil))
	default:
		return b.write(listCell("lh", children, func(i int) uint32 { return lhHash(names[i]) }))
	}
}

func listCell(sig string, offs []uint32, hint func(int) uint32) []byte {
	stride := format.OffsetFieldSize
	if hint != nil {
		stride = format.LFEntrySize
	}
	p := make([]byte, format.ListHeaderSize+stride*len(offs))
	copy(p, sig)
	buf.PutU16LE(p[format.SignatureSize:], uint16(len(offs)))
	for i, off := range offs {
		e := p[format.ListHeaderSize+stride*i:]
		buf.PutU32LE(e, off)
		if hint != nil {
			buf.PutU32LE(e[4:], hint(i))
		}
	}
	return p
}

func (b *builder) value(v Value) uint32 {
	var dataLen, dataOff uint32
	switch n := len(v.Data); {
	case n <= 4:
		var raw [4]byte
		copy(raw[:], v.Data)
		dataLen, dataOff = uint32(n)|format.VKDataInlineBit, buf.U32LE(raw[:])
	case n > format.DBChunkSize && b.minor >= format.DBMinMinorVersion:
		dataLen, dataOff = uint32(n), b.bigData(v.Data)
	default:
		dataLen, dataOff = uint32(n), b.write(v.Data)
	}
	name := encodeName(v.Name)
	p := make([]byte, format.VKMinSize+len(name))
	copy(p, format.VKSignature)
	buf.PutU16LE(p[format.VKNameLenOffset:], uint16(len(name)))
	buf.PutU32LE(p[format.VKDataLenOffset:], dataLen)
	buf.PutU32LE(p[format.VKDataOffOffset:], dataOff)
	buf.PutU32LE(p[format.VKTypeOffset:], uint32(v.Type))
	if isCompressible(v.Name) {
		buf.PutU16LE(p[format.VKFlagsOffset:], format.VKFlagASCIIName)
	}
	copy(p[format.VKNameOffset:], name)
	return b.write(p)
}

func (b *builder) bigData(data []byte) uint32 {
	var segs []uint32
	for len(data) > 0 {
		n := min(len(data), format.DBChunkSize)
		segs = append(segs, b.write(data[:n]))
		data = data[n:]
	}
	list := make([]byte, 4*len(segs))
	for i, s := range segs {
		buf.PutU32LE(list[4*i:], s)
	}
	listOff := b.write(list)
	p := make([]byte, format.DBHeaderSize)
	copy(p, format.DBSignature)
	buf.PutU16LE(p[format.DBCountOffset:], uint16(len(segs)))
	buf.PutU32LE(p[format.DBListOffset:], listOff)
	return b.write(p)
}

// isCompressible reports whether name fits the one-byte name encoding. The
// builder only compresses ASCII names.
func isCompressible(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func encodeName(name string) []byte {
	if isCompressible(name) {
		return []byte(name)
	}
	return UTF16(name)
}

func lhHash(name string) uint32 {
	var h uint32
	for _, r := range strings.ToUpper(name) {
		h = h*37 + uint32(r)
	}
	return h
}

func lfHint(name string) uint32 {
	var raw [4]byte
	copy(raw[:], name)
	return buf.U32LE(raw[:])
}
