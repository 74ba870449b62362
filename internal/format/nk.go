package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/regview/internal/buf"
)

// NKRecord is a decoded key node. NameRaw aliases the input buffer and is
// either CP1252 (NameIsCompressed) or UTF-16LE.
type NKRecord struct {
	Flags            uint16
	LastWriteRaw     uint64
	ParentOffset     uint32
	SubkeyCount      uint32
	SubkeyListOffset uint32
	ValueCount       uint32
	ValueListOffset  uint32
	ClassNameOffset  uint32
	ClassLength      uint16
	NameRaw          []byte
}

func (nk NKRecord) NameIsCompressed() bool { return nk.Flags&NKFlagCompressedName != 0 }

// IsRoot reports whether the node carries the hive-entry flag that only the
// root key has.
func (nk NKRecord) IsRoot() bool { return nk.Flags&NKFlagHiveEntry != 0 }

// DecodeNK decodes a key node from a cell payload.
func DecodeNK(b []byte) (NKRecord, error) {
	if len(b) < NKMinSize {
		return NKRecord{}, fmt.Errorf("nk: %w (have %d, need %d)", ErrTruncated, len(b), NKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], NKSignature) {
		return NKRecord{}, fmt.Errorf("nk: %w", ErrSignatureMismatch)
	}
	nk := NKRecord{
		Flags:            buf.U16LE(b[NKFlagsOffset:]),
		LastWriteRaw:     buf.U64LE(b[NKLastWriteOffset:]),
		ParentOffset:     buf.U32LE(b[NKParentOffset:]),
		SubkeyCount:      buf.U32LE(b[NKSubkeyCountOffset:]),
		SubkeyListOffset: buf.U32LE(b[NKSubkeyListOffset:]),
		ValueCount:       buf.U32LE(b[NKValueCountOffset:]),
		ValueListOffset:  buf.U32LE(b[NKValueListOffset:]),
		ClassNameOffset:  buf.U32LE(b[NKClassNameOffset:]),
		ClassLength:      buf.U16LE(b[NKClassLenOffset:]),
	}
	if nk.SubkeyCount > MaxSubkeyCount {
		return NKRecord{}, fmt.Errorf("nk subkey count %d: %w", nk.SubkeyCount, ErrSanityLimit)
	}
	if nk.ValueCount > MaxValueCount {
		return NKRecord{}, fmt.Errorf("nk value count %d: %w", nk.ValueCount, ErrSanityLimit)
	}
	nameLen := int(buf.U16LE(b[NKNameLenOffset:]))
	name, ok := buf.Slice(b, NKNameOffset, nameLen)
	if !ok {
		return NKRecord{}, fmt.Errorf("nk name: %w (need %d bytes, have %d)", ErrTruncated, nameLen, len(b)-NKNameOffset)
	}
	nk.NameRaw = name
	return nk, nil
}
