package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/regview/internal/buf"
)

// VKRecord is a decoded value key.
type VKRecord struct {
	DataLength uint32
	DataOffset uint32
	Type       uint32
	Flags      uint16
	NameRaw    []byte
}

func (vk VKRecord) NameIsASCII() bool { return vk.Flags&VKFlagASCIIName != 0 }

// DataInline reports whether up to four bytes of data live in the DataOffset
// field itself.
func (vk VKRecord) DataInline() bool { return vk.DataLength&VKDataInlineBit != 0 }

// Length is the data length with the inline bit cleared.
func (vk VKRecord) Length() int { return int(vk.DataLength & VKDataLengthMask) }

// InlineData returns the inline bytes; callers check DataInline first.
func (vk VKRecord) InlineData() []byte {
	var raw [4]byte
	buf.PutU32LE(raw[:], vk.DataOffset)
	n := vk.Length()
	if n > len(raw) {
		n = len(raw)
	}
	return raw[:n]
}

// DecodeVK decodes a value key from a cell payload.
func DecodeVK(b []byte) (VKRecord, error) {
	if len(b) < VKMinSize {
		return VKRecord{}, fmt.Errorf("vk: %w (have %d, need %d)", ErrTruncated, len(b), VKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], VKSignature) {
		return VKRecord{}, fmt.Errorf("vk: %w", ErrSignatureMismatch)
	}
	vk := VKRecord{
		DataLength: buf.U32LE(b[VKDataLenOffset:]),
		DataOffset: buf.U32LE(b[VKDataOffOffset:]),
		Type:       buf.U32LE(b[VKTypeOffset:]),
		Flags:      buf.U16LE(b[VKFlagsOffset:]),
	}
	if vk.Length() > MaxValueDataLen {
		return VKRecord{}, fmt.Errorf("vk data len %d: %w", vk.Length(), ErrSanityLimit)
	}
	nameLen := int(buf.U16LE(b[VKNameLenOffset:]))
	name, ok := buf.Slice(b, VKNameOffset, nameLen)
	if !ok {
		return VKRecord{}, fmt.Errorf("vk name: %w (need %d bytes, have %d)", ErrTruncated, nameLen, len(b)-VKNameOffset)
	}
	vk.NameRaw = name
	return vk, nil
}
