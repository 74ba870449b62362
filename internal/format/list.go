package format

import (
	"fmt"

	"github.com/joshuapare/regview/internal/buf"
)

// ListKind identifies the flavour of a subkey index cell.
type ListKind int

const (
	ListUnknown ListKind = iota
	ListLI               // plain offsets
	ListLF               // offset + 4-char name hint
	ListLH               // offset + name hash
	ListRI               // offsets of further li/lf/lh lists
)

// SubkeyList is a decoded subkey index. For ListRI the offsets point at
// nested lists rather than key nodes.
type SubkeyList struct {
	Kind    ListKind
	Offsets []uint32
}

// DecodeSubkeyList decodes an li, lf, lh or ri cell payload.
func DecodeSubkeyList(b []byte) (SubkeyList, error) {
	if len(b) < ListHeaderSize {
		return SubkeyList{}, fmt.Errorf("subkey list: %w", ErrTruncated)
	}
	count := int(buf.U16LE(b[SignatureSize:]))
	var kind ListKind
	stride := OffsetFieldSize
	switch string(b[:SignatureSize]) {
	case "li":
		kind = ListLI
	case "ri":
		kind = ListRI
	case "lf":
		kind, stride = ListLF, LFEntrySize
	case "lh":
		kind, stride = ListLH, LFEntrySize
	default:
		return SubkeyList{}, fmt.Errorf("subkey list %q: %w", b[:SignatureSize], ErrUnsupported)
	}
	if _, err := buf.CheckListBounds(len(b), ListHeaderSize, count, stride); err != nil {
		return SubkeyList{}, fmt.Errorf("subkey list: %w: %w", ErrTruncated, err)
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = buf.U32LE(b[ListHeaderSize+i*stride:])
	}
	return SubkeyList{Kind: kind, Offsets: out}, nil
}

// DecodeOffsetList decodes count cell offsets from a value list or a db
// block list.
func DecodeOffsetList(b []byte, count int) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	if _, err := buf.CheckListBounds(len(b), 0, count, OffsetFieldSize); err != nil {
		return nil, fmt.Errorf("offset list: %w: %w", ErrTruncated, err)
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = buf.U32LE(b[i*OffsetFieldSize:])
	}
	return out, nil
}
