package reader

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/pkg/types"
)

// KeyNode is a materialised key. It owns its fields and stays valid after
// the hive is closed, though it can only be expanded while the hive is open.
type KeyNode struct {
	// Offset is the cell offset relative to the first bin; it identifies
	// the node within its hive.
	Offset      uint32
	Name        string
	LastWritten time.Time
	SubkeyCount int
	ValueCount  int
	IsRoot      bool

	subkeyList uint32
	valueList  uint32
}

// RootKeyNode returns the hive's root key.
func (h *Hive) RootKeyNode() (KeyNode, error) {
	if err := h.requireClean(); err != nil {
		return KeyNode{}, err
	}
	off, err := h.rootOffset()
	if err != nil {
		return KeyNode{}, err
	}
	n, err := h.keyNode(off)
	if err != nil {
		return KeyNode{}, fmt.Errorf("root key: %w", err)
	}
	if !n.IsRoot {
		logger.Warn("root key node lacks the hive-entry flag", "offset", off)
	}
	return n, nil
}

func (h *Hive) keyNode(offset uint32) (KeyNode, error) {
	c, err := h.cell(offset)
	if err != nil {
		return KeyNode{}, err
	}
	nk, err := format.DecodeNK(c.Data)
	if err != nil {
		return KeyNode{}, fmt.Errorf("key 0x%x: %w: %w", offset, types.ErrCorrupt, err)
	}
	name, err := DecodeKeyName(nk)
	if err != nil {
		return KeyNode{}, fmt.Errorf("key 0x%x: %w: %w", offset, types.ErrCorrupt, err)
	}
	return KeyNode{
		Offset:      offset,
		Name:        name,
		LastWritten: format.FiletimeToTime(nk.LastWriteRaw),
		SubkeyCount: int(nk.SubkeyCount),
		ValueCount:  int(nk.ValueCount),
		IsRoot:      nk.IsRoot(),
		subkeyList:  nk.SubkeyListOffset,
		valueList:   nk.ValueListOffset,
	}, nil
}

// Subkeys returns the children of n in on-disk index order.
func (h *Hive) Subkeys(n KeyNode) ([]KeyNode, error) {
	if err := h.requireClean(); err != nil {
		return nil, err
	}
	if n.SubkeyCount == 0 || n.subkeyList == format.InvalidOffset {
		return nil, nil
	}
	offsets, err := h.subkeyOffsets(n.subkeyList, 0)
	if err != nil {
		return nil, fmt.Errorf("subkeys of %q: %w", n.Name, err)
	}
	out := make([]KeyNode, 0, len(offsets))
	for _, off := range offsets {
		child, err := h.keyNode(off)
		if err != nil {
			return nil, fmt.Errorf("subkeys of %q: %w", n.Name, err)
		}
		out = append(out, child)
	}
	return out, nil
}

// subkeyOffsets flattens an index cell. ri lists may only point at leaf
// lists.
func (h *Hive) subkeyOffsets(offset uint32, depth int) ([]uint32, error) {
	c, err := h.cell(offset)
	if err != nil {
		return nil, err
	}
	list, err := format.DecodeSubkeyList(c.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCorrupt, err)
	}
	if list.Kind != format.ListRI {
		return list.Offsets, nil
	}
	if depth > 0 {
		return nil, fmt.Errorf("list 0x%x: %w: %w", offset, types.ErrCorrupt, errListDepth)
	}
	var out []uint32
	for _, leaf := range list.Offsets {
		part, err := h.subkeyOffsets(leaf, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

// Subkey finds the child of n named name, ignoring case.
func (h *Hive) Subkey(n KeyNode, name string) (KeyNode, bool, error) {
	children, err := h.Subkeys(n)
	if err != nil {
		return KeyNode{}, false, err
	}
	for _, c := range children {
		if strings.EqualFold(c.Name, name) {
			return c, true, nil
		}
	}
	return KeyNode{}, false, nil
}

// Subpath walks segs below n. It returns (nil, nil) when a segment does not
// exist and an error only when the hive itself cannot be read.
func (h *Hive) Subpath(n KeyNode, segs []string) (*KeyNode, error) {
	cur := n
	for _, seg := range segs {
		next, ok, err := h.Subkey(cur, seg)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		cur = next
	}
	return &cur, nil
}

// DecodeKeyName converts the nk name encoding into UTF-8.
func DecodeKeyName(nk format.NKRecord) (string, error) {
	return decodeName(nk.NameRaw, nk.NameIsCompressed())
}

func decodeName(raw []byte, compressed bool) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if compressed {
		if isASCII(raw) {
			return string(raw), nil
		}
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("windows-1252 name: %w", err)
		}
		return string(decoded), nil
	}
	if len(raw)%2 != 0 {
		return "", errors.New("utf-16 name has odd length")
	}
	return DecodeUTF16(raw), nil
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
