package reader

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/regview/internal/buf"
	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/pkg/types"
)

// Value is a decoded value record. The empty name denotes the key's default
// value.
type Value struct {
	Name string
	Type types.RegType
	Data Data
}

// Data is the typed payload of a value. The set of implementations is closed;
// switch on the concrete type.
type Data interface {
	regData()
}

type (
	None                     struct{}
	Unknown                  struct{ Raw []byte }
	SZ                       string
	ExpandSZ                 string
	Binary                   []byte
	DWord                    uint32
	DWordBigEndian           uint32 // as stored, not byte-swapped
	Link                     string
	MultiSZ                  []string
	ResourceList             string
	FullResourceDescriptor   string
	ResourceRequirementsList string
	QWord                    uint64
	FileTime                 uint64
)

func (None) regData()                     {}
func (Unknown) regData()                  {}
func (SZ) regData()                       {}
func (ExpandSZ) regData()                 {}
func (Binary) regData()                   {}
func (DWord) regData()                    {}
func (DWordBigEndian) regData()           {}
func (Link) regData()                     {}
func (MultiSZ) regData()                  {}
func (ResourceList) regData()             {}
func (FullResourceDescriptor) regData()   {}
func (ResourceRequirementsList) regData() {}
func (QWord) regData()                    {}
func (FileTime) regData()                 {}

// Values returns the values of n in value-list order.
func (h *Hive) Values(n KeyNode) ([]Value, error) {
	if err := h.requireClean(); err != nil {
		return nil, err
	}
	if n.ValueCount == 0 || n.valueList == format.InvalidOffset {
		return nil, nil
	}
	c, err := h.cell(n.valueList)
	if err != nil {
		return nil, fmt.Errorf("values of %q: %w", n.Name, err)
	}
	offsets, err := format.DecodeOffsetList(c.Data, n.ValueCount)
	if err != nil {
		return nil, fmt.Errorf("values of %q: %w: %w", n.Name, types.ErrCorrupt, err)
	}
	out := make([]Value, 0, len(offsets))
	for _, off := range offsets {
		v, err := h.value(off)
		if err != nil {
			return nil, fmt.Errorf("values of %q: %w", n.Name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (h *Hive) value(offset uint32) (Value, error) {
	c, err := h.cell(offset)
	if err != nil {
		return Value{}, err
	}
	vk, err := format.DecodeVK(c.Data)
	if err != nil {
		return Value{}, fmt.Errorf("value 0x%x: %w: %w", offset, types.ErrCorrupt, err)
	}
	name, err := decodeName(vk.NameRaw, vk.NameIsASCII())
	if err != nil {
		return Value{}, fmt.Errorf("value 0x%x: %w: %w", offset, types.ErrCorrupt, err)
	}
	raw, err := h.valueBytes(vk)
	if err != nil {
		return Value{}, fmt.Errorf("value %q: %w", name, err)
	}
	t := types.RegType(vk.Type)
	return Value{Name: name, Type: t, Data: DecodeData(t, raw)}, nil
}

// valueBytes returns a private copy of the value's data.
func (h *Hive) valueBytes(vk format.VKRecord) ([]byte, error) {
	n := vk.Length()
	if vk.DataInline() {
		if n > 4 {
			return nil, fmt.Errorf("inline length %d: %w", n, types.ErrCorrupt)
		}
		return vk.InlineData(), nil
	}
	if n == 0 {
		return nil, nil
	}
	c, err := h.cell(vk.DataOffset)
	if err != nil {
		return nil, err
	}
	if n > format.DBChunkSize && h.minorVersion() >= format.DBMinMinorVersion && format.IsDBRecord(c.Data) {
		return h.bigData(c.Data, n)
	}
	if len(c.Data) < n {
		return nil, fmt.Errorf("data cell holds %d of %d bytes: %w", len(c.Data), n, types.ErrCorrupt)
	}
	return append([]byte(nil), c.Data[:n]...), nil
}

// bigData joins the segments of a db record. Each segment contributes at
// most DBChunkSize bytes.
func (h *Hive) bigData(payload []byte, n int) ([]byte, error) {
	db, err := format.DecodeDB(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCorrupt, err)
	}
	lc, err := h.cell(db.BlocklistOffset)
	if err != nil {
		return nil, fmt.Errorf("db block list: %w", err)
	}
	segs, err := format.DecodeOffsetList(lc.Data, int(db.NumBlocks))
	if err != nil {
		return nil, fmt.Errorf("db block list: %w: %w", types.ErrCorrupt, err)
	}
	out := make([]byte, 0, n)
	for i, off := range segs {
		sc, err := h.cell(off)
		if err != nil {
			return nil, fmt.Errorf("db segment %d: %w", i, err)
		}
		take := min(len(sc.Data), format.DBChunkSize, n-len(out))
		out = append(out, sc.Data[:take]...)
		if len(out) == n {
			return out, nil
		}
	}
	return nil, fmt.Errorf("db data: got %d of %d bytes: %w", len(out), n, types.ErrCorrupt)
}

// DecodeData maps raw bytes to the payload variant for t. Short numeric
// payloads are zero-extended.
func DecodeData(t types.RegType, raw []byte) Data {
	switch t {
	case types.REG_NONE:
		return None{}
	case types.REG_SZ:
		return SZ(DecodeUTF16String(raw))
	case types.REG_EXPAND_SZ:
		return ExpandSZ(DecodeUTF16String(raw))
	case types.REG_BINARY:
		return Binary(raw)
	case types.REG_DWORD:
		return DWord(buf.U32LE(padded(raw, 4)))
	case types.REG_DWORD_BE:
		return DWordBigEndian(buf.U32LE(padded(raw, 4)))
	case types.REG_LINK:
		return Link(DecodeUTF16String(raw))
	case types.REG_MULTI_SZ:
		return MultiSZ(DecodeMultiString(raw))
	case types.REG_RESOURCE_LIST:
		return ResourceList(hexText(raw))
	case types.REG_FULL_RESOURCE_DESCRIPTOR:
		return FullResourceDescriptor(hexText(raw))
	case types.REG_RESOURCE_REQUIREMENTS_LIST:
		return ResourceRequirementsList(hexText(raw))
	case types.REG_QWORD:
		return QWord(buf.U64LE(padded(raw, 8)))
	case types.REG_FILETIME:
		return FileTime(buf.U64LE(padded(raw, 8)))
	default:
		return Unknown{Raw: raw}
	}
}

func padded(raw []byte, n int) []byte {
	if len(raw) >= n {
		return raw
	}
	out := make([]byte, n)
	copy(out, raw)
	return out
}

func hexText(raw []byte) string {
	return strings.ToUpper(hex.EncodeToString(raw))
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16 decodes UTF-16LE, replacing invalid sequences with U+FFFD. A
// trailing odd byte is dropped.
func DecodeUTF16(data []byte) string {
	data = data[:len(data)&^1]
	out, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return ""
	}
	return string(out)
}

// DecodeUTF16String decodes a REG_SZ style payload, stopping at the first
// NUL code unit.
func DecodeUTF16String(data []byte) string {
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return DecodeUTF16(data[:i])
		}
	}
	return DecodeUTF16(data)
}

// DecodeMultiString splits a REG_MULTI_SZ payload. It stops at the first
// empty string, which is the list terminator.
func DecodeMultiString(data []byte) []string {
	var out []string
	start := 0
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] != 0 || data[i+1] != 0 {
			continue
		}
		if i == start {
			return out
		}
		out = append(out, DecodeUTF16(data[start:i]))
		start = i + 2
	}
	if start < len(data)&^1 {
		out = append(out, DecodeUTF16(data[start:]))
	}
	return out
}
