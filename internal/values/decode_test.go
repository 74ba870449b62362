package values

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/regview/internal/reader"
	"github.com/joshuapare/regview/internal/testutil"
	"github.com/joshuapare/regview/pkg/types"
)

func TestDecodeData_Scalars(t *testing.T) {
	tests := []struct {
		name    string
		data    reader.Data
		label   string
		display string
	}{
		{"none", reader.None{}, LabelNone, ""},
		{"unknown", reader.Unknown{Raw: []byte{1, 2}}, LabelUnknown, ""},
		{"sz", reader.SZ("hello"), LabelSZ, "hello"},
		{"expand sz", reader.ExpandSZ(`%SystemRoot%\x`), LabelExpandSZ, `%SystemRoot%\x`},
		{"link", reader.Link(`\Registry\Machine`), LabelLink, `\Registry\Machine`},
		{"dword", reader.DWord(42), LabelDWord, "0x0000002a (42)"},
		{"dword max", reader.DWord(0xFFFFFFFF), LabelDWord, "0xffffffff (4294967295)"},
		{"dword be", reader.DWordBigEndian(0x2A), LabelDWordBigEndian, "0x2A000000"},
		{"qword", reader.QWord(1 << 40), LabelQWord, "0x0000010000000000 (1099511627776)"},
		{"multi sz", reader.MultiSZ{"a", "b", "c"}, LabelMultiSZ, "a|b|c"},
		{"multi sz empty", reader.MultiSZ(nil), LabelMultiSZ, ""},
		{"resource list", reader.ResourceList("001AFF"), LabelResourceList, "001AFF"},
		{"full descriptor", reader.FullResourceDescriptor("AB"), LabelFullResourceDescriptor, "AB"},
		{"requirements", reader.ResourceRequirementsList("CD"), LabelResourceRequirementsList, "CD"},
		{"filetime", reader.FileTime(132000000000000000), LabelFileTime, "not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, display := DecodeData(tt.data)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.display, display)
		})
	}
}

func TestDecodeData_Binary(t *testing.T) {
	dmio := append([]byte("DMIO:ID:"),
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16)

	tests := []struct {
		name    string
		raw     []byte
		label   string
		display string
	}{
		{"utf16 text", testutil.UTF16("Hello"), LabelBinaryUTF16, "Hello"},
		{"cp1252 text", []byte("AB"), LabelBinaryCP1252, "AB"},
		{"odd length ascii", []byte("abc"), LabelBinaryCP1252, "abc"},
		{"dmio identifier", dmio, LabelBinaryCP1252, "DMIO:ID:{04030201-0605-0807-0910-111213141516}"},
		{"short dmio", []byte("DMIO:ID:xy"), LabelBinaryCP1252, "DMIO:ID:xy"},
		{"hex fallback", []byte{0x00, 0x1A, 0xFF}, LabelBinary, "00 1A FF"},
		{"empty", []byte{}, LabelBinaryUTF16, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, display := DecodeData(reader.Binary(tt.raw))
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.display, display)
		})
	}
}

func TestDecode_FromRawBytes(t *testing.T) {
	v := reader.Value{
		Name: "Start",
		Type: types.REG_DWORD,
		Data: reader.DecodeData(types.REG_DWORD, testutil.DWord(2)),
	}
	label, display := Decode(v)
	assert.Equal(t, LabelDWord, label)
	assert.Equal(t, "0x00000002 (2)", display)

	be := reader.DecodeData(types.REG_DWORD_BE, []byte{0x00, 0x00, 0x00, 0x2A})
	_, display = DecodeData(be)
	assert.Equal(t, "0x0000002A", display)
}

func TestDecode_Pure(t *testing.T) {
	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}
	l1, d1 := DecodeData(reader.Binary(raw))
	l2, d2 := DecodeData(reader.Binary(raw))
	assert.Equal(t, l1, l2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}, raw)
}

func TestHexDump(t *testing.T) {
	assert.Equal(t, "", HexDump(nil))
	assert.Equal(t, "0A", HexDump([]byte{0x0A}))
	assert.Equal(t, "DE AD BE EF", HexDump([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
}
