package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/regview/internal/testutil"
	"github.com/joshuapare/regview/pkg/types"
)

func TestDecodeMultiString(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []string
	}{
		{"terminated", testutil.MultiSZ("a", "b", "c"), []string{"a", "b", "c"}},
		{"missing final terminator", append(testutil.SZ("a"), testutil.UTF16("b")...), []string{"a", "b"}},
		{"empty", testutil.MultiSZ(), nil},
		{"stops at empty string", append(testutil.MultiSZ("a"), testutil.SZ("hidden")...), []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeMultiString(tt.data))
		})
	}
}

func TestDecodeUTF16String(t *testing.T) {
	assert.Equal(t, "Hello", DecodeUTF16String(testutil.SZ("Hello")))
	assert.Equal(t, "Hi", DecodeUTF16String(append(testutil.SZ("Hi"), 'x', 0)))
	assert.Equal(t, "A", DecodeUTF16String([]byte{'A', 0, 'B'}), "odd trailing byte dropped")
	assert.Equal(t, "�", DecodeUTF16([]byte{0x00, 0xD8}), "lone surrogate replaced")
}

func TestDecodeDataShortNumbers(t *testing.T) {
	assert.Equal(t, DWord(0x0201), DecodeData(types.REG_DWORD, []byte{1, 2}))
	assert.Equal(t, QWord(0), DecodeData(types.REG_QWORD, nil))
	assert.Equal(t, Link("target"), DecodeData(types.REG_LINK, testutil.UTF16("target")))
	assert.Equal(t, ExpandSZ("%SystemRoot%"), DecodeData(types.REG_EXPAND_SZ, testutil.SZ("%SystemRoot%")))
	assert.Equal(t, FullResourceDescriptor("0A"), DecodeData(types.REG_FULL_RESOURCE_DESCRIPTOR, []byte{0x0A}))
	assert.Equal(t, ResourceRequirementsList(""), DecodeData(types.REG_RESOURCE_REQUIREMENTS_LIST, nil))
}
