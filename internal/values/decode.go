// Package values renders typed value payloads as a type label and a display
// string. Decode is pure: the same payload always yields the same strings.
package values

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/regview/internal/reader"
)

// Type labels shown in the values table.
const (
	LabelNone                     = "RegNone"
	LabelUnknown                  = "RegUnknown"
	LabelSZ                       = "RegSZ"
	LabelExpandSZ                 = "RegExpandSZ"
	LabelBinary                   = "RegBinary"
	LabelBinaryUTF16              = "RegBinary (UTF-16LE)"
	LabelBinaryCP1252             = "RegBinary (CP1252)"
	LabelDWord                    = "RegDWord"
	LabelDWordBigEndian           = "RegDWordBigEndian"
	LabelLink                     = "RegLink"
	LabelMultiSZ                  = "RegMultiSZ"
	LabelResourceList             = "RegResourceList"
	LabelFullResourceDescriptor   = "RegFullResourceDescriptor"
	LabelResourceRequirementsList = "RegResourceRequirementsList"
	LabelQWord                    = "RegQWord"
	LabelFileTime                 = "RegFileTime"
)

// MultiSZSeparator joins MULTI_SZ segments for display.
const MultiSZSeparator = "|"

// dmioPrefix marks disk-manager identifiers stored as binary values.
const dmioPrefix = "DMIO:ID:"

// Decode returns the label and display string for v.
func Decode(v reader.Value) (label, display string) {
	return DecodeData(v.Data)
}

// DecodeData returns the label and display string for a payload.
func DecodeData(d reader.Data) (label, display string) {
	switch d := d.(type) {
	case reader.None:
		return LabelNone, ""
	case reader.Unknown:
		return LabelUnknown, ""
	case reader.SZ:
		return LabelSZ, string(d)
	case reader.ExpandSZ:
		return LabelExpandSZ, string(d)
	case reader.Binary:
		return decodeBinary(d)
	case reader.DWord:
		return LabelDWord, fmt.Sprintf("0x%08x (%d)", uint32(d), uint32(d))
	case reader.DWordBigEndian:
		return LabelDWordBigEndian, fmt.Sprintf("0x%08X", swap32(uint32(d)))
	case reader.Link:
		return LabelLink, string(d)
	case reader.MultiSZ:
		return LabelMultiSZ, strings.Join(d, MultiSZSeparator)
	case reader.ResourceList:
		return LabelResourceList, string(d)
	case reader.FullResourceDescriptor:
		return LabelFullResourceDescriptor, string(d)
	case reader.ResourceRequirementsList:
		return LabelResourceRequirementsList, string(d)
	case reader.QWord:
		return LabelQWord, fmt.Sprintf("0x%016x (%d)", uint64(d), uint64(d))
	case reader.FileTime:
		return LabelFileTime, "not supported"
	default:
		return LabelUnknown, ""
	}
}

func swap32(v uint32) uint32 {
	return v>>24 | (v>>8)&0xFF00 | (v<<8)&0xFF0000 | v<<24
}

// decodeBinary tries UTF-16LE text, then Windows-1252 text (with the DMIO
// identifier carve-out), then falls back to a hex dump.
func decodeBinary(b []byte) (string, string) {
	if s, ok := utf16Text(b); ok && isASCII(s) {
		return LabelBinaryUTF16, s
	}
	if s, ok := cp1252Text(b); ok {
		if strings.HasPrefix(s, dmioPrefix) && len(b) >= len(dmioPrefix)+16 {
			if id, err := guidLE(b[len(dmioPrefix) : len(dmioPrefix)+16]); err == nil {
				return LabelBinaryCP1252, dmioPrefix + "{" + id.String() + "}"
			}
		}
		if isASCII(s) {
			return LabelBinaryCP1252, s
		}
	}
	return LabelBinary, HexDump(b)
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// utf16Text decodes b strictly: odd lengths and unpaired surrogates fail.
func utf16Text(b []byte) (string, bool) {
	if len(b)%2 != 0 {
		return "", false
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

func cp1252Text(b []byte) (string, bool) {
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// guidLE parses a GUID stored with its first three fields little-endian.
func guidLE(b []byte) (uuid.UUID, error) {
	raw := append([]byte(nil), b...)
	raw[0], raw[1], raw[2], raw[3] = raw[3], raw[2], raw[1], raw[0]
	raw[4], raw[5] = raw[5], raw[4]
	raw[6], raw[7] = raw[7], raw[6]
	return uuid.FromBytes(raw)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// HexDump renders b as space-separated uppercase byte pairs, e.g. "00 1A FF".
func HexDump(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}
