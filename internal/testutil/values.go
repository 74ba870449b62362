package testutil

import (
	"fmt"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/regview/internal/buf"
	"github.com/joshuapare/regview/pkg/types"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UTF16 encodes s as UTF-16LE without a terminator.
func UTF16(s string) []byte {
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return out
}

// SZ encodes s the way REG_SZ data is stored: UTF-16LE plus a NUL.
func SZ(s string) []byte { return append(UTF16(s), 0, 0) }

// MultiSZ encodes a REG_MULTI_SZ payload.
func MultiSZ(items ...string) []byte {
	var out []byte
	for _, s := range items {
		out = append(out, SZ(s)...)
	}
	return append(out, 0, 0)
}

func DWord(v uint32) []byte {
	b := make([]byte, 4)
	buf.PutU32LE(b, v)
	return b
}

func QWord(v uint64) []byte {
	b := make([]byte, 8)
	buf.PutU64LE(b, v)
	return b
}

// String builds a REG_SZ value.
func String(name, data string) Value { return Value{Name: name, Type: types.REG_SZ, Data: SZ(data)} }

var fixtureTime = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

// WindowsLike returns a small tree shaped like a SOFTWARE/SYSTEM hive. The
// Classes key carries enough entries that a match-everything search exceeds
// 1000 results.
func WindowsLike() *Key {
	run := &Key{
		Name:      "Run",
		LastWrite: fixtureTime,
		Values: []Value{
			String("OneDrive", `C:\Users\me\AppData\Local\Microsoft\OneDrive\OneDrive.exe /background`),
			String("SecurityHealth", `%windir%\system32\SecurityHealthSystray.exe`),
		},
	}
	currentVersion := &Key{
		Name:      "CurrentVersion",
		LastWrite: fixtureTime,
		Values: []Value{
			String("ProgramFilesDir", `C:\Program Files`),
			{Name: "InstallTime", Type: types.REG_QWORD, Data: QWord(0x01D9_9A2B_3C4D_5E6F)},
		},
		Subkeys: []*Key{run, {Name: "RunOnce", LastWrite: fixtureTime}},
	}
	windows := &Key{Name: "Windows", LastWrite: fixtureTime, Subkeys: []*Key{currentVersion}}
	microsoft := &Key{Name: "Microsoft", LastWrite: fixtureTime, Subkeys: []*Key{windows, {Name: "Windows NT"}}}

	classes := &Key{Name: "Classes", LastWrite: fixtureTime}
	for i := range 600 {
		classes.Subkeys = append(classes.Subkeys, &Key{
			Name:   fmt.Sprintf(".ext%03d", i),
			Values: []Value{String("", fmt.Sprintf("file%03d", i))},
		})
	}

	software := &Key{Name: "Software", LastWrite: fixtureTime, Subkeys: []*Key{microsoft, classes}}
	services := &Key{
		Name: "Services",
		List: "ri",
		Subkeys: []*Key{
			{Name: "Tcpip", Values: []Value{
				{Name: "Start", Type: types.REG_DWORD, Data: DWord(2)},
				{Name: "DependOnService", Type: types.REG_MULTI_SZ, Data: MultiSZ("Afd", "Nsi", "Tdx")},
			}},
			{Name: "Dnscache", Values: []Value{{Name: "Start", Type: types.REG_DWORD, Data: DWord(2)}}},
			{Name: "Run"},
		},
	}
	controlSet := &Key{Name: "ControlSet001", List: "lf", Subkeys: []*Key{services}}
	return &Key{
		Name:      "ROOT",
		LastWrite: fixtureTime,
		Values:    []Value{String("RootValue", "at the top")},
		Subkeys:   []*Key{software, controlSet, {Name: "Empty", List: "li"}},
	}
}
