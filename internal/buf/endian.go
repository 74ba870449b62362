// Package buf holds the little helpers every decoder in this module leans on:
// short-read tolerant endian reads and overflow-checked slicing.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16, or 0 when b is short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32, or 0 when b is short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64LE reads a little-endian uint64, or 0 when b is short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I32LE reads a little-endian int32, or 0 when b is short.
func I32LE(b []byte) int32 {
	return int32(U32LE(b))
}

// PutU16LE writes v at b[0:2]. It is a no-op when b is short.
func PutU16LE(b []byte, v uint16) {
	if len(b) >= 2 {
		binary.LittleEndian.PutUint16(b, v)
	}
}

// PutU32LE writes v at b[0:4]. It is a no-op when b is short.
func PutU32LE(b []byte, v uint32) {
	if len(b) >= 4 {
		binary.LittleEndian.PutUint32(b, v)
	}
}

// PutU64LE writes v at b[0:8]. It is a no-op when b is short.
func PutU64LE(b []byte, v uint64) {
	if len(b) >= 8 {
		binary.LittleEndian.PutUint64(b, v)
	}
}
