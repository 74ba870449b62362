package format

import (
	"bytes"
	"fmt"
	"unicode/utf16"

	"github.com/joshuapare/regview/internal/buf"
)

// Header is the decoded base block of a hive or transaction log.
//
//	Offset  Size  Description
//	 0x000   4    'r' 'e' 'g' 'f'
//	 0x004   4    Primary sequence number
//	 0x008   4    Secondary sequence number
//	 0x00C   8    Last write timestamp (FILETIME)
//	 0x014   4    Major version
//	 0x018   4    Minor version
//	 0x01C   4    File type (0 primary, 1/2 legacy log, 6 new log)
//	 0x020   4    File format (1 = direct memory load)
//	 0x024   4    Root cell offset, relative to the first HBIN
//	 0x028   4    Hive bins data size
//	 0x02C   4    Clustering factor
//	 0x030  64    File name (UTF-16LE, partial)
//	 0x1FC   4    XOR checksum of bytes 0x000..0x1FB
type Header struct {
	PrimarySequence   uint32
	SecondarySequence uint32
	LastWriteRaw      uint64
	MajorVersion      uint32
	MinorVersion      uint32
	FileType          uint32
	FileFormat        uint32
	RootCellOffset    uint32
	HiveBinsDataSize  uint32
	ClusteringFactor  uint32
	FileName          string
	Checksum          uint32
}

// Dirty reports whether the sequence numbers disagree, meaning a write was
// interrupted and transaction logs are needed to get a consistent hive.
func (h Header) Dirty() bool {
	return h.PrimarySequence != h.SecondarySequence
}

// HeaderChecksum computes the base block checksum over b[0:508]. The result
// is adjusted the same way Windows does: 0 becomes 1 and 0xFFFFFFFF becomes
// 0xFFFFFFFE.
func HeaderChecksum(b []byte) uint32 {
	if len(b) < REGFChecksumRegionLen {
		return 0
	}
	var sum uint32
	for i := 0; i < REGFChecksumRegionLen; i += 4 {
		sum ^= buf.U32LE(b[i:])
	}
	switch sum {
	case 0:
		sum = 1
	case 0xFFFFFFFF:
		sum = 0xFFFFFFFE
	}
	return sum
}

// SetHeaderChecksum recomputes the checksum of the base block in b in place.
func SetHeaderChecksum(b []byte) {
	buf.PutU32LE(b[REGFCheckSumOffset:], HeaderChecksum(b))
}

// ParseHeader decodes the base block at the start of b. Only the first 512
// bytes are required so the same function serves log files. The signature is
// checked, the checksum is not; use ValidateHeader for that.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < LogBaseBlockSize {
		return Header{}, fmt.Errorf("regf header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:REGFSignatureSize], REGFSignature) {
		return Header{}, fmt.Errorf("regf header: %w", ErrSignatureMismatch)
	}
	return Header{
		PrimarySequence:   buf.U32LE(b[REGFPrimarySeqOffset:]),
		SecondarySequence: buf.U32LE(b[REGFSecondarySeqOffset:]),
		LastWriteRaw:      buf.U64LE(b[REGFTimeStampOffset:]),
		MajorVersion:      buf.U32LE(b[REGFMajorVersionOffset:]),
		MinorVersion:      buf.U32LE(b[REGFMinorVersionOffset:]),
		FileType:          buf.U32LE(b[REGFTypeOffset:]),
		FileFormat:        buf.U32LE(b[REGFFormatOffset:]),
		RootCellOffset:    buf.U32LE(b[REGFRootCellOffset:]),
		HiveBinsDataSize:  buf.U32LE(b[REGFDataSizeOffset:]),
		ClusteringFactor:  buf.U32LE(b[REGFClusterOffset:]),
		FileName:          decodeFileName(b[REGFFileNameOffset : REGFFileNameOffset+REGFFileNameSize]),
		Checksum:          buf.U32LE(b[REGFCheckSumOffset:]),
	}, nil
}

// ValidateHeader parses b and verifies its checksum.
func ValidateHeader(b []byte) (Header, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return Header{}, err
	}
	if want := HeaderChecksum(b); h.Checksum != want {
		return h, fmt.Errorf("regf header: stored 0x%08x, computed 0x%08x: %w", h.Checksum, want, ErrChecksum)
	}
	return h, nil
}

func decodeFileName(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := buf.U16LE(b[i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}
