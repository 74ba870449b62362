// Package format decodes the on-disk structures of registry hive files and
// their transaction logs. Decoders are allocation-light and return slices
// aliasing the caller's buffer; they never panic on malformed input.
package format

var (
	REGFSignature = []byte{'r', 'e', 'g', 'f'}
	HBINSignature = []byte{'h', 'b', 'i', 'n'}
	NKSignature   = []byte{'n', 'k'}
	VKSignature   = []byte{'v', 'k'}
	LFSignature   = []byte{'l', 'f'}
	LHSignature   = []byte{'l', 'h'}
	LISignature   = []byte{'l', 'i'}
	RISignature   = []byte{'r', 'i'}
	DBSignature   = []byte{'d', 'b'}

	// HvLESignature starts every entry of a new-format transaction log.
	HvLESignature = []byte{'H', 'v', 'L', 'E'}
	// DIRTSignature starts the dirty vector of a legacy transaction log.
	DIRTSignature = []byte{'D', 'I', 'R', 'T'}
)

// Base block layout. Only the first 512 bytes carry data; the remainder of the
// 4 KiB block is reserved.
const (
	HeaderSize = 4096

	REGFSignatureOffset    = 0x000
	REGFSignatureSize      = 4
	REGFPrimarySeqOffset   = 0x004
	REGFSecondarySeqOffset = 0x008
	REGFTimeStampOffset    = 0x00C
	REGFMajorVersionOffset = 0x014
	REGFMinorVersionOffset = 0x018
	REGFTypeOffset         = 0x01C
	REGFFormatOffset       = 0x020
	REGFRootCellOffset     = 0x024
	REGFDataSizeOffset     = 0x028
	REGFClusterOffset      = 0x02C
	REGFFileNameOffset     = 0x030
	REGFFileNameSize       = 64
	REGFFlagsOffset        = 0x090
	REGFCheckSumOffset     = 0x1FC

	// REGFChecksumRegionLen is the number of leading bytes XOR-folded into the
	// checksum (127 dwords).
	REGFChecksumRegionLen = 508

	// LogBaseBlockSize is the size of the base block copy at the start of a
	// transaction log file.
	LogBaseBlockSize = 512
)

// File types stored at REGFTypeOffset.
const (
	FileTypePrimary  = 0
	FileTypeLog1     = 1
	FileTypeLog2     = 2
	FileTypeLogNew   = 6
	FileFormatDirect = 1
)

// HBIN and cell geometry.
const (
	HiveDataBase      = 0x1000
	HBINHeaderSize    = 0x20
	HBINAlignment     = 0x1000
	HBINFileOffsetPos = 0x04
	HBINSizePos       = 0x08
	CellHeaderSize    = 4
	CellAlignment     = 8
	SignatureSize     = 2

	// InvalidOffset marks an unused cell reference.
	InvalidOffset = 0xFFFFFFFF
)

// NK (key node) record layout, relative to the cell payload.
const (
	NKFlagsOffset          = 0x02
	NKLastWriteOffset      = 0x04
	NKParentOffset         = 0x10
	NKSubkeyCountOffset    = 0x14
	NKVolSubkeyCountOffset = 0x18
	NKSubkeyListOffset     = 0x1C
	NKVolSubkeyListOffset  = 0x20
	NKValueCountOffset     = 0x24
	NKValueListOffset      = 0x28
	NKSecurityOffset       = 0x2C
	NKClassNameOffset      = 0x30
	NKMaxNameLenOffset     = 0x34
	NKNameLenOffset        = 0x48
	NKClassLenOffset       = 0x4A
	NKNameOffset           = 0x4C
	NKMinSize              = NKNameOffset
	NKFlagVolatile         = 0x0001
	NKFlagHiveExit         = 0x0002
	NKFlagHiveEntry        = 0x0004
	NKFlagNoDelete         = 0x0008
	NKFlagSymLink          = 0x0010
	NKFlagCompressedName   = 0x0020
	NKFlagPredefined       = 0x0040
)

// VK (value key) record layout, relative to the cell payload.
const (
	VKNameLenOffset  = 0x02
	VKDataLenOffset  = 0x04
	VKDataOffOffset  = 0x08
	VKTypeOffset     = 0x0C
	VKFlagsOffset    = 0x10
	VKNameOffset     = 0x14
	VKMinSize        = VKNameOffset
	VKFlagASCIIName  = 0x0001
	VKDataInlineBit  = 0x80000000
	VKDataLengthMask = 0x7FFFFFFF
)

// Subkey and value lists.
const (
	ListHeaderSize  = 4
	OffsetFieldSize = 4
	LFEntrySize     = 8
)

// Big data (db) records split values larger than DBChunkSize bytes.
const (
	DBCountOffset     = 0x02
	DBListOffset      = 0x04
	DBHeaderSize      = 0x0C
	DBChunkSize       = 16344
	DBMinMinorVersion = 4
)

// New-format (HvLE) log entry header.
const (
	LogEntryStart         = LogBaseBlockSize
	LogEntrySizeOffset    = 0x04
	LogEntryFlagsOffset   = 0x08
	LogEntrySeqOffset     = 0x0C
	LogEntryBinsOffset    = 0x10
	LogEntryDirtyOffset   = 0x14
	LogEntryHash1Offset   = 0x18
	LogEntryHash2Offset   = 0x20
	LogEntryRefsOffset    = 0x28
	LogEntryRefSize       = 8
	LogEntryHash2Covered  = 0x20
	LogEntryAlignment     = 512
	LogSectorSize         = 512
	LogDirtVectorHeaderSz = 4
)

// Sanity limits applied while decoding untrusted records.
const (
	MaxSubkeyCount  = 1 << 20
	MaxValueCount   = 1 << 20
	MaxNameLen      = 0x7FFF
	MaxValueDataLen = 1 << 30
)
