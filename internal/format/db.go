package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/regview/internal/buf"
)

// DBRecord is a big-data header: a count of segments and the offset of the
// cell listing them.
type DBRecord struct {
	NumBlocks       uint16
	BlocklistOffset uint32
}

func IsDBRecord(b []byte) bool {
	return len(b) >= SignatureSize && bytes.Equal(b[:SignatureSize], DBSignature)
}

func DecodeDB(b []byte) (DBRecord, error) {
	if len(b) < DBHeaderSize {
		return DBRecord{}, fmt.Errorf("db: %w (need %d bytes, have %d)", ErrTruncated, DBHeaderSize, len(b))
	}
	if !IsDBRecord(b) {
		return DBRecord{}, fmt.Errorf("db: %w", ErrSignatureMismatch)
	}
	return DBRecord{
		NumBlocks:       buf.U16LE(b[DBCountOffset:]),
		BlocklistOffset: buf.U32LE(b[DBListOffset:]),
	}, nil
}
