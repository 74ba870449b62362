package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrChecksum indicates a base block whose stored checksum does not match.
	ErrChecksum = errors.New("format: checksum mismatch")
	// ErrFreeCell indicates a free cell where an allocated one was required.
	ErrFreeCell = errors.New("format: cell not in use")
	// ErrSanityLimit indicates a count or length beyond what a hive can hold.
	ErrSanityLimit = errors.New("format: sanity limit exceeded")
	ErrUnsupported = errors.New("format: unsupported record")
)
