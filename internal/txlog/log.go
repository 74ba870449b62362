// Package txlog parses registry transaction logs and replays them onto a
// hive image.
//
// Two on-disk formats exist. New-format logs (Windows 8.1 and later) hold a
// sequence of HvLE entries, each protected by two Marvin32 hashes. Legacy
// logs hold a single dirty vector: a bitmap of 512-byte sectors followed by
// the sector contents.
package txlog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/pkg/types"
)

// Format identifies the log flavour.
type Format int

const (
	FormatNew Format = iota
	FormatLegacy
)

func (f Format) String() string {
	if f == FormatLegacy {
		return "legacy"
	}
	return "new"
}

// Log is a parsed transaction log. Entries and Pages alias Raw.
type Log struct {
	Name        string
	Format      Format
	Header      format.Header
	HeaderValid bool
	// BaseBlock is the 512-byte base block copy at the start of the file.
	BaseBlock []byte
	// Entries holds the valid HvLE entries, in file order, up to the first
	// damaged one.
	Entries []format.LogEntry
	// Pages holds the dirty sectors of a legacy log.
	Pages []format.DirtyPage
	Raw   []byte
}

// Open reads the log at path and parses it. The file handle is released
// before Open returns.
func Open(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("log %s: %w", path, types.ErrNoSuchFile)
		}
		return nil, fmt.Errorf("log %s: %w", path, err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse decodes a log image. A damaged base block is tolerated; the log's
// body must still be recognisable.
func Parse(name string, b []byte) (*Log, error) {
	if len(b) < format.LogBaseBlockSize {
		return nil, fmt.Errorf("log %s: %w: %w", name, types.ErrParse, format.ErrTruncated)
	}
	l := &Log{Name: name, Raw: b, BaseBlock: b[:format.LogBaseBlockSize]}
	h, err := format.ValidateHeader(l.BaseBlock)
	switch {
	case err == nil:
		l.HeaderValid = true
	case errors.Is(err, format.ErrChecksum):
		logger.Warn("log base block checksum mismatch", "log", name)
	default:
		logger.Warn("log base block unreadable", "log", name, "error", err)
	}
	l.Header = h

	body := b[format.LogBaseBlockSize:]
	switch {
	case bytes.HasPrefix(body, format.DIRTSignature):
		if !l.HeaderValid {
			return nil, fmt.Errorf("log %s: legacy log needs a valid base block: %w", name, types.ErrParse)
		}
		l.Format = FormatLegacy
		vec, err := format.DecodeDirtyVector(body, h.HiveBinsDataSize)
		if err != nil {
			return nil, fmt.Errorf("log %s: %w: %w", name, types.ErrParse, err)
		}
		if l.Pages, err = vec.Pages(); err != nil {
			return nil, fmt.Errorf("log %s: %w: %w", name, types.ErrParse, err)
		}
	case format.IsLogEntry(body), l.HeaderValid && h.FileType == format.FileTypeLogNew:
		l.Format = FormatNew
		l.Entries = parseEntries(name, body)
	default:
		return nil, fmt.Errorf("log %s: unrecognised log body: %w", name, types.ErrParse)
	}
	logger.Debug("parsed transaction log", "log", name, "format", l.Format.String(),
		"entries", len(l.Entries), "pages", len(l.Pages), "header_valid", l.HeaderValid)
	return l, nil
}

// parseEntries walks HvLE entries until the first one that fails to decode or
// whose hashes do not match.
func parseEntries(name string, b []byte) []format.LogEntry {
	var out []format.LogEntry
	for off := 0; off < len(b); {
		if !format.IsLogEntry(b[off:]) {
			break
		}
		e, err := format.DecodeLogEntry(b[off:])
		if err != nil {
			logger.Info("stopping at undecodable log entry", "log", name, "offset", off+format.LogEntryStart, "error", err)
			break
		}
		if !VerifyEntry(e) {
			logger.Info("stopping at log entry with bad hash", "log", name, "sequence", e.Sequence)
			break
		}
		out = append(out, e)
		off += int(e.Size)
	}
	return out
}

// VerifyEntry checks both Marvin32 hashes of e.
func VerifyEntry(e format.LogEntry) bool {
	if Marvin32(MarvinSeed, e.Raw[format.LogEntryRefsOffset:]) != e.Hash1 {
		return false
	}
	return Marvin32(MarvinSeed, e.Raw[:format.LogEntryHash2Covered]) == e.Hash2
}
