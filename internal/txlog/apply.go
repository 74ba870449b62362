package txlog

import (
	"fmt"
	"slices"

	"github.com/joshuapare/regview/internal/buf"
	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/pkg/types"
)

// Result summarises a replay.
type Result struct {
	// Applied counts replayed HvLE entries, or legacy logs.
	Applied int
	// Sequence is the value written to both base block sequence numbers.
	Sequence uint32
	// BaseBlockFrom names the log whose base block replaced a damaged one.
	BaseBlockFrom string
}

// Apply replays logs onto a copy of hive and returns the patched image; the
// input is never modified.
//
// New-format entries with a sequence number at or above the base block's
// secondary sequence are applied in ascending order, duplicates dropped,
// stopping at the first gap. Legacy logs only apply to a dirty hive. When the
// hive's base block fails validation, the newest valid log base block is used
// instead.
func Apply(hive []byte, logs []*Log) ([]byte, Result, error) {
	var res Result
	out := make([]byte, max(len(hive), format.HeaderSize))
	copy(out, hive)

	hdr, err := format.ValidateHeader(out[:format.HeaderSize])
	if err != nil {
		src := newestBaseBlock(logs)
		if src == nil {
			return nil, res, fmt.Errorf("base block damaged and no log has a valid copy: %w: %w", types.ErrParse, err)
		}
		logger.Warn("replacing damaged base block", "log", src.Name, "error", err)
		clear(out[:format.HeaderSize])
		copy(out, src.BaseBlock)
		buf.PutU32LE(out[format.REGFTypeOffset:], format.FileTypePrimary)
		format.SetHeaderChecksum(out)
		hdr, _ = format.ParseHeader(out)
		res.BaseBlockFrom = src.Name
	}

	var binsSize uint32
	if entries := collectEntries(logs); len(entries) > 0 {
		out, res.Applied, binsSize, res.Sequence = applyEntries(out, entries, hdr.SecondarySequence)
	} else if hdr.Dirty() {
		if l := newestLegacy(logs); l != nil {
			out = applyPages(out, l.Pages, l.Header.HiveBinsDataSize)
			res.Applied = 1
			res.Sequence = l.Header.PrimarySequence
			binsSize = l.Header.HiveBinsDataSize
		}
	}

	if res.Applied > 0 {
		buf.PutU32LE(out[format.REGFPrimarySeqOffset:], res.Sequence)
		buf.PutU32LE(out[format.REGFSecondarySeqOffset:], res.Sequence)
		buf.PutU32LE(out[format.REGFDataSizeOffset:], binsSize)
		format.SetHeaderChecksum(out)
	}
	logger.Info("transaction logs replayed", "applied", res.Applied, "sequence", res.Sequence,
		"base_block_from", res.BaseBlockFrom)
	return out, res, nil
}

func newestBaseBlock(logs []*Log) *Log {
	var best *Log
	for _, l := range logs {
		if l == nil || !l.HeaderValid {
			continue
		}
		if best == nil || l.Header.PrimarySequence > best.Header.PrimarySequence {
			best = l
		}
	}
	return best
}

func newestLegacy(logs []*Log) *Log {
	var best *Log
	for _, l := range logs {
		if l == nil || l.Format != FormatLegacy || !l.HeaderValid || l.Header.Dirty() {
			continue
		}
		if best == nil || l.Header.PrimarySequence > best.Header.PrimarySequence {
			best = l
		}
	}
	return best
}

func collectEntries(logs []*Log) []format.LogEntry {
	var all []format.LogEntry
	for _, l := range logs {
		if l != nil && l.Format == FormatNew {
			all = append(all, l.Entries...)
		}
	}
	slices.SortStableFunc(all, func(a, b format.LogEntry) int {
		switch {
		case a.Sequence < b.Sequence:
			return -1
		case a.Sequence > b.Sequence:
			return 1
		}
		return 0
	})
	return all
}

// applyEntries replays the contiguous run of entries starting at seq and
// returns the grown image, the number applied, the final bins size and the
// next sequence number.
func applyEntries(out []byte, entries []format.LogEntry, seq uint32) ([]byte, int, uint32, uint32) {
	applied := 0
	bins := buf.U32LE(out[format.REGFDataSizeOffset:])
	next := seq
	for _, e := range entries {
		if e.Sequence < next {
			continue
		}
		if e.Sequence != next {
			logger.Info("gap in log sequence", "want", next, "got", e.Sequence)
			break
		}
		if !pagesFit(e.Pages, e.HiveBinsDataSize) {
			logger.Warn("log entry writes past hive bins size", "sequence", e.Sequence)
			break
		}
		out = applyPages(out, e.Pages, e.HiveBinsDataSize)
		bins = e.HiveBinsDataSize
		next = e.Sequence + 1
		applied++
	}
	return out, applied, bins, next
}

func pagesFit(pages []format.DirtyPage, binsSize uint32) bool {
	for _, p := range pages {
		if uint64(p.Offset)+uint64(len(p.Data)) > uint64(binsSize) {
			return false
		}
	}
	return true
}

func applyPages(out []byte, pages []format.DirtyPage, binsSize uint32) []byte {
	if need := format.HeaderSize + int(binsSize); need > len(out) {
		out = append(out, make([]byte, need-len(out))...)
	}
	for _, p := range pages {
		start := format.HeaderSize + int(p.Offset)
		if end := start + len(p.Data); end > len(out) {
			out = append(out, make([]byte, end-len(out))...)
		}
		copy(out[start:], p.Data)
	}
	return out
}
