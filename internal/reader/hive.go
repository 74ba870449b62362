// Package reader is the read-only hive model: it wraps a byte source, indexes
// the hive bins, optionally replays transaction logs, and materialises key
// nodes and values on demand.
package reader

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/internal/mmfile"
	"github.com/joshuapare/regview/internal/txlog"
	"github.com/joshuapare/regview/pkg/types"
)

// MaxLogs is the number of transaction logs a hive accepts.
const MaxLogs = 2

type binSpan struct {
	start int // relative to the first bin
	size  int
}

// Hive is an opened hive file. It is not safe for concurrent use.
type Hive struct {
	src       mmfile.Source
	base      []byte
	bins      []byte
	index     []binSpan
	mode      ParseMode
	header    format.Header
	headerErr error
	wasDirty  bool
	logs      []*txlog.Log
	replay    txlog.Result
	clean     bool
}

// Open indexes src according to mode. The hive must be made clean with
// ApplyLogs or TreatAsClean before keys can be read.
func Open(src mmfile.Source, mode ParseMode) (*Hive, error) {
	if src.Len() < format.HeaderSize+format.HBINHeaderSize {
		return nil, fmt.Errorf("hive is %d bytes: %w: %w", src.Len(), types.ErrParse, format.ErrTruncated)
	}
	h := &Hive{src: src, mode: mode}
	if err := h.load(src); err != nil {
		return nil, err
	}
	h.wasDirty = h.headerErr == nil && h.header.Dirty()
	logger.Debug("hive opened", "mode", mode.String(), "bins", len(h.index), "size", src.Len(),
		"base_block_error", h.headerErr)
	return h, nil
}

// load splits src into base block and bins and rebuilds the bin index.
func (h *Hive) load(src mmfile.Source) error {
	head, bins, err := src.SplitAt(format.HeaderSize)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrParse, err)
	}
	h.base, h.bins = head.Bytes(), bins.Bytes()
	h.header, h.headerErr = format.ValidateHeader(h.base)
	if h.headerErr != nil && h.mode.kind == modeBaseBlock {
		logger.Warn("base block rejected", "error", h.headerErr)
	}
	h.index = indexBins(h.bins)
	if len(h.index) == 0 {
		return fmt.Errorf("no hive bins found: %w", types.ErrParse)
	}
	return nil
}

// indexBins records every well-formed bin, stepping over damaged regions one
// 4 KiB page at a time.
func indexBins(bins []byte) []binSpan {
	var out []binSpan
	for off := 0; off+format.HBINHeaderSize <= len(bins); {
		hb, next, err := format.NextHBIN(bins, off)
		if err != nil {
			logger.Debug("skipping damaged hbin", "offset", off, "error", err)
			off += format.HBINAlignment
			continue
		}
		out = append(out, binSpan{start: off, size: int(hb.Size)})
		off = next
	}
	return out
}

// cell returns the cell at offset (relative to the first bin). The cell must
// lie entirely inside one bin.
func (h *Hive) cell(offset uint32) (format.Cell, error) {
	off := int(offset)
	i := sort.Search(len(h.index), func(i int) bool { return h.index[i].start+h.index[i].size > off })
	if offset == format.InvalidOffset || i == len(h.index) || off < h.index[i].start+format.HBINHeaderSize {
		return format.Cell{}, fmt.Errorf("cell 0x%x not inside a hive bin: %w", offset, types.ErrCorrupt)
	}
	span := h.index[i]
	c, err := format.ParseCell(h.bins[:span.start+span.size], off)
	if err != nil {
		return format.Cell{}, fmt.Errorf("cell 0x%x: %w: %w", offset, types.ErrCorrupt, err)
	}
	if c.Free {
		return format.Cell{}, fmt.Errorf("cell 0x%x: %w: %w", offset, types.ErrCorrupt, format.ErrFreeCell)
	}
	return c, nil
}

func (h *Hive) requireClean() error {
	if !h.clean {
		return types.ErrNotClean
	}
	return nil
}

func (h *Hive) rootOffset() (uint32, error) {
	switch h.mode.kind {
	case modeExplicitRoot:
		return h.mode.root, nil
	case modeBaseBlock:
		if h.headerErr != nil {
			return 0, fmt.Errorf("base block: %w: %w", types.ErrParse, h.headerErr)
		}
		return h.header.RootCellOffset, nil
	default:
		off, ok := h.FindRootCellOffset()
		if !ok {
			return 0, types.ErrRootOffsetNotFound
		}
		return off, nil
	}
}

// Info describes the opened hive for display.
type Info struct {
	FileName       string
	Size           int
	LastWrite      time.Time
	MajorVersion   uint32
	MinorVersion   uint32
	Sequence       uint32
	RootOffset     uint32
	Mode           string
	BaseBlockValid bool
	WasDirty       bool
	LogsAttached   int
	LogsApplied    int
	BaseBlockFrom  string
}

func (h *Hive) Info() Info {
	info := Info{
		Size:           len(h.base) + len(h.bins),
		Mode:           h.mode.String(),
		BaseBlockValid: h.headerErr == nil,
		WasDirty:       h.wasDirty,
		LogsAttached:   len(h.logs),
		LogsApplied:    h.replay.Applied,
		BaseBlockFrom:  h.replay.BaseBlockFrom,
	}
	if h.headerErr == nil {
		info.FileName = h.header.FileName
		info.LastWrite = format.FiletimeToTime(h.header.LastWriteRaw)
		info.MajorVersion = h.header.MajorVersion
		info.MinorVersion = h.header.MinorVersion
		info.Sequence = h.header.PrimarySequence
	}
	if off, err := h.rootOffset(); err == nil {
		info.RootOffset = off
	}
	return info
}

// Close releases the byte source. Key nodes and values already returned
// stay valid because they own their data.
func (h *Hive) Close() error {
	return h.src.Close()
}

// minorVersion is the hive minor version, assuming a current hive when the
// base block is unusable.
func (h *Hive) minorVersion() uint32 {
	if h.headerErr != nil {
		return format.DBMinMinorVersion
	}
	return h.header.MinorVersion
}

var errListDepth = errors.New("nested ri list")
