package reader

import (
	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/internal/logger"
)

// FindRootCellOffset scans the indexed bins for the first allocated key node
// carrying the hive-entry flag. It works without a usable base block.
func (h *Hive) FindRootCellOffset() (uint32, bool) {
	for _, span := range h.index {
		hb := format.HBIN{FileOffset: uint32(span.start), Size: uint32(span.size)}
		for off := span.start + format.HBINHeaderSize; off < span.start+span.size; {
			c, next, err := format.NextCell(h.bins, span.start, hb, off)
			if err != nil {
				logger.Debug("root scan: abandoning bin", "bin", span.start, "offset", off, "error", err)
				break
			}
			if !c.Free && c.Tag() == "nk" {
				if nk, err := format.DecodeNK(c.Data); err == nil && nk.IsRoot() {
					logger.Info("root scan: found root key node", "offset", off)
					return uint32(off), true
				}
			}
			off = next
		}
	}
	return 0, false
}
