package reader

import (
	"fmt"

	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/internal/mmfile"
	"github.com/joshuapare/regview/internal/txlog"
	"github.com/joshuapare/regview/pkg/types"
)

// AttachLog queues a transaction log for ApplyLogs, in call order.
func (h *Hive) AttachLog(l *txlog.Log) error {
	if h.clean {
		return fmt.Errorf("attach %s: hive already clean", l.Name)
	}
	if len(h.logs) >= MaxLogs {
		return fmt.Errorf("attach %s: %w", l.Name, types.ErrTooManyLogs)
	}
	h.logs = append(h.logs, l)
	return nil
}

// ApplyLogs replays the attached logs onto a private copy of the hive and
// marks it clean. The mapped file is never written.
func (h *Hive) ApplyLogs() (txlog.Result, error) {
	if h.clean {
		return h.replay, nil
	}
	image := make([]byte, 0, len(h.base)+len(h.bins))
	image = append(append(image, h.base...), h.bins...)
	out, res, err := txlog.Apply(image, h.logs)
	if err != nil {
		return res, err
	}
	if err := h.load(mmfile.FromBytes(out)); err != nil {
		return res, err
	}
	h.replay = res
	h.clean = true
	if res.Applied == 0 && h.wasDirty {
		logger.Warn("hive is dirty but no log entry applied", "logs", len(h.logs))
	}
	return res, nil
}

// TreatAsClean marks the hive clean without replaying anything. A dirty hive
// is browsed as-is.
func (h *Hive) TreatAsClean() error {
	if h.mode.kind == modeBaseBlock && h.headerErr != nil {
		return fmt.Errorf("base block unusable and no logs to recover it: %w: %w", types.ErrParse, h.headerErr)
	}
	if h.wasDirty {
		logger.Warn("treating dirty hive as clean", "primary", h.header.PrimarySequence,
			"secondary", h.header.SecondarySequence)
	}
	h.clean = true
	return nil
}

// Clean reports whether keys can be read.
func (h *Hive) Clean() bool { return h.clean }
