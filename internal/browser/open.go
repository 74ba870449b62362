// Package browser is the navigation and search core behind the TUI. A
// RegistryHive owns one clean hive and a current path; every operation keeps
// that path resolvable.
package browser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/internal/mmfile"
	"github.com/joshuapare/regview/internal/reader"
	"github.com/joshuapare/regview/internal/txlog"
	"github.com/joshuapare/regview/pkg/types"
)

// DefaultMaxResults bounds a single search.
const DefaultMaxResults = 1000

// SearchLimits bounds find operations.
type SearchLimits struct {
	// MaxResults is the largest result set a search may return; one more
	// match fails the search with ErrTooManyResults.
	MaxResults int
}

// DefaultSearchLimits returns the limits used when none are configured.
func DefaultSearchLimits() SearchLimits {
	return SearchLimits{MaxResults: DefaultMaxResults}
}

// Validate rejects non-positive limits.
func (l SearchLimits) Validate() error {
	if l.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive, got %d", l.MaxResults)
	}
	return nil
}

// Option configures Open.
type Option func(*options)

type options struct {
	limits SearchLimits
}

// WithSearchLimits overrides DefaultSearchLimits.
func WithSearchLimits(l SearchLimits) Option {
	return func(o *options) { o.limits = l }
}

// Open maps the hive at hivePath, replays up to two transaction logs in the
// order given and returns a navigator positioned at the root. With
// ignoreBaseBlock the root key is located by scanning the bins instead of
// trusting the base block.
func Open(hivePath string, logPaths []string, ignoreBaseBlock bool, opts ...Option) (*RegistryHive, error) {
	o := options{limits: DefaultSearchLimits()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.limits.Validate(); err != nil {
		return nil, err
	}
	if err := requireFile(hivePath); err != nil {
		return nil, err
	}
	if len(logPaths) > reader.MaxLogs {
		return nil, fmt.Errorf("%d logs given: %w", len(logPaths), types.ErrTooManyLogs)
	}
	for _, p := range logPaths {
		if err := requireFile(p); err != nil {
			return nil, err
		}
	}

	src, err := mmfile.Open(hivePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", hivePath, err)
	}
	h, err := openHive(src, logPaths, ignoreBaseBlock)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	root, err := h.RootKeyNode()
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	logger.Info("hive ready", "file", hivePath, "logs", len(logPaths), "root", root.Offset)
	return &RegistryHive{
		hive:     h,
		root:     root,
		limits:   o.limits,
		file:     hivePath,
		logFiles: append([]string(nil), logPaths...),
	}, nil
}

func requireFile(path string) error {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, types.ErrNoSuchFile)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file: %w", path, types.ErrNoSuchFile)
	}
	return nil
}

// openHive picks the parse mode, then makes the hive clean.
func openHive(src mmfile.Source, logPaths []string, ignoreBaseBlock bool) (*reader.Hive, error) {
	mode := reader.ParseNormalWithBaseBlock
	if ignoreBaseBlock {
		raw, err := reader.Open(src, reader.ParseRaw)
		if err != nil {
			return nil, err
		}
		off, ok := raw.FindRootCellOffset()
		if !ok {
			logger.Error("scan found no root cell offset")
			return nil, types.ErrRootOffsetNotFound
		}
		logger.Info("recovered root cell offset", "offset", off)
		mode = reader.ParseNormal(off)
	}

	h, err := reader.Open(src, mode)
	if err != nil {
		return nil, err
	}
	if len(logPaths) == 0 {
		logger.Warn("no log files provided, treating hive as if it was clean")
		if err := h.TreatAsClean(); err != nil {
			return nil, err
		}
		return h, nil
	}
	for _, p := range logPaths {
		l, err := txlog.Open(p)
		if err != nil {
			return nil, err
		}
		if err := h.AttachLog(l); err != nil {
			return nil, err
		}
	}
	res, err := h.ApplyLogs()
	if err != nil {
		return nil, fmt.Errorf("apply logs: %w", err)
	}
	logger.Info("transaction logs applied", "entries", res.Applied, "sequence", res.Sequence,
		"base_block_from", res.BaseBlockFrom)
	return h, nil
}
