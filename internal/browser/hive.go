package browser

import (
	"fmt"
	"slices"

	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/internal/reader"
	"github.com/joshuapare/regview/internal/rows"
	"github.com/joshuapare/regview/pkg/types"
)

// RegistryHive is the stateful navigator over one clean hive. It is not safe
// for concurrent use; the UI drives it from its update loop.
type RegistryHive struct {
	hive     *reader.Hive
	root     reader.KeyNode
	path     []string
	limits   SearchLimits
	file     string
	logFiles []string
}

// Path returns a copy of the current path. The empty path is the root.
func (r *RegistryHive) Path() []string {
	return slices.Clone(r.path)
}

// Limits returns the search limits in effect.
func (r *RegistryHive) Limits() SearchLimits { return r.limits }

// CurrentKeys lists the children of the current path, preceded by the
// parent placeholder.
func (r *RegistryHive) CurrentKeys() ([]rows.KeyRow, error) {
	node, err := r.resolve(r.path)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("current path %q: %w", rows.JoinPath(r.path), types.ErrInvalidPath)
	}
	children, err := r.hive.Subkeys(*node)
	if err != nil {
		return nil, err
	}
	out := make([]rows.KeyRow, 0, len(children)+1)
	out = append(out, rows.ParentRow())
	for _, c := range children {
		out = append(out, rows.KeyRowFrom(c))
	}
	return out, nil
}

// Enter descends into the child called name. On failure the path is left
// unchanged.
func (r *RegistryHive) Enter(name string) ([]rows.KeyRow, error) {
	prev, err := r.checkEntry()
	if err != nil {
		return nil, err
	}
	r.path = append(r.path, name)
	keys, err := r.CurrentKeys()
	if err != nil {
		r.path = prev
		return nil, err
	}
	if err := r.checkExit(prev); err != nil {
		return nil, err
	}
	return keys, nil
}

// Leave moves one level up. At the root it only relists the root.
func (r *RegistryHive) Leave() ([]rows.KeyRow, error) {
	prev, err := r.checkEntry()
	if err != nil {
		return nil, err
	}
	if len(r.path) > 0 {
		r.path = r.path[:len(r.path)-1]
	}
	keys, err := r.CurrentKeys()
	if err != nil {
		r.path = prev
		return nil, err
	}
	if err := r.checkExit(prev); err != nil {
		return nil, err
	}
	return keys, nil
}

// SelectPath jumps to path. An unresolvable path fails with ErrInvalidPath
// and leaves the navigator where it was.
func (r *RegistryHive) SelectPath(path []string) ([]rows.KeyRow, error) {
	prev, err := r.checkEntry()
	if err != nil {
		return nil, err
	}
	ok, err := r.valid(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("select %q: %w", rows.JoinPath(path), types.ErrInvalidPath)
	}
	r.path = slices.Clone(path)
	keys, err := r.CurrentKeys()
	if err != nil {
		r.path = prev
		return nil, err
	}
	if err := r.checkExit(prev); err != nil {
		return nil, err
	}
	return keys, nil
}

// SelectedNode returns the last path segment.
func (r *RegistryHive) SelectedNode() (string, bool) {
	if len(r.path) == 0 {
		return "", false
	}
	return r.path[len(r.path)-1], true
}

// KeyValues returns the value rows of the child called name. At the root a
// name that resolves to nothing (the placeholder, for one) yields the root's
// own values; below the root the placeholder has no values.
func (r *RegistryHive) KeyValues(name string) ([]rows.ValueRow, error) {
	target := append(slices.Clone(r.path), name)
	node, err := r.resolve(target)
	if err != nil {
		return nil, err
	}
	if node == nil {
		switch {
		case len(r.path) == 0:
			logger.Debug("no child of the root by that name, showing root values", "name", name)
			node = &r.root
		case name == rows.ParentName:
			return nil, nil
		default:
			return nil, fmt.Errorf("values of %q: %w", rows.JoinPath(target), types.ErrInvalidPath)
		}
	}
	vs, err := r.hive.Values(*node)
	if err != nil {
		return nil, err
	}
	return rows.ValueRowsFrom(vs), nil
}

// Info describes the opened hive and the files it was built from.
type Info struct {
	reader.Info
	Path     string
	LogFiles []string
	Root     string
}

func (r *RegistryHive) Info() Info {
	return Info{
		Info:     r.hive.Info(),
		Path:     r.file,
		LogFiles: slices.Clone(r.logFiles),
		Root:     r.root.Name,
	}
}

// Close unmaps the hive. Rows already returned stay valid.
func (r *RegistryHive) Close() error {
	return r.hive.Close()
}

// resolve returns the node at path, or nil when a segment is missing.
func (r *RegistryHive) resolve(path []string) (*reader.KeyNode, error) {
	if len(path) == 0 {
		root := r.root
		return &root, nil
	}
	return r.hive.Subpath(r.root, path)
}

func (r *RegistryHive) valid(path []string) (bool, error) {
	n, err := r.resolve(path)
	if err != nil {
		return false, err
	}
	return n != nil, nil
}

// checkEntry verifies the current path before a mutation and returns a copy
// to restore on failure.
func (r *RegistryHive) checkEntry() ([]string, error) {
	prev := slices.Clone(r.path)
	ok, err := r.valid(prev)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("current path %q does not resolve: %w", rows.JoinPath(prev), types.ErrCorrupt)
	}
	return prev, nil
}

// checkExit verifies the path after a mutation, restoring prev if the hive
// no longer agrees with the listing it just produced.
func (r *RegistryHive) checkExit(prev []string) error {
	ok, err := r.valid(r.path)
	if err == nil && ok {
		return nil
	}
	logger.Error("path invariant violated", "path", rows.JoinPath(r.path), "error", err)
	bad := rows.JoinPath(r.path)
	r.path = prev
	if err != nil {
		return err
	}
	return fmt.Errorf("path %q does not resolve: %w", bad, types.ErrCorrupt)
}
