// Package mmfile exposes a hive file as a read-only, splittable byte range.
// On unix the file is memory-mapped; elsewhere it is read into memory.
package mmfile

import (
	"fmt"
	"sync"
)

// mapping owns the backing bytes shared by every Source split from it.
type mapping struct {
	data    []byte
	release func() error
	once    sync.Once
	err     error
}

func (m *mapping) close() error {
	m.once.Do(func() {
		if m.release != nil {
			m.err = m.release()
		}
		m.data = nil
	})
	return m.err
}

// Source is a view over [start, start+n) of a shared mapping. Views are
// values; copying one does not copy bytes. Reads are safe from any goroutine
// until Close is called on any view of the mapping.
type Source struct {
	m     *mapping
	start int
	n     int
}

// Open maps the file at path.
func Open(path string) (Source, error) {
	data, release, err := Map(path)
	if err != nil {
		return Source{}, fmt.Errorf("mmfile: %w", err)
	}
	return Source{m: &mapping{data: data, release: release}, n: len(data)}, nil
}

// FromBytes wraps an in-memory buffer. Close is a no-op for the bytes.
func FromBytes(b []byte) Source {
	return Source{m: &mapping{data: b}, n: len(b)}
}

// Len returns the number of bytes in the view.
func (s Source) Len() int { return s.n }

// Bytes returns the view's bytes. The slice aliases the mapping and must not
// be written to or retained past Close.
func (s Source) Bytes() []byte {
	if s.m == nil || s.m.data == nil {
		return nil
	}
	return s.m.data[s.start : s.start+s.n : s.start+s.n]
}

// SplitAt returns the views [0, mid) and [mid, Len()) of s, both sharing the
// underlying mapping.
func (s Source) SplitAt(mid int) (Source, Source, error) {
	if mid < 0 || mid > s.n {
		return Source{}, Source{}, fmt.Errorf("mmfile: split at %d outside [0, %d]", mid, s.n)
	}
	head := Source{m: s.m, start: s.start, n: mid}
	tail := Source{m: s.m, start: s.start + mid, n: s.n - mid}
	return head, tail, nil
}

// Close releases the mapping shared by s and all views split from it.
// Calling it more than once is harmless.
func (s Source) Close() error {
	if s.m == nil {
		return nil
	}
	return s.m.close()
}
