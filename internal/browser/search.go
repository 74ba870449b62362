package browser

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/internal/reader"
	"github.com/joshuapare/regview/pkg/types"
)

// FindRegex walks the whole tree depth-first from the root and collects
// every key name, value name and value data projection matching pattern.
// Results come in traversal order. An empty result set fails with
// ErrNoResult; exceeding the result limit fails with ErrTooManyResults. The
// current path is not changed.
func (r *RegistryHive) FindRegex(pattern string) ([]SearchResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidPattern, err)
	}
	s := &searcher{
		hive:   r.hive,
		re:     re,
		max:    r.limits.MaxResults,
		onPath: make(map[uint32]bool),
	}
	if err := s.walk(r.root, nil); err != nil {
		logger.Debug("search aborted", "pattern", pattern, "results", len(s.results), "error", err)
		return nil, err
	}
	if len(s.results) == 0 {
		return nil, fmt.Errorf("%q: %w", pattern, types.ErrNoResult)
	}
	logger.Debug("search finished", "pattern", pattern, "results", len(s.results))
	return s.results, nil
}

type searcher struct {
	hive    *reader.Hive
	re      *regexp.Regexp
	max     int
	results []SearchResult
	// onPath holds the cell offsets of the keys on the current DFS stack.
	onPath map[uint32]bool
}

func (s *searcher) walk(n reader.KeyNode, path []string) error {
	s.onPath[n.Offset] = true
	defer delete(s.onPath, n.Offset)

	if err := s.inspect(n, path); err != nil {
		return err
	}
	children, err := s.hive.Subkeys(n)
	if err != nil {
		return err
	}
	for _, c := range children {
		if s.onPath[c.Offset] {
			logger.Warn("skipping key that loops back onto its ancestors",
				"key", strings.Join(path, `\`), "child", c.Name, "offset", c.Offset)
			continue
		}
		if err := s.walk(c, append(path, c.Name)); err != nil {
			return err
		}
	}
	return nil
}

// inspect matches the node's own name and its values. path already ends with
// the node's name, except for the root.
func (s *searcher) inspect(n reader.KeyNode, path []string) error {
	if s.re.MatchString(n.Name) {
		if err := s.emit(KeyName{Path: slices.Clone(path)}); err != nil {
			return err
		}
	}
	vs, err := s.hive.Values(n)
	if err != nil {
		return err
	}
	for _, v := range vs {
		nameHit := s.re.MatchString(v.Name)
		data, dataHit := MatchData(s.re, v.Data)
		var res SearchResult
		switch {
		case nameHit && dataHit:
			res = ValueNameAndData{Path: slices.Clone(path), ValueName: v.Name, Data: data}
		case nameHit:
			res = ValueName{Path: slices.Clone(path), ValueName: v.Name}
		case dataHit:
			res = ValueData{Path: slices.Clone(path), ValueName: v.Name, Data: data}
		default:
			continue
		}
		if err := s.emit(res); err != nil {
			return err
		}
	}
	return nil
}

func (s *searcher) emit(res SearchResult) error {
	if len(s.results) >= s.max {
		return fmt.Errorf("more than %d matches: %w", s.max, types.ErrTooManyResults)
	}
	s.results = append(s.results, res)
	return nil
}

// MatchData returns the text projection of d that re matched. Numbers are
// matched in uppercase hex as stored (big-endian DWORDs are not swapped),
// binary data as UTF-8 with invalid sequences replaced, and MULTI_SZ by its
// first matching segment. Other payloads never match.
func MatchData(re *regexp.Regexp, d reader.Data) (string, bool) {
	var text string
	switch d := d.(type) {
	case reader.SZ:
		text = string(d)
	case reader.ExpandSZ:
		text = string(d)
	case reader.Link:
		text = string(d)
	case reader.ResourceList:
		text = string(d)
	case reader.FullResourceDescriptor:
		text = string(d)
	case reader.ResourceRequirementsList:
		text = string(d)
	case reader.DWord:
		text = fmt.Sprintf("0x%08X", uint32(d))
	case reader.DWordBigEndian:
		text = fmt.Sprintf("0x%08X", uint32(d))
	case reader.QWord:
		text = fmt.Sprintf("0x%016X", uint64(d))
	case reader.Binary:
		text = lossyString(d)
	case reader.MultiSZ:
		for _, seg := range d {
			if re.MatchString(seg) {
				return seg, true
			}
		}
		return "", false
	default:
		return "", false
	}
	if !re.MatchString(text) {
		return "", false
	}
	return text, true
}

// lossyString converts b to text, writing one U+FFFD for each maximal
// ill-formed subsequence: a truncated sequence is one replacement, a stray
// byte is one replacement.
func lossyString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, n := utf8.DecodeRune(b)
		if r != utf8.RuneError || n > 1 {
			sb.Write(b[:n])
			b = b[n:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		b = b[invalidPrefixLen(b):]
	}
	return sb.String()
}

// invalidPrefixLen is the length of the ill-formed prefix of b, which must
// not start with a complete valid sequence.
func invalidPrefixLen(b []byte) int {
	lo, hi, need := byte(0x80), byte(0xBF), 0
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 1
	case c == 0xE0:
		lo, need = 0xA0, 2
	case c == 0xED:
		hi, need = 0x9F, 2
	case c >= 0xE1 && c <= 0xEF:
		need = 2
	case c == 0xF0:
		lo, need = 0x90, 3
	case c == 0xF4:
		hi, need = 0x8F, 3
	case c >= 0xF1 && c <= 0xF3:
		need = 3
	default:
		return 1
	}
	n := 1
	for ; n <= need && n < len(b); n++ {
		if b[n] < lo || b[n] > hi {
			break
		}
		lo, hi = 0x80, 0xBF
	}
	return n
}
