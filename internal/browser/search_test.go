package browser

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regview/internal/reader"
	"github.com/joshuapare/regview/internal/testutil"
	"github.com/joshuapare/regview/pkg/types"
)

func TestFindRegex_KeyName(t *testing.T) {
	r := openWindowsLike(t)

	results, err := r.FindRegex("^Run$")
	require.NoError(t, err)

	var hits [][]string
	for _, res := range results {
		if k, ok := res.(KeyName); ok {
			hits = append(hits, k.Path)
		}
	}
	assert.Equal(t, [][]string{
		{"Software", "Microsoft", "Windows", "CurrentVersion", "Run"},
		{"ControlSet001", "Services", "Run"},
	}, hits)
}

func TestFindRegex_Classification(t *testing.T) {
	r := openWindowsLike(t)

	results, err := r.FindRegex("(?i)start|0x00000002")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, ValueNameAndData{
		Path:      []string{"ControlSet001", "Services", "Tcpip"},
		ValueName: "Start",
		Data:      "0x00000002",
	}, results[0])

	results, err = r.FindRegex("^SecurityHealth$")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ValueName{
		Path:      []string{"Software", "Microsoft", "Windows", "CurrentVersion", "Run"},
		ValueName: "SecurityHealth",
	}, results[0])

	results, err = r.FindRegex(`OneDrive\.exe`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	vd, ok := results[0].(ValueData)
	require.True(t, ok)
	assert.Equal(t, "OneDrive", vd.ValueName)
	assert.Contains(t, vd.Data, "OneDrive.exe")

	// MULTI_SZ reports the first matching segment.
	results, err = r.FindRegex("^(Nsi|Tdx)$")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Nsi", results[0].(ValueData).Data)
}

func TestFindRegex_RootMatchesWithEmptyPath(t *testing.T) {
	r := openWindowsLike(t)
	results, err := r.FindRegex("^ROOT$")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KeyName{Path: nil}, results[0])
	assert.Equal(t, Target{}, TargetOf(results[0]))
}

func TestFindRegex_Errors(t *testing.T) {
	r := openWindowsLike(t)

	_, err := r.FindRegex("[")
	require.ErrorIs(t, err, types.ErrInvalidPattern)

	_, err = r.FindRegex("^no such thing anywhere$")
	require.ErrorIs(t, err, types.ErrNoResult)

	_, err = r.FindRegex(".")
	require.ErrorIs(t, err, types.ErrTooManyResults)
}

func TestFindRegex_ConfiguredLimit(t *testing.T) {
	r := openWindowsLike(t, WithSearchLimits(SearchLimits{MaxResults: 2}))
	assert.Equal(t, 2, r.Limits().MaxResults)

	results, err := r.FindRegex("^Run$")
	require.NoError(t, err)
	assert.Len(t, results, 2, "exactly at the limit is allowed")

	_, err = r.FindRegex("^Start$")
	require.NoError(t, err)

	_, err = r.FindRegex(`^\.ext00`)
	require.ErrorIs(t, err, types.ErrTooManyResults)
}

func TestFindRegex_DoesNotMovePath(t *testing.T) {
	r := openWindowsLike(t)
	_, err := r.SelectPath([]string{"Software"})
	require.NoError(t, err)
	_, err = r.FindRegex("Tcpip")
	require.NoError(t, err)
	assert.Equal(t, []string{"Software"}, r.Path())
}

// Every result's key name, value name or data matches the pattern, and no
// search returns more than the limit.
func TestFindRegex_ResultsMatch(t *testing.T) {
	r := openWindowsLike(t)
	for _, pattern := range []string{"Run", "(?i)windows", "ext01", "0x", "file00", "^$", `\\`} {
		results, err := r.FindRegex(pattern)
		if err != nil {
			require.ErrorIs(t, err, types.ErrNoResult, pattern)
			continue
		}
		assert.LessOrEqual(t, len(results), DefaultMaxResults)
		re := regexp.MustCompile(pattern)
		for _, res := range results {
			row := res.Row()
			last := ""
			if len(row.Path) > 0 {
				last = row.Path[len(row.Path)-1]
			}
			if _, isKey := res.(KeyName); isKey && len(row.Path) == 0 {
				last = "ROOT"
			}
			matched := re.MatchString(last) ||
				(row.HasValueName && re.MatchString(row.ValueName)) ||
				(row.HasValueData && re.MatchString(row.ValueData))
			assert.True(t, matched, "pattern %q result %#v", pattern, res)
		}
	}
}

func TestFindRegex_SkipsCycles(t *testing.T) {
	root := &testutil.Key{
		Name: "ROOT",
		Subkeys: []*testutil.Key{
			{Name: "Loop", CycleToRoot: true, Values: []testutil.Value{testutil.String("x", "needle")}},
		},
	}
	path := testutil.WriteFile(t, "cyclic", testutil.BuildHive(root))
	r, err := Open(path, nil, false)
	require.NoError(t, err)
	defer r.Close()

	results, err := r.FindRegex("needle")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"Loop"}, results[0].KeyPath())
}

func TestMatchData(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		data    reader.Data
		want    string
		ok      bool
	}{
		{"sz", "ell", reader.SZ("hello"), "hello", true},
		{"dword upper hex", "^0x0000002A$", reader.DWord(42), "0x0000002A", true},
		{"dword be as stored", "^0x0000002A$", reader.DWordBigEndian(42), "0x0000002A", true},
		{"qword", "^0x00000000000000FF$", reader.QWord(255), "0x00000000000000FF", true},
		{"binary lossy", "abc", reader.Binary([]byte{'a', 'b', 'c', 0xFF}), "abc\uFFFD", true},
		{"binary one replacement per bad byte", "^\uFFFD\uFFFDa$", reader.Binary([]byte{0xFF, 0xFE, 'a'}), "\uFFFD\uFFFDa", true},
		{"multi sz first hit", "b", reader.MultiSZ{"a", "b1", "b2"}, "b1", true},
		{"multi sz miss", "z", reader.MultiSZ{"a"}, "", false},
		{"none", ".*", reader.None{}, "", false},
		{"filetime", ".*", reader.FileTime(1), "", false},
		{"miss", "x", reader.SZ("hello"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchData(regexp.MustCompile(tt.pattern), tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLossyString(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"valid", []byte("héllo"), "héllo"},
		{"empty", nil, ""},
		{"stray bytes", []byte{0xFF, 0xFE, 'a'}, "\uFFFD\uFFFDa"},
		{"truncated sequence", []byte{0xE2, 0x82, 'a'}, "\uFFFDa"},
		{"truncated at end", []byte{'a', 0xF0, 0x9F, 0x98}, "a\uFFFD"},
		{"surrogate", []byte{0xED, 0xA0, 0x80}, "\uFFFD\uFFFD\uFFFD"},
		{"overlong", []byte{0xC0, 0xAF}, "\uFFFD\uFFFD"},
		{"literal replacement", []byte("\uFFFD"), "\uFFFD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lossyString(tt.in))
		})
	}
}

func TestTargetOf(t *testing.T) {
	assert.Equal(t, Target{Parent: []string{"A"}, Key: "B"}, TargetOf(KeyName{Path: []string{"A", "B"}}))
	assert.Equal(t, Target{Parent: []string{}, Key: "A", Value: "v", HasValue: true},
		TargetOf(ValueData{Path: []string{"A"}, ValueName: "v", Data: "d"}))

	rs := Rows([]SearchResult{ValueName{Path: []string{"A"}, ValueName: ""}})
	require.Len(t, rs, 1)
	assert.True(t, rs[0].HasValueName)
	assert.False(t, rs[0].HasValueData)
}
