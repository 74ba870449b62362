package types

import "errors"

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFile      ErrKind = iota // input file missing or not a regular file
	ErrKindUsage                    // bad invocation (e.g. too many logs)
	ErrKindFormat                   // bytes rejected by the hive parser
	ErrKindCorrupt                  // structure inconsistent after parsing
	ErrKindNotFound                 // missing key or path
	ErrKindPattern                  // regex failed to compile
	ErrKindSearch                   // search produced no or too many results
	ErrKindState                    // operation invalid for current state
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindFile:
		return "file"
	case ErrKindUsage:
		return "usage"
	case ErrKindFormat:
		return "format"
	case ErrKindCorrupt:
		return "corrupt"
	case ErrKindNotFound:
		return "not found"
	case ErrKindPattern:
		return "pattern"
	case ErrKindSearch:
		return "search"
	case ErrKindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels returned by the reader and the navigator. They are wrapped with
// fmt.Errorf("...: %w") so errors.Is keeps working.
var (
	ErrNoSuchFile         = &Error{Kind: ErrKindFile, Msg: "no such file"}
	ErrTooManyLogs        = &Error{Kind: ErrKindUsage, Msg: "too many transaction logs (at most 2)"}
	ErrRootOffsetNotFound = &Error{Kind: ErrKindFormat, Msg: "root cell offset not found"}
	ErrParse              = &Error{Kind: ErrKindFormat, Msg: "hive parse error"}
	// ErrNotClean is returned when navigation is attempted on a hive whose
	// transaction logs were neither applied nor waived.
	ErrNotClean       = &Error{Kind: ErrKindState, Msg: "hive is not clean"}
	ErrCorrupt        = &Error{Kind: ErrKindCorrupt, Msg: "corrupt hive structure"}
	ErrInvalidPath    = &Error{Kind: ErrKindNotFound, Msg: "invalid path"}
	ErrInvalidPattern = &Error{Kind: ErrKindPattern, Msg: "invalid pattern"}
	ErrNoResult       = &Error{Kind: ErrKindSearch, Msg: "no result"}
	ErrTooManyResults = &Error{Kind: ErrKindSearch, Msg: "too many results"}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
