package format

import "time"

// filetimeEpochDelta is the distance between 1601-01-01 and 1970-01-01 in
// 100ns units.
const filetimeEpochDelta = 116444736000000000

// FiletimeToTime converts a FILETIME to UTC. Zero and pre-Unix values map to
// the zero time.Time so callers can treat them as "unknown".
func FiletimeToTime(v uint64) time.Time {
	if v <= filetimeEpochDelta {
		return time.Time{}
	}
	ticks := v - filetimeEpochDelta
	return time.Unix(int64(ticks/10_000_000), int64(ticks%10_000_000)*100).UTC()
}

// TimeToFiletime is the inverse of FiletimeToTime.
func TimeToFiletime(t time.Time) uint64 {
	if t.IsZero() || t.Unix() < 0 {
		return 0
	}
	return uint64(t.UnixNano())/100 + filetimeEpochDelta
}
