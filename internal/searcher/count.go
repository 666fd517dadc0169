package searcher

import (
	"fmt"

	"github.com/sha1n/washer/internal/textindex"
)

// Count describes how many documents matched. An exact count has equal
// bounds; an estimated one carries the range the engine can vouch for.
type Count struct {
	Exact bool
	Lower uint64
	Upper uint64
}

// ExactCount returns a precise count of n.
func ExactCount(n uint64) Count {
	return Count{Exact: true, Lower: n, Upper: n}
}

// EstimatedCount returns a count known to lie between lower and upper.
func EstimatedCount(lower, upper uint64) Count {
	if upper < lower {
		upper = lower
	}
	return Count{Lower: lower, Upper: upper}
}

func (c Count) String() string {
	switch {
	case c.Exact:
		return plural(c.Lower)
	case c.Lower == c.Upper:
		return "about " + plural(c.Lower)
	default:
		return fmt.Sprintf("between %d and %d results", c.Lower, c.Upper)
	}
}

func plural(n uint64) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// describeCount is exact when every index partition answered. Otherwise
// the reported total is a lower bound and no more than every document can
// match.
func describeCount(res *textindex.Results, documents uint64) Count {
	if res.Failed == 0 {
		return ExactCount(res.Total)
	}
	return EstimatedCount(res.Total, documents)
}
