// Package frame holds the tabular types shared by scoring and allocation:
// panels indexed by (time, asset) rows with ordered class columns, weight
// tables indexed by time rows and asset columns, and per-time series.
package frame

import (
	"errors"
	"sort"
	"time"
)

var (
	// ErrEmptyPanel is returned when a table would have no rows or no columns.
	ErrEmptyPanel = errors.New("frame: empty table")
	// ErrInvalidShape is returned for ragged rows, duplicate labels or length mismatches.
	ErrInvalidShape = errors.New("frame: invalid shape")
	// ErrInvalidRow is returned by the optional row checks on a Panel.
	ErrInvalidRow = errors.New("frame: invalid row")
	// ErrMisaligned is returned when two panels do not share rows and columns.
	ErrMisaligned = errors.New("frame: panels are not aligned")
)

// Key labels one panel row.
type Key struct {
	Time  time.Time
	Asset string
}

// instant is the comparable form of a time.Time. time.Time is not safe as a
// map key because location and monotonic readings take part in ==, and
// UnixNano wraps outside the years 1678-2262.
type instant struct {
	sec  int64
	nsec int
}

func instantOf(t time.Time) instant {
	return instant{sec: t.Unix(), nsec: t.Nanosecond()}
}

// keyID is the comparable form of a Key.
type keyID struct {
	at    instant
	asset string
}

func (k Key) id() keyID {
	return keyID{at: instantOf(k.Time), asset: k.Asset}
}

// TimeGroup lists the panel rows that share one timestamp.
type TimeGroup struct {
	Time time.Time
	Rows []int
}

// groupByTime buckets keys by instant, ascending. Row order inside a bucket
// follows the input order.
func groupByTime(keys []Key) []TimeGroup {
	pos := make(map[instant]int)
	var groups []TimeGroup
	for i, k := range keys {
		at := instantOf(k.Time)
		g, ok := pos[at]
		if !ok {
			g = len(groups)
			pos[at] = g
			groups = append(groups, TimeGroup{Time: k.Time})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Time.Before(groups[b].Time)
	})
	return groups
}

func sortedAssets(keys []Key) []string {
	seen := make(map[string]struct{})
	var assets []string
	for _, k := range keys {
		if _, ok := seen[k.Asset]; ok {
			continue
		}
		seen[k.Asset] = struct{}{}
		assets = append(assets, k.Asset)
	}
	sort.Strings(assets)
	return assets
}

func sortedTimes(keys []Key) []time.Time {
	groups := groupByTime(keys)
	times := make([]time.Time, len(groups))
	for i, g := range groups {
		times[i] = g.Time
	}
	return times
}

func searchTime(times []time.Time, t time.Time) (int, bool) {
	i := sort.Search(len(times), func(i int) bool {
		return !times[i].Before(t)
	})
	if i < len(times) && times[i].Equal(t) {
		return i, true
	}
	return i, false
}
