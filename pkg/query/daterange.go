// Package query provides the read-query construction helpers shared by the
// application services: date-range filters, offset and cursor pagination, and
// aggregation pipeline builders over the document store port.
package query

import (
	"time"

	"fintrack-backend/infrastructure/persistence/store"
)

// DateRange bounds a query in time. Either bound may be nil.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// RangeFilter translates a DateRange into a store filter fragment on field.
// The start bound is used exactly as given; the end bound is widened to the
// end of its calendar day (23:59:59.999) so a date-only value covers the whole
// day rather than just midnight. An empty range yields an empty filter.
func RangeFilter(r DateRange, field string) store.Filter {
	if r.IsZero() {
		return store.Filter{}
	}
	bounds := map[string]any{}
	if r.Start != nil {
		bounds[store.OpGTE] = *r.Start
	}
	if r.End != nil {
		bounds[store.OpLTE] = endOfDay(*r.End)
	}
	return store.Filter{field: bounds}
}

// Preset names understood by Preset.
const (
	PresetToday      = "today"
	PresetYesterday  = "yesterday"
	PresetThisWeek   = "thisWeek"
	PresetThisMonth  = "thisMonth"
	PresetLastMonth  = "lastMonth"
	PresetThisYear   = "thisYear"
	PresetLast30Days = "last30Days"
	PresetLast90Days = "last90Days"
)

// Preset maps a named period to a concrete range anchored on the current
// instant. An unknown name yields an empty range, not an error.
func Preset(name string) DateRange {
	return presetAt(name, time.Now())
}

func presetAt(name string, now time.Time) DateRange {
	switch name {
	case PresetToday:
		return between(startOfDay(now), now)
	case PresetYesterday:
		y := now.AddDate(0, 0, -1)
		return between(startOfDay(y), endOfDay(y))
	case PresetThisWeek:
		// Weeks start on the most recent Sunday.
		start := startOfDay(now.AddDate(0, 0, -int(now.Weekday())))
		return between(start, now)
	case PresetThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return between(start, now)
	case PresetLastMonth:
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start := firstOfThis.AddDate(0, -1, 0)
		end := firstOfThis.Add(-time.Millisecond)
		return between(start, end)
	case PresetThisYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return between(start, now)
	case PresetLast30Days:
		return between(startOfDay(now.AddDate(0, 0, -30)), now)
	case PresetLast90Days:
		return between(startOfDay(now.AddDate(0, 0, -90)), now)
	default:
		return DateRange{}
	}
}

func between(start, end time.Time) DateRange {
	return DateRange{Start: &start, End: &end}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
