package dashboard

import (
	"slices"
	"time"

	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/engine"
	"github.com/spektr-org/pulse/schema"
)

// ============================================================================
// FILTERS — Date range and message threshold over the base datasets
// ============================================================================
// Both filters read the immutable base snapshot and return fresh slices.
// Neither affects the other.
// ============================================================================

// DateSelection is the raw date picker value: zero, one or two dates.
type DateSelection []time.Time

// NormalizeDateRange turns a selection into an inclusive [start, end] range.
//
//	2 values → start, end (a zero bound takes the dataset bound)
//	1 value  → that day as both start and end (a zero value takes the full range)
//	otherwise → the dataset's full range
//
// A reversed pair is kept as given and selects no days.
//
// With an empty workspace series the fallback range is zero.
func NormalizeDateRange(selection DateSelection, data *dataset.Datasets) (start, end time.Time) {
	first, last, _ := data.DateBounds()

	switch len(selection) {
	case 1:
		if selection[0].IsZero() {
			return first, last
		}
		d := schema.Day(selection[0])
		return d, d
	case 2:
		start, end = schema.Day(selection[0]), schema.Day(selection[1])
		if selection[0].IsZero() {
			start = first
		}
		if selection[1].IsZero() {
			end = last
		}
		return start, end
	default:
		return first, last
	}
}

// FilterWorkspace keeps the days in [start, end], inclusive, ascending.
// An empty intersection is an empty, non-nil slice.
func FilterWorkspace(days []dataset.WorkspaceDay, start, end time.Time) []dataset.WorkspaceDay {
	view := WorkspaceView(days)
	in := engine.ApplyRange(view, KeyDate, epochDay(start), epochDay(end))
	out := engine.Pick(days, in)
	sortByDate(out)
	return out
}

// FilterMembers keeps members with at least minMessages messages.
// minMessages <= 0 keeps everyone.
func FilterMembers(members []dataset.MemberRecord, minMessages int) []dataset.MemberRecord {
	view := MemberView(members)
	if minMessages <= 0 {
		return engine.Pick(members, view)
	}
	return engine.Pick(members, engine.ApplyMinimum(view, KeyMessagesPosted, float64(minMessages)))
}

// FilterByRetention keeps members in any of the given retention groups.
// No groups keeps everyone.
func FilterByRetention(members []dataset.MemberRecord, groups ...dataset.RetentionGroup) []dataset.MemberRecord {
	allowed := make([]string, 0, len(groups))
	for _, g := range groups {
		allowed = append(allowed, string(g))
	}
	view := engine.ApplyFilters(MemberView(members), engine.Filters{
		Dimensions: map[string][]string{KeyRetentionGroup: allowed},
	})
	return engine.Pick(members, view)
}

// Filter applies both filters to a base snapshot.
func Filter(data *dataset.Datasets, selection DateSelection, minMessages int) ([]dataset.MemberRecord, []dataset.WorkspaceDay) {
	start, end := NormalizeDateRange(selection, data)
	members := FilterMembers(data.Members(), minMessages)

	if _, _, ok := data.DateBounds(); !ok {
		return members, []dataset.WorkspaceDay{}
	}
	return members, FilterWorkspace(data.Workspace(), start, end)
}

func sortByDate(days []dataset.WorkspaceDay) {
	slices.SortStableFunc(days, func(a, b dataset.WorkspaceDay) int {
		return a.Date.Compare(b.Date)
	})
}
