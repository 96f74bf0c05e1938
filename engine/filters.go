package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Dimension and measure filtering via RecordView
// ============================================================================
// Single-pass filters. Each returns a SubView (index list into parent).
// No data is copied and the parent is never modified.
// ============================================================================

// ApplyFilters returns a view of records matching all dimension filters.
// Dimensions are AND-combined; values within a dimension are OR-combined.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	// Pre-build lowercase lookup sets for each dimension filter
	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toLowerSet(allowed)
		}
	}

	return applyPredicate(view, func(i int) bool {
		for dim, set := range sets {
			if !set[strings.ToLower(view.Dimension(i, dim))] {
				return false
			}
		}
		return true
	})
}

// ApplyMinimum returns a view of records whose measure is at least floor.
func ApplyMinimum(view RecordView, measure string, floor float64) RecordView {
	return applyPredicate(view, func(i int) bool {
		return view.Measure(i, measure) >= floor
	})
}

// ApplyRange returns a view of records whose measure lies in [lo, hi].
// An inverted range matches nothing.
func ApplyRange(view RecordView, measure string, lo, hi float64) RecordView {
	return applyPredicate(view, func(i int) bool {
		v := view.Measure(i, measure)
		return v >= lo && v <= hi
	})
}

func applyPredicate(view RecordView, keep func(i int) bool) RecordView {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	return set
}
