package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// Every aggregate over an empty view is 0, never NaN.
// ============================================================================

// Aggregation names accepted by GroupAndAggregate.
const (
	AggSum   = "sum"
	AggCount = "count"
	AggAvg   = "avg"
	AggMax   = "max"
	AggMin   = "min"
)

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort → limit.
// An empty groupBy aggregates the whole view as a single "all" group.
func GroupAndAggregate(
	view RecordView,
	groupBy string,
	measure string,
	aggregation string,
	sortBy string,
	limit int,
) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	if groupBy == "" {
		groups = []Group{{
			Key:   "all",
			Label: "Total",
			View:  view,
		}}
	} else {
		groups = groupBySingle(view, groupBy)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], measure, aggregation)
	}

	// 3. Sort
	SortGroups(groups, sortBy)

	// 4. Limit
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	if group.Count == 0 {
		return
	}

	switch aggregation {
	case AggCount:
		group.Value = float64(group.Count)
	case AggAvg:
		group.Value = AvgMeasure(group.View, measure)
	case AggMax:
		group.Value = MaxMeasure(group.View, measure)
	case AggMin:
		group.Value = MinMeasure(group.View, measure)
	default:
		group.Value = SumMeasure(group.View, measure)
	}
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// AvgMeasure computes average of a named measure.
func AvgMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// MaxMeasure returns the largest value of a named measure.
func MaxMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	m := view.Measure(0, measure)
	for i := 1; i < n; i++ {
		m = math.Max(m, view.Measure(i, measure))
	}
	return m
}

// MinMeasure returns the smallest value of a named measure.
func MinMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	m := view.Measure(0, measure)
	for i := 1; i < n; i++ {
		m = math.Min(m, view.Measure(i, measure))
	}
	return m
}

// CountWhere counts records whose measure satisfies pred.
func CountWhere(view RecordView, measure string, pred func(float64) bool) int {
	count := 0
	for i := 0; i < view.Len(); i++ {
		if pred(view.Measure(i, measure)) {
			count++
		}
	}
	return count
}

// DistinctCount counts distinct non-empty values of a dimension.
func DistinctCount(view RecordView, dimension string) int {
	return len(UniqueValues(view, dimension))
}

// Ratio divides num by den, yielding 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent is 100 × num / den, yielding 0 when den is 0.
func Percent(num, den float64) float64 {
	return Ratio(num, den) * 100
}

// ============================================================================
// RANKING & DISTRIBUTION
// ============================================================================

// TopN returns the n records with the largest measure, descending.
// Ties keep their original order. n <= 0 keeps every record.
func TopN(view RecordView, measure string, n int) RecordView {
	indices := make([]int, view.Len())
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return view.Measure(indices[a], measure) > view.Measure(indices[b], measure)
	})
	if n > 0 && len(indices) > n {
		indices = indices[:n]
	}
	return newSubView(view, indices)
}

// Histogram splits the measure's [min, max] range into equal-width bins and
// counts records per bin. The last bin is closed on the right.
func Histogram(view RecordView, measure string, bins int) []Group {
	if view.Len() == 0 || bins <= 0 {
		return []Group{}
	}

	lo, hi := MinMeasure(view, measure), MaxMeasure(view, measure)
	width := (hi - lo) / float64(bins)
	if width == 0 {
		bins, width = 1, 1
	}

	members := make([][]int, bins)
	for i := 0; i < view.Len(); i++ {
		b := int((view.Measure(i, measure) - lo) / width)
		b = min(max(b, 0), bins-1)
		members[b] = append(members[b], i)
	}

	groups := make([]Group, bins)
	for b := range groups {
		start := lo + float64(b)*width
		label := fmt.Sprintf("%s–%s", formatBound(start), formatBound(start+width))
		groups[b] = Group{
			Key:   label,
			Label: label,
			Value: float64(len(members[b])),
			Count: len(members[b]),
			View:  newSubView(view, members[b]),
		}
	}
	return groups
}

func formatBound(v float64) string {
	if v == math.Trunc(v) {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 1)
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "label_asc", "alpha_asc":
		sort.SliceStable(groups, func(i, j int) bool { return strings.ToLower(groups[i].Key) < strings.ToLower(groups[j].Key) })
	case "label_desc":
		sort.SliceStable(groups, func(i, j int) bool { return strings.ToLower(groups[i].Key) > strings.ToLower(groups[j].Key) })
	default:
		// preserve grouping order
	}
}

// OrderGroups arranges groups to follow keys; every key is present in the
// result, with zero-valued groups for keys that had no records. Groups whose
// key is not listed are appended in their current order.
func OrderGroups(groups []Group, keys []string) []Group {
	byKey := make(map[string]Group, len(groups))
	for _, g := range groups {
		byKey[g.Key] = g
	}

	out := make([]Group, 0, max(len(keys), len(groups)))
	listed := make(map[string]bool, len(keys))
	for _, k := range keys {
		listed[k] = true
		if g, ok := byKey[k]; ok {
			out = append(out, g)
			continue
		}
		out = append(out, Group{Key: k, Label: k})
	}
	for _, g := range groups {
		if !listed[g.Key] {
			out = append(out, g)
		}
	}
	return out
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return humanize.Comma(int64(n))
}

// FormatDecimal formats v with comma separators and the given decimals.
func FormatDecimal(v float64, decimals int) string {
	return humanize.FormatFloat(decimalPattern(decimals), v)
}

func decimalPattern(decimals int) string {
	if decimals <= 0 {
		return "#,###."
	}
	return "#,###." + strings.Repeat("#", decimals)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UniqueValues returns distinct non-empty values for a dimension across a view.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// LabelForDimension turns a snake_case key into a title: "days_active" → "Days Active".
func LabelForDimension(dimension string) string {
	words := strings.Fields(strings.ReplaceAll(dimension, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
