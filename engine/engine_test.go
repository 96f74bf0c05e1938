package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// ENGINE TESTS
// ============================================================================

type row struct {
	id     string
	team   string
	msgs   int
	streak float64
}

var rowAdapter = NewDomainAdapter[row]().
	Dimension("id", func(r row) string { return r.id }).
	Dimension("team", func(r row) string { return r.team }).
	Measure("msgs", func(r row) float64 { return float64(r.msgs) }).
	Measure("streak", func(r row) float64 { return r.streak })

var rows = []row{
	{"a", "core", 10, 1.5},
	{"b", "core", 0, 0},
	{"c", "docs", 25, 3},
	{"d", "infra", 5, 2},
	{"e", "docs", 25, 0.5},
}

func TestDomainViewAccessors(t *testing.T) {
	view := rowAdapter.Bind(rows)

	assert.Equal(t, 5, view.Len())
	assert.Equal(t, "c", view.Dimension(2, "id"))
	assert.Equal(t, 25.0, view.Measure(2, "msgs"))
	assert.Equal(t, "", view.Dimension(9, "id"), "out of range is empty")
	assert.Zero(t, view.Measure(0, "unknown"))
	assert.Equal(t, []string{"id", "team"}, view.DimensionKeys())
	assert.Equal(t, []string{"msgs", "streak"}, view.MeasureKeys())
}

func TestFiltersAreZeroCopyAndComposable(t *testing.T) {
	view := rowAdapter.Bind(rows)

	docs := ApplyFilters(view, Filters{Dimensions: map[string][]string{"team": {"DOCS"}}})
	busy := ApplyMinimum(docs, "msgs", 20)

	assert.Equal(t, []int{2, 4}, Indices(docs))
	assert.Equal(t, []int{2, 4}, Indices(busy))
	assert.Equal(t, []row{rows[2], rows[4]}, Pick(rows, busy))

	assert.Same(t, view, ApplyFilters(view, Filters{}), "empty filter returns the view itself")
}

func TestApplyRange(t *testing.T) {
	view := rowAdapter.Bind(rows)

	assert.Equal(t, []int{0, 3}, Indices(ApplyRange(view, "msgs", 5, 10)))
	assert.Zero(t, ApplyRange(view, "msgs", 30, 40).Len())
	assert.Zero(t, ApplyRange(view, "msgs", 10, 5).Len(), "inverted range is empty")
}

func TestAggregatesOverEmptyViewAreZero(t *testing.T) {
	empty := rowAdapter.Bind(nil)

	for name, v := range map[string]float64{
		"sum": SumMeasure(empty, "msgs"),
		"avg": AvgMeasure(empty, "msgs"),
		"max": MaxMeasure(empty, "msgs"),
		"min": MinMeasure(empty, "msgs"),
		"pct": Percent(0, 0),
	} {
		assert.False(t, math.IsNaN(v), name)
		assert.Zero(t, v, name)
	}
	assert.Zero(t, DistinctCount(empty, "id"))
	assert.Nil(t, GroupAndAggregate(empty, "team", "msgs", AggSum, "", 0))
}

func TestAggregates(t *testing.T) {
	view := rowAdapter.Bind(rows)

	assert.Equal(t, 65.0, SumMeasure(view, "msgs"))
	assert.Equal(t, 13.0, AvgMeasure(view, "msgs"))
	assert.Equal(t, 25.0, MaxMeasure(view, "msgs"))
	assert.Equal(t, 0.0, MinMeasure(view, "msgs"))
	assert.Equal(t, 4, CountWhere(view, "msgs", func(v float64) bool { return v > 0 }))
	assert.Equal(t, 3, DistinctCount(view, "team"))
	assert.Equal(t, 50.0, Percent(1, 2))
}

func TestGroupAndAggregate(t *testing.T) {
	view := rowAdapter.Bind(rows)

	groups := GroupAndAggregate(view, "team", "msgs", AggSum, "value_desc", 2)
	require.Len(t, groups, 2)
	assert.Equal(t, "docs", groups[0].Key)
	assert.Equal(t, 50.0, groups[0].Value)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "core", groups[1].Key)

	counts := GroupAndAggregate(view, "team", "", AggCount, "label_asc", 0)
	require.Len(t, counts, 3)
	assert.Equal(t, []string{"core", "docs", "infra"}, []string{counts[0].Key, counts[1].Key, counts[2].Key})

	total := GroupAndAggregate(view, "", "streak", AggAvg, "", 0)
	require.Len(t, total, 1)
	assert.InDelta(t, 1.4, total[0].Value, 1e-9)
}

func TestOrderGroupsFillsMissingKeys(t *testing.T) {
	groups := []Group{{Key: "b", Value: 2}, {Key: "x", Value: 9}, {Key: "a", Value: 1}}

	ordered := OrderGroups(groups, []string{"a", "b", "c"})

	require.Len(t, ordered, 4)
	assert.Equal(t, "a", ordered[0].Key)
	assert.Equal(t, "b", ordered[1].Key)
	assert.Equal(t, "c", ordered[2].Key)
	assert.Zero(t, ordered[2].Value)
	assert.Equal(t, "x", ordered[3].Key)
}

func TestTopNIsStable(t *testing.T) {
	view := rowAdapter.Bind(rows)

	top := TopN(view, "msgs", 3)
	assert.Equal(t, []int{2, 4, 0}, Indices(top))
	assert.Equal(t, 5, TopN(view, "msgs", 0).Len())
}

func TestHistogram(t *testing.T) {
	view := rowAdapter.Bind(rows)

	bins := Histogram(view, "msgs", 5)
	require.Len(t, bins, 5)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 1, bins[0].Count)
	assert.Equal(t, 1, bins[1].Count, "a value on a bin edge belongs to the upper bin")
	assert.Equal(t, 2, bins[4].Count, "max value lands in the last bin")
	assert.Equal(t, "0–5", bins[0].Label)

	flat := Histogram(rowAdapter.Bind(rows[:1]), "msgs", 10)
	require.Len(t, flat, 1)
	assert.Equal(t, 1, flat[0].Count)

	assert.Empty(t, Histogram(rowAdapter.Bind(nil), "msgs", 10))
}

func TestBuildChartEmptyGroups(t *testing.T) {
	chart := BuildChart(ChartSpec{Type: ChartBar, Title: "Nothing", YAxis: "Messages", Palette: LightPalette()}, nil)

	require.NotNil(t, chart)
	require.Len(t, chart.Series, 1)
	assert.Empty(t, chart.Series[0].Data)

	b, err := json.Marshal(chart)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"data":[]`)
}

func TestBuildPieColorsEverySlice(t *testing.T) {
	groups := []Group{{Key: "a", Label: "a", Value: 1}, {Key: "b", Label: "b", Value: 2}}
	chart := BuildChart(ChartSpec{Type: ChartPie, Palette: DarkPalette()}, groups)

	assert.Equal(t, ChartPie, chart.ChartType)
	assert.Len(t, chart.Colors, 2)
	assert.False(t, chart.ShowGrid)
	assert.True(t, chart.ShowLegend)
}

func TestBuildSeriesAndScatter(t *testing.T) {
	view := rowAdapter.Bind(rows)

	line := BuildSeries(ChartSpec{Type: ChartLine, YAxis: "Messages"}, view, "id", "msgs")
	require.Len(t, line.Series[0].Data, 5)
	assert.Equal(t, ChartPoint{Label: "c", Value: 25}, line.Series[0].Data[2])

	scatter := BuildScatter(ChartSpec{Palette: LightPalette()}, view, "id", "streak", "msgs", "team", "msgs")
	assert.Equal(t, ChartScatter, scatter.ChartType)
	require.Len(t, scatter.Series, 3)
	assert.Equal(t, "core", scatter.Series[0].Name)
	assert.Equal(t, ChartPoint{Label: "a", X: 1.5, Value: 10, Size: 10}, scatter.Series[0].Data[0])
}

func TestPaletteByName(t *testing.T) {
	assert.Equal(t, "dark", PaletteByName(" Dark ").Name)
	assert.Equal(t, "light", PaletteByName("neon").Name)
	assert.Equal(t, defaultColors[1], Palette{}.Color(11))
}

func TestBuildListTable(t *testing.T) {
	view := TopN(rowAdapter.Bind(rows), "msgs", 2)
	table := BuildListTable("Top", view, []Column{TextColumn("id"), NumberColumn("msgs"), DecimalColumn("streak")})

	assert.Equal(t, []string{"Id", "Msgs", "Streak"}, table.Header())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"c", "25", "3.00"}, table.Rows[0])
	assert.Equal(t, "50", table.Summary.Values["msgs"])
	assert.Equal(t, "3.50", table.Summary.Values["streak"])
	assert.Equal(t, "Total (2 records)", table.Summary.Label)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatInt(1234567))
	assert.Equal(t, "-1,000", FormatInt(-1000))
	assert.Equal(t, "1,234.50", FormatDecimal(1234.5, 2))
	assert.Equal(t, "Days Active", LabelForDimension("days_active"))
}
