package engine

// ============================================================================
// ENGINE TYPES — Render-agnostic analytics output
// ============================================================================
// The engine reads typed rows through RecordView and produces groups, chart
// configs and tables. It never renders anything itself: the presentation
// layer owns widgets and layout, and the palette arrives as explicit input.
// ============================================================================

// Filters restrict records by dimension value.
// OR within a dimension, AND across dimensions. Empty = all.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions"`
}

// IsEmpty returns true if no dimension has any allowed value.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Group is one bucket of an aggregation: a key, its aggregated value and
// the rows that fell into it.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Count int        `json:"count"`
	View  RecordView `json:"-"`
}

// ============================================================================
// CHARTS
// ============================================================================

// Chart types understood by the presentation layer.
const (
	ChartBar       = "bar"
	ChartLine      = "line"
	ChartArea      = "area"
	ChartPie       = "pie"
	ChartScatter   = "scatter"
	ChartHistogram = "histogram"
)

// ChartConfig is everything a renderer needs to draw one chart.
type ChartConfig struct {
	ChartType  string        `json:"chart_type"`
	Title      string        `json:"title"`
	XAxis      string        `json:"x_axis,omitempty"`
	YAxis      string        `json:"y_axis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	Theme      string        `json:"theme,omitempty"`
	Background string        `json:"background,omitempty"`
	ShowLegend bool          `json:"show_legend"`
	ShowGrid   bool          `json:"show_grid"`
}

// ChartSeries is one named line, bar set or point cloud.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint is a labelled value. Scatter points also carry X, and Size when
// markers are weighted by a measure.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Size  float64 `json:"size,omitempty"`
}

// ============================================================================
// TABLES
// ============================================================================

// TableData is a leaderboard or listing with preformatted cells.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column describes one table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "decimal"
	Align string `json:"align"` // "left", "right"
}

// Summary is the totals row of a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
