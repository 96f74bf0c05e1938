package engine

import "strings"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from Groups or a RecordView
// ============================================================================
// Colors come from an explicit Palette passed by the caller; the builder
// holds no theme state of its own.
// ============================================================================

// Palette is the color configuration handed to chart builders.
type Palette struct {
	Name       string   `json:"name"`
	Background string   `json:"background"`
	Text       string   `json:"text"`
	Card       string   `json:"card"`
	Series     []string `json:"series"`
}

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// LightPalette is the default theme.
func LightPalette() Palette {
	return Palette{Name: "light", Background: "#ffffff", Text: "#000000", Card: "#f0f2f6", Series: defaultColors}
}

// DarkPalette is the dark theme.
func DarkPalette() Palette {
	return Palette{Name: "dark", Background: "#0e1117", Text: "#ffffff", Card: "#262730", Series: defaultColors}
}

// PaletteByName resolves "light" or "dark"; anything else is light.
func PaletteByName(name string) Palette {
	if strings.EqualFold(strings.TrimSpace(name), "dark") {
		return DarkPalette()
	}
	return LightPalette()
}

// Color returns the i-th series color, cycling.
func (p Palette) Color(i int) string {
	if len(p.Series) == 0 {
		return defaultColors[i%len(defaultColors)]
	}
	return p.Series[i%len(p.Series)]
}

// ChartSpec describes the chart to build.
type ChartSpec struct {
	Type       string
	Title      string
	XAxis      string
	YAxis      string
	SeriesName string
	Palette    Palette
}

// BuildChart produces a single-series ChartConfig from aggregated groups.
// No groups yields a chart with an empty series, not nil.
func BuildChart(spec ChartSpec, groups []Group) *ChartConfig {
	config := newChart(spec)

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: RoundTo2(g.Value),
		})
	}
	config.Series = []ChartSeries{{
		Name:  seriesName(spec),
		Data:  points,
		Color: spec.Palette.Color(0),
	}}

	if spec.Type == ChartPie {
		config.Colors = assignColors(spec.Palette, len(points))
	} else {
		config.Colors = assignColors(spec.Palette, len(config.Series))
	}
	return config
}

// BuildSeries produces a single-series chart that reads one point per record:
// the label from labelDim and the value from measure, in view order.
func BuildSeries(spec ChartSpec, view RecordView, labelDim, measure string) *ChartConfig {
	config := newChart(spec)

	points := make([]ChartPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		points = append(points, ChartPoint{
			Label: view.Dimension(i, labelDim),
			Value: RoundTo2(view.Measure(i, measure)),
		})
	}
	config.Series = []ChartSeries{{
		Name:  seriesName(spec),
		Data:  points,
		Color: spec.Palette.Color(0),
	}}
	config.Colors = assignColors(spec.Palette, 1)
	return config
}

// BuildScatter plots xMeasure against yMeasure, one series per value of
// groupDim (or a single series when groupDim is empty). sizeMeasure, when set,
// weights each marker.
func BuildScatter(spec ChartSpec, view RecordView, labelDim, xMeasure, yMeasure, groupDim, sizeMeasure string) *ChartConfig {
	spec.Type = ChartScatter
	config := newChart(spec)

	var order []string
	bySeries := make(map[string][]ChartPoint)
	for i := 0; i < view.Len(); i++ {
		key := seriesName(spec)
		if groupDim != "" {
			key = view.Dimension(i, groupDim)
		}
		if _, ok := bySeries[key]; !ok {
			order = append(order, key)
		}
		p := ChartPoint{
			Label: view.Dimension(i, labelDim),
			X:     RoundTo2(view.Measure(i, xMeasure)),
			Value: RoundTo2(view.Measure(i, yMeasure)),
		}
		if sizeMeasure != "" {
			p.Size = RoundTo2(view.Measure(i, sizeMeasure))
		}
		bySeries[key] = append(bySeries[key], p)
	}

	config.Series = make([]ChartSeries, 0, len(order))
	for i, key := range order {
		config.Series = append(config.Series, ChartSeries{
			Name:  key,
			Data:  bySeries[key],
			Color: spec.Palette.Color(i),
		})
	}
	config.Colors = assignColors(spec.Palette, len(config.Series))
	return config
}

func newChart(spec ChartSpec) *ChartConfig {
	chartType := spec.Type
	if chartType == "" {
		chartType = ChartBar
	}
	return &ChartConfig{
		ChartType:  chartType,
		Title:      spec.Title,
		XAxis:      spec.XAxis,
		YAxis:      spec.YAxis,
		Theme:      spec.Palette.Name,
		Background: spec.Palette.Background,
		ShowLegend: chartType == ChartPie || chartType == ChartScatter,
		ShowGrid:   chartType != ChartPie,
	}
}

func seriesName(spec ChartSpec) string {
	if spec.SeriesName != "" {
		return spec.SeriesName
	}
	if spec.YAxis != "" {
		return spec.YAxis
	}
	return "Value"
}

func assignColors(p Palette, count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = p.Color(i)
	}
	return colors
}
