package dashboard

import "github.com/spektr-org/pulse/engine"

// ============================================================================
// DASHBOARD OPTIONS — Functional options for New()
// ============================================================================

// Option configures dashboard behavior via functional options pattern.
type Option func(*config)

type config struct {
	TopN          int            // rows in every leaderboard chart/table
	HistogramBins int            // bins of the message distribution
	Palette       engine.Palette // colors handed to chart builders
}

// WithTopN sets how many members/channels the leaderboards keep.
func WithTopN(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

// WithHistogramBins sets the number of bins of the message distribution.
func WithHistogramBins(bins int) Option {
	return func(c *config) {
		if bins > 0 {
			c.HistogramBins = bins
		}
	}
}

// WithPalette sets the chart colors.
func WithPalette(p engine.Palette) Option {
	return func(c *config) {
		c.Palette = p
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		TopN:          DefaultTopN,
		HistogramBins: DefaultHistogramBins,
		Palette:       engine.LightPalette(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
