package dashboard

import (
	"fmt"

	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/engine"
)

// ============================================================================
// CHARTS — Render-agnostic chart data for every dashboard panel
// ============================================================================

// Defaults for the leaderboard size and the distribution resolution.
const (
	DefaultTopN          = 20
	DefaultHistogramBins = 50
)

// Charts groups the chart configs of the four dashboard tabs.
type Charts struct {
	// Overview
	Retention   *engine.ChartConfig `json:"retention"`
	DailyActive *engine.ChartConfig `json:"daily_active"`

	// Members
	TopMembers          *engine.ChartConfig `json:"top_members"`
	ActivityVsRetention *engine.ChartConfig `json:"activity_vs_retention"`
	MessageDistribution *engine.ChartConfig `json:"message_distribution"`

	// Channels
	TopChannels     *engine.ChartConfig `json:"top_channels"`
	DeepChannels    *engine.ChartConfig `json:"deep_channels"`
	ChannelActivity *engine.ChartConfig `json:"channel_activity"`

	// Workspace
	MessagesPerDay  *engine.ChartConfig `json:"messages_per_day"`
	EngagementRatio *engine.ChartConfig `json:"engagement_ratio"`
}

// BuildCharts assembles every chart from the filtered members, the full
// channel table and the filtered workspace series.
func BuildCharts(
	members []dataset.MemberRecord,
	channels []dataset.ChannelRecord,
	days []dataset.WorkspaceDay,
	opts ...Option,
) Charts {
	cfg := applyOptions(opts)
	mv, cv, wv := MemberView(members), ChannelView(channels), WorkspaceView(days)

	return Charts{
		Retention:           RetentionChart(mv, cfg.Palette),
		DailyActive:         trend(wv, engine.ChartArea, "Daily Active Users", "Active Users", KeyDailyActivePeople, cfg.Palette),
		TopMembers:          topChart(mv, KeyDisplayName, KeyMessagesPosted, fmt.Sprintf("Top %d Most Active Members", cfg.TopN), "Member", "Messages Posted", cfg),
		ActivityVsRetention: activityScatter(mv, cfg.Palette),
		MessageDistribution: distribution(mv, cfg),
		TopChannels:         topChart(cv, KeyName, KeyMessagesPosted, fmt.Sprintf("Top %d Channels by Volume", cfg.TopN), "Channel", "Messages", cfg),
		DeepChannels:        topChart(cv, KeyName, KeyAvgMessagesPerUser, "Deep Engagement Channels", "Channel", "Avg Msgs/User", cfg),
		ChannelActivity:     channelScatter(cv, cfg.Palette),
		MessagesPerDay:      trend(wv, engine.ChartArea, "Messages Posted Per Day", "Messages", KeyMessagesPosted, cfg.Palette),
		EngagementRatio:     trend(wv, engine.ChartLine, "Engagement Ratio Trend", "Engagement Ratio", KeyEngagementRatio, cfg.Palette),
	}
}

// RetentionChart counts members per retention bucket. Every bucket appears,
// in ascending order, even when empty.
func RetentionChart(view engine.RecordView, palette engine.Palette) *engine.ChartConfig {
	groups := engine.GroupAndAggregate(view, KeyRetentionGroup, "", engine.AggCount, "", 0)

	keys := make([]string, 0, 4)
	for _, g := range dataset.RetentionGroups() {
		keys = append(keys, string(g))
	}

	return engine.BuildChart(engine.ChartSpec{
		Type:       engine.ChartPie,
		Title:      "Member Retention Distribution",
		SeriesName: "Members",
		Palette:    palette,
	}, engine.OrderGroups(groups, keys))
}

func trend(view engine.RecordView, chartType, title, yAxis, measure string, palette engine.Palette) *engine.ChartConfig {
	return engine.BuildSeries(engine.ChartSpec{
		Type:    chartType,
		Title:   title,
		XAxis:   "Date",
		YAxis:   yAxis,
		Palette: palette,
	}, view, KeyDate, measure)
}

func topChart(view engine.RecordView, labelDim, measure, title, xAxis, yAxis string, cfg *config) *engine.ChartConfig {
	return engine.BuildSeries(engine.ChartSpec{
		Type:    engine.ChartBar,
		Title:   title,
		XAxis:   xAxis,
		YAxis:   yAxis,
		Palette: cfg.Palette,
	}, engine.TopN(view, measure, cfg.TopN), labelDim, measure)
}

// activityScatter plots days active against messages, one series for high
// engagement members and one for the rest.
func activityScatter(view engine.RecordView, palette engine.Palette) *engine.ChartConfig {
	return engine.BuildScatter(engine.ChartSpec{
		Title:   "Activity vs Retention",
		XAxis:   "Days Active",
		YAxis:   "Messages Posted",
		Palette: palette,
	}, view, KeyDisplayName, KeyDaysActive, KeyMessagesPosted, KeyHighEngagement, KeyMessagesPosted)
}

// channelScatter plots membership against volume, sized by volume.
func channelScatter(view engine.RecordView, palette engine.Palette) *engine.ChartConfig {
	return engine.BuildScatter(engine.ChartSpec{
		Title:      "Channel Size vs Activity",
		XAxis:      "Total Members",
		YAxis:      "Total Messages",
		SeriesName: "Channels",
		Palette:    palette,
	}, view, KeyName, KeyTotalMembership, KeyMessagesPosted, "", KeyMessagesPosted)
}

func distribution(view engine.RecordView, cfg *config) *engine.ChartConfig {
	return engine.BuildChart(engine.ChartSpec{
		Type:    engine.ChartHistogram,
		Title:   "Message Distribution",
		XAxis:   "Messages Posted",
		YAxis:   "Number of Members",
		Palette: cfg.Palette,
	}, engine.Histogram(view, KeyMessagesPosted, cfg.HistogramBins))
}
