package dashboard

import (
	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/engine"
)

// ============================================================================
// METRICS — The flat KPI record consumed by the presentation layer
// ============================================================================
// Every ratio and mean over an empty collection is 0.
// ============================================================================

// Metrics holds the dashboard KPIs.
type Metrics struct {
	// Member metrics (filtered members)
	TotalMembers           int     `json:"total_members"`
	TotalMemberMessages    int     `json:"total_member_messages"`
	AvgMessagesPerMember   float64 `json:"avg_messages_per_member"`
	AvgDaysActive          float64 `json:"avg_days_active"`
	HighEngagementCount    int     `json:"high_engagement_count"`
	PctHighEngagement      float64 `json:"pct_high_engagement"`
	MembersWithMessages    int     `json:"members_with_messages"`
	PctMembersWithMessages float64 `json:"pct_members_with_messages"`

	// Channel metrics (full channel table)
	TotalChannels          int     `json:"total_channels"`
	TotalChannelMessages   int     `json:"total_channel_messages"`
	AvgMessagesPerChannel  float64 `json:"avg_messages_per_channel"`
	TotalChannelMembership int     `json:"total_channel_membership"`

	// Workspace metrics (filtered series)
	PeakDailyActive      int     `json:"peak_daily_active"`
	PeakMessagesPerDay   int     `json:"peak_messages_per_day"`
	AvgDailyActive       float64 `json:"avg_daily_active"`
	AvgMessagesPerDay    float64 `json:"avg_messages_per_day"`
	TotalMessagesPeriod  int     `json:"total_messages_period"`
	AvgEngagementRatio   float64 `json:"avg_engagement_ratio"`
	LatestEnabledMembers int     `json:"latest_enabled_members"`
}

// ComputeMetrics derives the KPIs. Only the filtered series feeds the
// workspace metrics; the full series is accepted so callers pass the same
// four collections everywhere.
func ComputeMetrics(
	members []dataset.MemberRecord,
	channels []dataset.ChannelRecord,
	workspace []dataset.WorkspaceDay,
	filteredWorkspace []dataset.WorkspaceDay,
) Metrics {
	var m Metrics

	mv := MemberView(members)
	m.TotalMembers = engine.DistinctCount(mv, KeyUserID)
	m.TotalMemberMessages = int(engine.SumMeasure(mv, KeyMessagesPosted))
	m.AvgMessagesPerMember = engine.Ratio(float64(m.TotalMemberMessages), float64(m.TotalMembers))
	m.AvgDaysActive = engine.AvgMeasure(mv, KeyDaysActive)
	m.HighEngagementCount = int(engine.SumMeasure(mv, KeyHighEngagement))
	m.PctHighEngagement = engine.Percent(float64(m.HighEngagementCount), float64(m.TotalMembers))
	m.MembersWithMessages = engine.CountWhere(mv, KeyMessagesPosted, func(v float64) bool { return v > 0 })
	m.PctMembersWithMessages = engine.Percent(float64(m.MembersWithMessages), float64(m.TotalMembers))

	cv := ChannelView(channels)
	m.TotalChannels = engine.DistinctCount(cv, KeyChannel)
	m.TotalChannelMessages = int(engine.SumMeasure(cv, KeyMessagesPosted))
	m.AvgMessagesPerChannel = engine.Ratio(float64(m.TotalChannelMessages), float64(m.TotalChannels))
	m.TotalChannelMembership = int(engine.SumMeasure(cv, KeyTotalMembership))

	wv := WorkspaceView(filteredWorkspace)
	m.PeakDailyActive = int(engine.MaxMeasure(wv, KeyDailyActivePeople))
	m.PeakMessagesPerDay = int(engine.MaxMeasure(wv, KeyMessagesPosted))
	m.AvgDailyActive = engine.AvgMeasure(wv, KeyDailyActivePeople)
	m.AvgMessagesPerDay = engine.AvgMeasure(wv, KeyMessagesPosted)
	m.TotalMessagesPeriod = int(engine.SumMeasure(wv, KeyMessagesPosted))
	m.AvgEngagementRatio = engine.AvgMeasure(wv, KeyEngagementRatio)
	m.LatestEnabledMembers = latestEnabled(filteredWorkspace)

	return m
}

// latestEnabled reads total_enabled_members from the most recent day.
func latestEnabled(days []dataset.WorkspaceDay) int {
	if len(days) == 0 {
		return 0
	}
	latest := days[0]
	for _, d := range days[1:] {
		if !d.Date.Before(latest.Date) {
			latest = d
		}
	}
	return latest.TotalEnabledMembers
}
