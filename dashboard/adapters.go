package dashboard

import (
	"time"

	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/engine"
)

// ============================================================================
// ADAPTERS — RecordView bindings for the three datasets
// ============================================================================
// Keys match the export column names. Workspace dates are exposed both as a
// dimension (label) and as a measure (days since the Unix epoch) so the
// engine can range-filter them.
// ============================================================================

// Dimension and measure keys.
const (
	KeyUserID             = "user_id"
	KeyDisplayName        = "display_name"
	KeyMessagesPosted     = "messages_posted"
	KeyDaysActive         = "days_active"
	KeyHighEngagement     = "high_engagement"
	KeyRetentionGroup     = "retention_group"
	KeyChannel            = "channel"
	KeyName               = "name"
	KeyTotalMembership    = "total_membership"
	KeyAvgMessagesPerUser = "avg_messages_per_user"
	KeyMembersWhoPosted   = "members_who_posted"
	KeyDate               = "date"
	KeyDailyActivePeople  = "daily_active_people"
	KeyEngagementRatio    = "engagement_ratio"
	KeyTotalEnabled       = "total_enabled_members"
)

var memberAdapter = engine.NewDomainAdapter[dataset.MemberRecord]().
	Dimension(KeyUserID, func(m dataset.MemberRecord) string { return m.UserID }).
	Dimension(KeyDisplayName, func(m dataset.MemberRecord) string { return m.DisplayName }).
	Dimension(KeyRetentionGroup, func(m dataset.MemberRecord) string { return string(m.RetentionGroup) }).
	Dimension(KeyHighEngagement, func(m dataset.MemberRecord) string { return engagementLabel(m.HighEngagement) }).
	Measure(KeyMessagesPosted, func(m dataset.MemberRecord) float64 { return float64(m.MessagesPosted) }).
	Measure(KeyDaysActive, func(m dataset.MemberRecord) float64 { return float64(m.DaysActive) }).
	Measure(KeyHighEngagement, func(m dataset.MemberRecord) float64 { return flag(m.HighEngagement) })

var channelAdapter = engine.NewDomainAdapter[dataset.ChannelRecord]().
	Dimension(KeyChannel, func(c dataset.ChannelRecord) string { return c.ChannelID }).
	Dimension(KeyName, func(c dataset.ChannelRecord) string { return c.Name }).
	Measure(KeyMessagesPosted, func(c dataset.ChannelRecord) float64 { return float64(c.MessagesPosted) }).
	Measure(KeyTotalMembership, func(c dataset.ChannelRecord) float64 { return float64(c.TotalMembership) }).
	Measure(KeyAvgMessagesPerUser, func(c dataset.ChannelRecord) float64 { return c.AvgMessagesPerUser }).
	Measure(KeyMembersWhoPosted, func(c dataset.ChannelRecord) float64 { return float64(c.MembersWhoPosted) })

var workspaceAdapter = engine.NewDomainAdapter[dataset.WorkspaceDay]().
	Dimension(KeyDate, func(d dataset.WorkspaceDay) string { return d.Date.Format(dataset.DateLayout) }).
	Measure(KeyDate, func(d dataset.WorkspaceDay) float64 { return epochDay(d.Date) }).
	Measure(KeyDailyActivePeople, func(d dataset.WorkspaceDay) float64 { return float64(d.DailyActivePeople) }).
	Measure(KeyMessagesPosted, func(d dataset.WorkspaceDay) float64 { return float64(d.MessagesPosted) }).
	Measure(KeyEngagementRatio, func(d dataset.WorkspaceDay) float64 { return d.EngagementRatio }).
	Measure(KeyTotalEnabled, func(d dataset.WorkspaceDay) float64 { return float64(d.TotalEnabledMembers) })

// MemberView binds member rows to the engine.
func MemberView(members []dataset.MemberRecord) engine.RecordView {
	return memberAdapter.Bind(members)
}

// ChannelView binds channel rows to the engine.
func ChannelView(channels []dataset.ChannelRecord) engine.RecordView {
	return channelAdapter.Bind(channels)
}

// WorkspaceView binds the workspace series to the engine.
func WorkspaceView(days []dataset.WorkspaceDay) engine.RecordView {
	return workspaceAdapter.Bind(days)
}

// Labels of the high_engagement dimension.
const (
	LabelHighEngagement = "High Engagement"
	LabelRegular        = "Regular"
)

func engagementLabel(high bool) string {
	if high {
		return LabelHighEngagement
	}
	return LabelRegular
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// epochDay counts calendar days since 1970-01-01, ignoring the time of day.
func epochDay(t time.Time) float64 {
	y, m, d := t.Date()
	return float64(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
