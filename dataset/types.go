package dataset

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/spektr-org/pulse/schema"
)

// ============================================================================
// DATASET TYPES — Normalized rows of the three engagement exports
// ============================================================================
// A Datasets bundle is built once per distinct source content and never
// mutated afterwards. Accessors hand out copies so callers cannot write
// through to the shared snapshot.
// ============================================================================

// UnknownMember is the last fallback of the display name chain.
const UnknownMember = "Unknown Member"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MemberRecord is one row of the member activity export.
type MemberRecord struct {
	UserID         string         `json:"user_id"`
	DisplayName    string         `json:"display_name"`
	MessagesPosted int            `json:"messages_posted"`
	DaysActive     int            `json:"days_active"`
	HighEngagement bool           `json:"high_engagement"`
	RetentionGroup RetentionGroup `json:"retention_group"`
}

// ChannelRecord is one row of the channel activity export.
type ChannelRecord struct {
	ChannelID          string  `json:"channel"`
	Name               string  `json:"name"`
	MessagesPosted     int     `json:"messages_posted"`
	TotalMembership    int     `json:"total_membership"`
	AvgMessagesPerUser float64 `json:"avg_messages_per_user"`
	MembersWhoPosted   int     `json:"members_who_posted"`
}

// WorkspaceDay is one day of the workspace snapshot export.
type WorkspaceDay struct {
	Date                time.Time `json:"date"`
	DailyActivePeople   int       `json:"daily_active_people"`
	MessagesPosted      int       `json:"messages_posted"`
	EngagementRatio     float64   `json:"engagement_ratio"`
	TotalEnabledMembers int       `json:"total_enabled_members"`
}

// MarshalJSON renders Date as a bare calendar date.
func (d WorkspaceDay) MarshalJSON() ([]byte, error) {
	type alias WorkspaceDay
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{
		alias: alias(d),
		Date:  d.Date.Format(DateLayout),
	})
}

// Datasets is the immutable bundle produced by Load.
type Datasets struct {
	members     []MemberRecord
	channels    []ChannelRecord
	workspace   []WorkspaceDay
	fingerprint string
}

// NewDatasets builds a bundle from already-normalized rows.
// The workspace series is sorted and de-duplicated by date; retention groups
// are recomputed. The input slices are copied.
func NewDatasets(members []MemberRecord, channels []ChannelRecord, workspace []WorkspaceDay) *Datasets {
	m := slices.Clone(members)
	for i := range m {
		m[i].RetentionGroup = Classify(m[i].DaysActive)
	}
	return &Datasets{
		members:   m,
		channels:  slices.Clone(channels),
		workspace: normalizeSeries(workspace),
	}
}

// Members returns a copy of the member rows.
func (d *Datasets) Members() []MemberRecord { return slices.Clone(d.members) }

// Channels returns a copy of the channel rows.
func (d *Datasets) Channels() []ChannelRecord { return slices.Clone(d.channels) }

// Workspace returns a copy of the workspace series, ascending by date.
func (d *Datasets) Workspace() []WorkspaceDay { return slices.Clone(d.workspace) }

// Fingerprint is the content key the bundle was loaded under ("" if built directly).
func (d *Datasets) Fingerprint() string { return d.fingerprint }

// DateBounds returns the first and last date of the workspace series.
func (d *Datasets) DateBounds() (first, last time.Time, ok bool) {
	if len(d.workspace) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return d.workspace[0].Date, d.workspace[len(d.workspace)-1].Date, true
}

// MaxMessages is the largest messages_posted of any member (slider upper bound).
func (d *Datasets) MaxMessages() int {
	maxMsgs := 0
	for _, m := range d.members {
		maxMsgs = max(maxMsgs, m.MessagesPosted)
	}
	return maxMsgs
}

// normalizeSeries sorts by date and keeps the last row seen for each date.
func normalizeSeries(days []WorkspaceDay) []WorkspaceDay {
	byDate := make(map[time.Time]int, len(days))
	out := make([]WorkspaceDay, 0, len(days))
	for _, day := range days {
		day.Date = schema.Day(day.Date)
		if i, ok := byDate[day.Date]; ok {
			out[i] = day
			continue
		}
		byDate[day.Date] = len(out)
		out = append(out, day)
	}
	slices.SortStableFunc(out, func(a, b WorkspaceDay) int {
		return a.Date.Compare(b.Date)
	})
	return out
}
