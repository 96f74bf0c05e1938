package dashboard

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/engine"
)

// ============================================================================
// DASHBOARD — filter → metrics → charts for one query
// ============================================================================
//
// Usage:
//
//	dash := dashboard.New(data, dashboard.WithTopN(10))
//	snap := dash.Snapshot(dashboard.Query{MinMessages: 5})
//	fmt.Println(snap.Metrics.TotalMembers)
//
// A Dashboard only reads its Datasets; any number of goroutines may call
// Snapshot concurrently.
// ============================================================================

// Query is one set of filter inputs.
type Query struct {
	Dates       DateSelection            `json:"dates,omitempty"`
	MinMessages int                      `json:"min_messages"`
	Retention   []dataset.RetentionGroup `json:"retention,omitempty"`
}

// Range is an inclusive calendar date range.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MarshalJSON renders both bounds as bare dates.
func (r Range) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"start":%q,"end":%q}`,
		formatDate(r.Start), formatDate(r.End))), nil
}

// Days counts the days in the range, both ends included.
func (r Range) Days() int {
	if r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start) {
		return 0
	}
	return int(epochDay(r.End)-epochDay(r.Start)) + 1
}

// Summary is the period overview shown next to the filters.
type Summary struct {
	Selected     Range  `json:"selected"`
	Available    Range  `json:"available"`
	DaysInRange  int    `json:"days_in_range"`
	DaysWithData int    `json:"days_with_data"`
	Members      int    `json:"members"`
	Channels     int    `json:"channels"`
	MaxMessages  int    `json:"max_messages"`
	Text         string `json:"text"`
}

// Snapshot is the full result of one query.
type Snapshot struct {
	Query     Query                  `json:"query"`
	Metrics   Metrics                `json:"metrics"`
	Summary   Summary                `json:"summary"`
	Charts    Charts                 `json:"charts"`
	Members   []dataset.MemberRecord `json:"-"`
	Workspace []dataset.WorkspaceDay `json:"-"`
}

// Dashboard binds a Datasets snapshot to presentation options.
type Dashboard struct {
	data *dataset.Datasets
	opts []Option
	cfg  *config
}

// New creates a dashboard over data.
func New(data *dataset.Datasets, opts ...Option) *Dashboard {
	return &Dashboard{data: data, opts: opts, cfg: applyOptions(opts)}
}

// Data returns the underlying datasets.
func (d *Dashboard) Data() *dataset.Datasets { return d.data }

// MaxMessages is the upper bound of the message threshold slider.
func (d *Dashboard) MaxMessages() int { return d.data.MaxMessages() }

// Snapshot runs the whole pipeline for q.
func (d *Dashboard) Snapshot(q Query) Snapshot {
	members, days := Filter(d.data, q.Dates, q.MinMessages)
	if len(q.Retention) > 0 {
		members = FilterByRetention(members, q.Retention...)
	}
	channels := d.data.Channels()
	start, end := NormalizeDateRange(q.Dates, d.data)

	return Snapshot{
		Query:     q,
		Metrics:   ComputeMetrics(members, channels, d.data.Workspace(), days),
		Summary:   d.summarize(Range{Start: start, End: end}, members, days),
		Charts:    BuildCharts(members, channels, days, d.opts...),
		Members:   members,
		Workspace: days,
	}
}

// Metrics computes only the KPI block for q.
func (d *Dashboard) Metrics(q Query) Metrics {
	members, days := Filter(d.data, q.Dates, q.MinMessages)
	if len(q.Retention) > 0 {
		members = FilterByRetention(members, q.Retention...)
	}
	return ComputeMetrics(members, d.data.Channels(), d.data.Workspace(), days)
}

// Summary describes the data behind q without computing charts.
func (d *Dashboard) Summary(q Query) Summary {
	members, days := Filter(d.data, q.Dates, q.MinMessages)
	if len(q.Retention) > 0 {
		members = FilterByRetention(members, q.Retention...)
	}
	start, end := NormalizeDateRange(q.Dates, d.data)
	return d.summarize(Range{Start: start, End: end}, members, days)
}

func (d *Dashboard) summarize(selected Range, members []dataset.MemberRecord, days []dataset.WorkspaceDay) Summary {
	first, last, _ := d.data.DateBounds()
	s := Summary{
		Selected:     selected,
		Available:    Range{Start: first, End: last},
		DaysInRange:  selected.Days(),
		DaysWithData: len(days),
		Members:      len(members),
		Channels:     len(d.data.Channels()),
		MaxMessages:  d.data.MaxMessages(),
	}
	s.Text = fmt.Sprintf("%s days selected · %s members · %s channels · data from %s to %s",
		humanize.Comma(int64(s.DaysInRange)),
		humanize.Comma(int64(s.Members)),
		humanize.Comma(int64(s.Channels)),
		formatDate(first), formatDate(last))
	return s
}

// MembersTable is the leaderboard of the filtered members, busiest first.
// limit <= 0 uses the configured top-N.
func (d *Dashboard) MembersTable(members []dataset.MemberRecord, limit int) *engine.TableData {
	if limit <= 0 {
		limit = d.cfg.TopN
	}
	view := engine.TopN(MemberView(members), KeyMessagesPosted, limit)
	return engine.BuildListTable("Most Active Members", view, []engine.Column{
		engine.TextColumn(KeyDisplayName),
		engine.NumberColumn(KeyMessagesPosted),
		engine.NumberColumn(KeyDaysActive),
		engine.TextColumn(KeyRetentionGroup),
	})
}

// ChannelsTable is the channel leaderboard by volume.
func (d *Dashboard) ChannelsTable(limit int) *engine.TableData {
	if limit <= 0 {
		limit = d.cfg.TopN
	}
	view := engine.TopN(ChannelView(d.data.Channels()), KeyMessagesPosted, limit)
	return engine.BuildListTable("Top Channels", view, []engine.Column{
		engine.TextColumn(KeyName),
		engine.NumberColumn(KeyMessagesPosted),
		engine.NumberColumn(KeyTotalMembership),
		engine.DecimalColumn(KeyAvgMessagesPerUser),
		engine.NumberColumn(KeyMembersWhoPosted),
	})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dataset.DateLayout)
}
