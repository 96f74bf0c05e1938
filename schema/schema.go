package schema

import "strings"

// ============================================================================
// SCHEMA — Column contracts for the three engagement exports
// ============================================================================
// Each export has a fixed set of columns. Headers are matched after snake_case
// normalization, so "Messages Posted" and "messages_posted" are the same column.
// A column may list aliases; the first alias present in the header wins.
// ============================================================================

// Source names, used in error messages and logs.
const (
	SourceMembers   = "members"
	SourceChannels  = "channels"
	SourceWorkspace = "workspace"
)

// ColumnMeta describes one logical column of an export.
type ColumnMeta struct {
	Key      string   `json:"key"`
	Aliases  []string `json:"aliases,omitempty"`
	Required bool     `json:"required"`
}

// Table is the contract of one export.
type Table struct {
	Source  string       `json:"source"`
	Columns []ColumnMeta `json:"columns"`
}

// Member column keys.
const (
	ColUserID         = "user_id"
	ColDisplayName    = "display_name"
	ColName           = "name"
	ColMessagesPosted = "messages_posted"
	ColDaysActive     = "days_active"
	ColHighEngagement = "high_engagement"
)

// Channel column keys.
const (
	ColChannel            = "channel"
	ColTotalMembership    = "total_membership"
	ColAvgMessagesPerUser = "avg_messages_per_user"
	ColMembersWhoPosted   = "members_who_posted"
)

// Workspace column keys.
const (
	ColDate                = "date"
	ColDailyActivePeople   = "daily_active_people"
	ColEngagementRatio     = "engagement_ratio"
	ColTotalEnabledMembers = "total_enabled_members"
)

// Members is the per-member activity export.
// display_name and name are optional: the loader falls back through them.
func Members() Table {
	return Table{
		Source: SourceMembers,
		Columns: []ColumnMeta{
			{Key: ColUserID, Required: true},
			{Key: ColDisplayName},
			{Key: ColName, Aliases: []string{"real_name", "full_name"}},
			{Key: ColMessagesPosted, Required: true},
			{Key: ColDaysActive, Required: true},
			{Key: ColHighEngagement, Required: true},
		},
	}
}

// Channels is the per-channel activity export.
func Channels() Table {
	return Table{
		Source: SourceChannels,
		Columns: []ColumnMeta{
			{Key: ColChannel, Aliases: []string{"channel_id", "name"}, Required: true},
			{Key: ColName},
			{Key: ColMessagesPosted, Required: true},
			{Key: ColTotalMembership, Required: true},
			{Key: ColAvgMessagesPerUser, Required: true},
			{Key: ColMembersWhoPosted, Required: true},
		},
	}
}

// Workspace is the per-day workspace snapshot export.
func Workspace() Table {
	return Table{
		Source: SourceWorkspace,
		Columns: []ColumnMeta{
			{Key: ColDate, Required: true},
			{Key: ColDailyActivePeople, Required: true},
			{Key: ColMessagesPosted, Required: true},
			{Key: ColEngagementRatio, Required: true},
			{Key: ColTotalEnabledMembers, Required: true},
		},
	}
}

// Binding maps logical column keys to header indices.
type Binding map[string]int

// Index returns the header index bound to key, or -1.
func (b Binding) Index(key string) int {
	if i, ok := b[key]; ok {
		return i
	}
	return -1
}

// Cell returns the trimmed cell for key, or "" when unbound or out of range.
func (b Binding) Cell(row []string, key string) string {
	i := b.Index(key)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Bind resolves headers against the table contract.
// It returns the keys of required columns that no header matched.
func (t Table) Bind(headers []string) (Binding, []string) {
	positions := make(map[string]int, len(headers))
	for i, h := range headers {
		key := ToSnakeCase(h)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	binding := make(Binding, len(t.Columns))
	var missing []string
	for _, col := range t.Columns {
		idx := -1
		for _, candidate := range append([]string{col.Key}, col.Aliases...) {
			if i, ok := positions[candidate]; ok {
				idx = i
				break
			}
		}
		if idx < 0 {
			if col.Required {
				missing = append(missing, col.Key)
			}
			continue
		}
		binding[col.Key] = idx
	}
	return binding, missing
}
