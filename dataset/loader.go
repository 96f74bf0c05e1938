package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/spektr-org/pulse/schema"
)

// ============================================================================
// LOADER — Parses the three CSV exports into normalized Datasets
// ============================================================================
// Consumer reads the CSVs from wherever they live (disk, object store, upload).
// The loader turns raw bytes into typed rows using the fixed column contracts.
//
// Recovery policy:
//   - numeric cells that do not parse become 0
//   - display names fall back display_name → name → "Unknown Member"
//   - a bad workspace date fails the whole load
//   - rows without an identifier are dropped
// ============================================================================

// Sources holds the raw bytes of the three exports.
type Sources struct {
	Members   []byte
	Channels  []byte
	Workspace []byte
}

var (
	errEmptySource = errors.New("source is empty")
	errNoPath      = errors.New("no path configured")
)

// Load parses all three sources. It is all-or-nothing: any error yields nil.
func Load(src Sources) (*Datasets, error) {
	members, err := ParseMembers(src.Members)
	if err != nil {
		return nil, err
	}
	channels, err := ParseChannels(src.Channels)
	if err != nil {
		return nil, err
	}
	workspace, err := ParseWorkspace(src.Workspace)
	if err != nil {
		return nil, err
	}

	data := &Datasets{
		members:   members,
		channels:  channels,
		workspace: normalizeSeries(workspace),
	}
	log.Printf("📂 pulse: loaded %d members, %d channels, %d workspace days",
		len(data.members), len(data.channels), len(data.workspace))
	return data, nil
}

// ParseMembers parses the member export.
func ParseMembers(data []byte) ([]MemberRecord, error) {
	binding, rows, err := readTable(data, schema.Members())
	if err != nil {
		return nil, err
	}

	members := make([]MemberRecord, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		id := binding.Cell(row, schema.ColUserID)
		if schema.IsNull(id) {
			dropped++
			continue
		}
		days := schema.ParseCount(binding.Cell(row, schema.ColDaysActive))
		members = append(members, MemberRecord{
			UserID:         id,
			DisplayName:    firstNonBlank(binding.Cell(row, schema.ColDisplayName), binding.Cell(row, schema.ColName), UnknownMember),
			MessagesPosted: schema.ParseCount(binding.Cell(row, schema.ColMessagesPosted)),
			DaysActive:     days,
			HighEngagement: schema.ParseFlag(binding.Cell(row, schema.ColHighEngagement)),
			RetentionGroup: Classify(days),
		})
	}
	if dropped > 0 {
		log.Printf("⚠️ pulse: dropped %d member rows without user_id", dropped)
	}
	return members, nil
}

// ParseChannels parses the channel export.
func ParseChannels(data []byte) ([]ChannelRecord, error) {
	binding, rows, err := readTable(data, schema.Channels())
	if err != nil {
		return nil, err
	}

	channels := make([]ChannelRecord, 0, len(rows))
	for _, row := range rows {
		id := binding.Cell(row, schema.ColChannel)
		if schema.IsNull(id) {
			continue
		}
		membership := schema.ParseCount(binding.Cell(row, schema.ColTotalMembership))
		channels = append(channels, ChannelRecord{
			ChannelID:          id,
			Name:               firstNonBlank(binding.Cell(row, schema.ColName), id),
			MessagesPosted:     schema.ParseCount(binding.Cell(row, schema.ColMessagesPosted)),
			TotalMembership:    membership,
			AvgMessagesPerUser: schema.ParseRatio(binding.Cell(row, schema.ColAvgMessagesPerUser)),
			MembersWhoPosted:   min(schema.ParseCount(binding.Cell(row, schema.ColMembersWhoPosted)), membership),
		})
	}
	return channels, nil
}

// ParseWorkspace parses the daily workspace export. Rows are returned in file
// order; Load sorts and de-duplicates them.
func ParseWorkspace(data []byte) ([]WorkspaceDay, error) {
	binding, rows, err := readTable(data, schema.Workspace())
	if err != nil {
		return nil, err
	}

	days := make([]WorkspaceDay, 0, len(rows))
	for i, row := range rows {
		raw := binding.Cell(row, schema.ColDate)
		date, err := schema.ParseDate(raw)
		if err != nil {
			return nil, &MalformedValueError{
				Source: schema.SourceWorkspace,
				Column: schema.ColDate,
				Row:    i + 1,
				Value:  raw,
				Err:    err,
			}
		}
		days = append(days, WorkspaceDay{
			Date:                date,
			DailyActivePeople:   schema.ParseCount(binding.Cell(row, schema.ColDailyActivePeople)),
			MessagesPosted:      schema.ParseCount(binding.Cell(row, schema.ColMessagesPosted)),
			EngagementRatio:     schema.ParseRatio(binding.Cell(row, schema.ColEngagementRatio)),
			TotalEnabledMembers: schema.ParseCount(binding.Cell(row, schema.ColTotalEnabledMembers)),
		})
	}
	return days, nil
}

// readTable reads the header, binds it against the contract, and returns
// the data rows. Rows the CSV reader rejects are skipped.
func readTable(data []byte, table schema.Table) (schema.Binding, [][]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, &MissingInputError{Source: table.Source, Err: errEmptySource}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, &MissingInputError{Source: table.Source, Err: fmt.Errorf("failed to read CSV headers: %w", err)}
	}

	binding, missing := table.Bind(headers)
	if len(missing) > 0 {
		return nil, nil, &MissingInputError{Source: table.Source, Columns: missing}
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if isBlankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return binding, rows, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if !schema.IsNull(cell) {
			return false
		}
	}
	return true
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if !schema.IsNull(v) {
			return v
		}
	}
	return ""
}
