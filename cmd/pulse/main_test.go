package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	membersCSV = `user_id,display_name,messages_posted,days_active,high_engagement
U1,Ada,10,3,1
U2,Linus,0,40,0
`
	channelsCSV = `channel,name,messages_posted,total_membership,avg_messages_per_user,members_who_posted
C1,general,"1,500",100,15,100
C2,random,500,80,10,50
`
	workspaceCSV = `date,daily_active_people,messages_posted,engagement_ratio,total_enabled_members
2024-01-01,10,100,0.2,50
2024-01-02,20,200,0.4,55
`
)

func writeExports(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"members.csv":   membersCSV,
		"channels.csv":  channelsCSV,
		"workspace.csv": workspaceCSV,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return []string{
		"--members", filepath.Join(dir, "members.csv"),
		"--channels", filepath.Join(dir, "channels.csv"),
		"--workspace", filepath.Join(dir, "workspace.csv"),
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMetricsJSON(t *testing.T) {
	out, err := run(t, append([]string{"metrics"}, writeExports(t)...)...)
	require.NoError(t, err)

	var resp struct {
		Metrics map[string]float64 `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2.0, resp.Metrics["total_members"])
	assert.Equal(t, 5.0, resp.Metrics["avg_messages_per_member"])
	assert.Equal(t, 50.0, resp.Metrics["pct_members_with_messages"])
	assert.Equal(t, 1000.0, resp.Metrics["avg_messages_per_channel"])
	assert.Equal(t, 55.0, resp.Metrics["latest_enabled_members"])
}

func TestMetricsFiltered(t *testing.T) {
	args := append([]string{"metrics", "--start", "2024-01-01", "--end", "2024-01-01", "--min-messages", "1"}, writeExports(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)

	var resp struct {
		Metrics map[string]float64 `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1.0, resp.Metrics["total_members"])
	assert.Equal(t, 10.0, resp.Metrics["peak_daily_active"])
	assert.Equal(t, 50.0, resp.Metrics["latest_enabled_members"])
}

func TestMetricsCSV(t *testing.T) {
	out, err := run(t, append([]string{"metrics", "-f", "csv"}, writeExports(t)...)...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 20)
	assert.Equal(t, "Metric,Value", lines[0])
	assert.Equal(t, "total_members,2", lines[1])
	assert.Contains(t, lines, "avg_engagement_ratio,0.30")
}

func TestMetricsText(t *testing.T) {
	out, err := run(t, append([]string{"metrics", "-f", "text"}, writeExports(t)...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Total channel")
	assert.Contains(t, out, "Channel messages       2,000")
	assert.Contains(t, out, "Avg engagement rate    30.00%")
}

func TestMembersTableCSV(t *testing.T) {
	out, err := run(t, append([]string{"members", "-f", "csv", "--limit", "1"}, writeExports(t)...)...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Display Name,Messages Posted,Days Active,Retention Group", lines[0])
	assert.Equal(t, "Ada,10,3,0-5 days", lines[1])
}

func TestMembersRetentionFilter(t *testing.T) {
	args := append([]string{"members", "-f", "csv", "--retention", "30+ days"}, writeExports(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "Linus,0,40,30+ days")
	assert.NotContains(t, out, "Ada")
}

func TestChartsJSON(t *testing.T) {
	out, err := run(t, append([]string{"charts"}, writeExports(t)...)...)
	require.NoError(t, err)

	var charts map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &charts))
	assert.Len(t, charts, 10)
	assert.Contains(t, charts, "retention")
}

func TestChartsCSV(t *testing.T) {
	out, err := run(t, append([]string{"charts", "-f", "csv"}, writeExports(t)...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "# Member Retention Distribution")
	assert.Contains(t, out, "0-5 days,1")
	assert.Contains(t, out, "Series,Label,Days Active,Messages Posted")
}

func TestOutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	out, err := run(t, append([]string{"channels", "--out", path}, writeExports(t)...)...)
	require.NoError(t, err)
	assert.Empty(t, out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"general"`)
}

func TestErrors(t *testing.T) {
	exports := writeExports(t)

	_, err := run(t, append([]string{"metrics", "-f", "xml"}, exports...)...)
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, append([]string{"metrics", "--start", "someday"}, exports...)...)
	assert.ErrorContains(t, err, "--start")

	_, err = run(t, append([]string{"metrics", "--retention", "forever"}, exports...)...)
	assert.ErrorContains(t, err, "retention")

	missing := append([]string{}, exports...)
	missing[1] = filepath.Join(t.TempDir(), "absent.csv")
	_, err = run(t, append([]string{"metrics"}, missing...)...)
	assert.ErrorContains(t, err, "load datasets")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pulse dev\n", out)
}

func TestFmtNum(t *testing.T) {
	assert.Equal(t, "42", fmtNum(42))
	assert.Equal(t, "3.14", fmtNum(3.14159))
	assert.Equal(t, "0", fmtNum(0))
}
