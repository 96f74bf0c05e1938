// Package pulse turns community workspace exports into engagement metrics
// and render-ready chart data.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/pulse/dashboard"
//	    "github.com/spektr-org/pulse/dataset"
//	)
//
//	data, err := dataset.NewLoader().LoadPaths(dataset.Paths{
//	    Members:   "member_cleaned_from_export.csv",
//	    Channels:  "channel_cleaned_from_export.csv",
//	    Workspace: "workspace_daily_from_export.csv",
//	})
//	snap := dashboard.New(data).Snapshot(dashboard.Query{MinMessages: 1})
//
// Loading is memoized by file content. Filters and metrics are pure
// functions of an immutable snapshot; the engine package does the grouping
// and aggregation, and cmd/pulse and httpapi are thin hosts on top.
package pulse
