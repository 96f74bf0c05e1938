package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/spektr-org/pulse/config"
	"github.com/spektr-org/pulse/dashboard"
	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/engine"
	"github.com/spektr-org/pulse/httpapi"
	"github.com/spektr-org/pulse/schema"
)

var version = "dev"

// ============================================================================
// COMMAND TREE
// ============================================================================

type options struct {
	configPath    string
	membersPath   string
	channelsPath  string
	workspacePath string
	start         string
	end           string
	minMessages   int
	retention     []string
	format        string
	outFile       string
	limit         int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "pulse",
		Short:         "Community engagement analytics over workspace exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.membersPath, "members", "", "Member activity CSV (overrides config)")
	root.PersistentFlags().StringVar(&opts.channelsPath, "channels", "", "Channel activity CSV (overrides config)")
	root.PersistentFlags().StringVar(&opts.workspacePath, "workspace", "", "Workspace daily CSV (overrides config)")

	addQueryFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&opts.start, "start", "", "First day of the range (YYYY-MM-DD)")
		cmd.Flags().StringVar(&opts.end, "end", "", "Last day of the range (YYYY-MM-DD)")
		cmd.Flags().IntVar(&opts.minMessages, "min-messages", 0, "Only members with at least this many messages")
		cmd.Flags().StringSliceVar(&opts.retention, "retention", nil, "Only members in these retention groups")
		cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json, pretty, text, csv")
		cmd.Flags().StringVarP(&opts.outFile, "out", "o", "", "Write output to file instead of stdout")
	}

	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print the engagement KPIs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts, reportMetrics)
		},
	}
	chartsCmd := &cobra.Command{
		Use:   "charts",
		Short: "Print the chart data of every dashboard panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts, reportCharts)
		},
	}
	membersCmd := &cobra.Command{
		Use:   "members",
		Short: "Print the most active members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts, reportMembers)
		},
	}
	channelsCmd := &cobra.Command{
		Use:   "channels",
		Short: "Print the busiest channels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts, reportChannels)
		},
	}
	for _, cmd := range []*cobra.Command{metricsCmd, chartsCmd, membersCmd, channelsCmd} {
		addQueryFlags(cmd)
	}
	membersCmd.Flags().IntVar(&opts.limit, "limit", 0, "Rows to print (default: config top_n)")
	channelsCmd.Flags().IntVar(&opts.limit, "limit", 0, "Rows to print (default: config top_n)")

	var addr string
	var watch bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "Listen address")
	serveCmd.Flags().BoolVar(&watch, "watch", false, "Reload when the CSV files change")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pulse %s\n", version)
		},
	}

	root.AddCommand(metricsCmd, chartsCmd, membersCmd, channelsCmd, serveCmd, versionCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ============================================================================
// RUNNERS
// ============================================================================

type report func(w io.Writer, dash *dashboard.Dashboard, q dashboard.Query, opts *options) error

func runReport(cmd *cobra.Command, opts *options, fn report) error {
	switch opts.format {
	case "json", "pretty", "text", "csv":
	default:
		return fmt.Errorf("unknown format %q (want json, pretty, text or csv)", opts.format)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	q, err := buildQuery(opts)
	if err != nil {
		return err
	}

	data, err := dataset.NewLoader().LoadPaths(cfg.Paths())
	if err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}
	dash := dashboard.New(data, dashboardOptions(cfg)...)

	w := cmd.OutOrStdout()
	if opts.outFile != "" {
		f, err := os.Create(opts.outFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.outFile, err)
		}
		defer f.Close()
		w = f
	}

	if err := fn(w, dash, q, opts); err != nil {
		return err
	}
	if opts.outFile != "" {
		log.Printf("📄 %s written to %s", opts.format, opts.outFile)
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config) error {
	server := httpapi.NewServer(dashboardOptions(cfg)...)
	loader := dataset.NewLoader()

	data, err := loader.LoadPaths(cfg.Paths())
	switch {
	case err == nil:
		server.SetDatasets(data)
	case cfg.Watch:
		log.Printf("⚠️ pulse: initial load failed, waiting for files: %v", err)
		server.SetError(err)
	default:
		return fmt.Errorf("load datasets: %w", err)
	}

	if cfg.Watch {
		watcher := dataset.NewWatcher(loader, cfg.Paths(), server.SetDatasets)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.Printf("⚠️ pulse: watcher stopped: %v", err)
			}
		}()
	}

	return server.Run(ctx, cfg.Addr)
}

func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.membersPath != "" {
		cfg.Sources.Members = opts.membersPath
	}
	if opts.channelsPath != "" {
		cfg.Sources.Channels = opts.channelsPath
	}
	if opts.workspacePath != "" {
		cfg.Sources.Workspace = opts.workspacePath
	}
	return cfg, nil
}

func dashboardOptions(cfg config.Config) []dashboard.Option {
	return []dashboard.Option{
		dashboard.WithTopN(cfg.TopN),
		dashboard.WithHistogramBins(cfg.HistogramBins),
		dashboard.WithPalette(cfg.Palette()),
	}
}

func buildQuery(opts *options) (dashboard.Query, error) {
	q := dashboard.Query{MinMessages: opts.minMessages}
	if opts.minMessages < 0 {
		return q, fmt.Errorf("--min-messages must not be negative")
	}

	var start, end time.Time
	var err error
	if opts.start != "" {
		if start, err = schema.ParseDate(opts.start); err != nil {
			return q, fmt.Errorf("--start: %w", err)
		}
	}
	if opts.end != "" {
		if end, err = schema.ParseDate(opts.end); err != nil {
			return q, fmt.Errorf("--end: %w", err)
		}
	}
	if opts.start != "" || opts.end != "" {
		q.Dates = dashboard.DateSelection{start, end}
	}

	for _, raw := range opts.retention {
		g, ok := dataset.ParseRetentionGroup(raw)
		if !ok {
			return q, fmt.Errorf("unknown retention group %q", raw)
		}
		q.Retention = append(q.Retention, g)
	}
	return q, nil
}

// ============================================================================
// REPORTS
// ============================================================================

func reportMetrics(w io.Writer, dash *dashboard.Dashboard, q dashboard.Query, opts *options) error {
	snap := dash.Snapshot(q)
	switch opts.format {
	case "text":
		return writeMetricsText(w, snap)
	case "csv":
		return writeMetricsCSV(w, snap.Metrics)
	default:
		return writeJSON(w, struct {
			Summary dashboard.Summary `json:"summary"`
			Metrics dashboard.Metrics `json:"metrics"`
		}{snap.Summary, snap.Metrics}, opts.format)
	}
}

func reportCharts(w io.Writer, dash *dashboard.Dashboard, q dashboard.Query, opts *options) error {
	charts := dash.Snapshot(q).Charts
	switch opts.format {
	case "csv", "text":
		cw := csv.NewWriter(w)
		if opts.format == "text" {
			cw.Comma = '\t'
		}
		for i, chart := range chartList(charts) {
			if i > 0 {
				_ = cw.Write(nil)
			}
			_ = cw.Write([]string{"# " + chart.Title})
			writeChartCSV(cw, chart)
		}
		cw.Flush()
		return cw.Error()
	default:
		return writeJSON(w, charts, opts.format)
	}
}

func reportMembers(w io.Writer, dash *dashboard.Dashboard, q dashboard.Query, opts *options) error {
	snap := dash.Snapshot(q)
	return writeTable(w, dash.MembersTable(snap.Members, opts.limit), opts.format)
}

func reportChannels(w io.Writer, dash *dashboard.Dashboard, _ dashboard.Query, opts *options) error {
	return writeTable(w, dash.ChannelsTable(opts.limit), opts.format)
}

func chartList(c dashboard.Charts) []*engine.ChartConfig {
	return []*engine.ChartConfig{
		c.Retention, c.DailyActive,
		c.TopMembers, c.ActivityVsRetention, c.MessageDistribution,
		c.TopChannels, c.DeepChannels, c.ChannelActivity,
		c.MessagesPerDay, c.EngagementRatio,
	}
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

func writeMetricsText(w io.Writer, snap dashboard.Snapshot) error {
	m := snap.Metrics
	lines := []string{
		snap.Summary.Text,
		"",
		"Members",
		fmt.Sprintf("  Total members          %s", humanize.Comma(int64(m.TotalMembers))),
		fmt.Sprintf("  Total messages         %s", humanize.Comma(int64(m.TotalMemberMessages))),
		fmt.Sprintf("  Avg messages/member    %s", fmtNum(m.AvgMessagesPerMember)),
		fmt.Sprintf("  Avg days active        %s", fmtNum(m.AvgDaysActive)),
		fmt.Sprintf("  High engagement        %s (%.1f%%)", humanize.Comma(int64(m.HighEngagementCount)), m.PctHighEngagement),
		fmt.Sprintf("  Active posters         %s (%.1f%%)", humanize.Comma(int64(m.MembersWithMessages)), m.PctMembersWithMessages),
		"Channels",
		fmt.Sprintf("  Total channels         %s", humanize.Comma(int64(m.TotalChannels))),
		fmt.Sprintf("  Channel messages       %s", humanize.Comma(int64(m.TotalChannelMessages))),
		fmt.Sprintf("  Avg messages/channel   %.0f", m.AvgMessagesPerChannel),
		fmt.Sprintf("  Total membership       %s", humanize.Comma(int64(m.TotalChannelMembership))),
		"Workspace",
		fmt.Sprintf("  Peak daily active      %s", humanize.Comma(int64(m.PeakDailyActive))),
		fmt.Sprintf("  Peak messages/day      %s", humanize.Comma(int64(m.PeakMessagesPerDay))),
		fmt.Sprintf("  Avg daily active       %.0f", m.AvgDailyActive),
		fmt.Sprintf("  Avg messages/day       %.0f", m.AvgMessagesPerDay),
		fmt.Sprintf("  Messages in period     %s", humanize.Comma(int64(m.TotalMessagesPeriod))),
		fmt.Sprintf("  Avg engagement rate    %.2f%%", m.AvgEngagementRatio*100),
		fmt.Sprintf("  Latest enabled members %s", humanize.Comma(int64(m.LatestEnabledMembers))),
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

func writeMetricsCSV(w io.Writer, m dashboard.Metrics) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	var values map[string]float64
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Metric", "Value"})
	for _, key := range metricKeys {
		_ = cw.Write([]string{key, fmtNum(values[key])})
	}
	cw.Flush()
	return cw.Error()
}

var metricKeys = []string{
	"total_members", "total_member_messages", "avg_messages_per_member",
	"avg_days_active", "high_engagement_count", "pct_high_engagement",
	"members_with_messages", "pct_members_with_messages",
	"total_channels", "total_channel_messages", "avg_messages_per_channel",
	"total_channel_membership",
	"peak_daily_active", "peak_messages_per_day", "avg_daily_active",
	"avg_messages_per_day", "total_messages_period", "avg_engagement_ratio",
	"latest_enabled_members",
}

func writeChartCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	xLabel, yLabel := chart.XAxis, chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	if chart.ChartType == engine.ChartScatter {
		_ = cw.Write([]string{"Series", "Label", xLabel, yLabel})
		for _, s := range chart.Series {
			for _, d := range s.Data {
				_ = cw.Write([]string{s.Name, d.Label, fmtNum(d.X), fmtNum(d.Value)})
			}
		}
		return
	}

	_ = cw.Write([]string{xLabel, yLabel})
	for _, s := range chart.Series {
		for _, d := range s.Data {
			_ = cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
	}
}

func writeTable(w io.Writer, table *engine.TableData, format string) error {
	switch format {
	case "csv", "text":
		cw := csv.NewWriter(w)
		if format == "text" {
			cw.Comma = '\t'
		}
		_ = cw.Write(table.Header())
		for _, row := range table.Rows {
			_ = cw.Write(row)
		}
		if format == "text" && table.Summary != nil {
			summary := make([]string, len(table.Columns))
			summary[0] = table.Summary.Label
			for i, col := range table.Columns {
				if v, ok := table.Summary.Values[col.Key]; ok && i > 0 {
					summary[i] = v
				}
			}
			_ = cw.Write(summary)
		}
		cw.Flush()
		return cw.Error()
	default:
		return writeJSON(w, table, format)
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
