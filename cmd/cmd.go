package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/honganh1206/convodash/api"
	"github.com/honganh1206/convodash/app/lifecycle"
	"github.com/honganh1206/convodash/backend"
	"github.com/honganh1206/convodash/backend/data"
	"github.com/honganh1206/convodash/backend/db"
	"github.com/honganh1206/convodash/config"
	"github.com/honganh1206/convodash/dashboard"
	"github.com/honganh1206/convodash/logging"
	"github.com/honganh1206/convodash/prefs"
	"github.com/honganh1206/convodash/query"
	"github.com/honganh1206/convodash/schema"
	"github.com/honganh1206/convodash/server"
	"github.com/honganh1206/convodash/tui"
	"github.com/honganh1206/convodash/utils"
	"github.com/honganh1206/convodash/view"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	envPath string
	verbose bool
	cfg     *config.Config
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// loadConfig runs before every subcommand.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envPath); err != nil && verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Error loading .env file: %v\n", err)
		fmt.Fprintln(cmd.ErrOrStderr(), "Continuing without environment variables from .env file...")
	}

	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if verbose {
		c.Log.Level = "debug"
	}
	cfg = c
	return nil
}

func newLogger(w io.Writer) *slog.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: w})
}

func RunServer(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
		cfg.Server.Addr = addr
	}
	if upstreamURL, _ := cmd.Flags().GetString("upstream"); cmd.Flags().Changed("upstream") {
		cfg.Upstream.BaseURL = upstreamURL
	}

	logger := newLogger(cmd.ErrOrStderr())

	upstream := server.NewUpstream(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	srv := server.New(upstream, logger)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}

	logger.Info("Starting proxy gateway", "upstream", cfg.Upstream.BaseURL)

	return lifecycle.Run(cmd.Context(), logger, func(ctx context.Context) error {
		return server.Run(ctx, ln, srv, cfg.Server.ShutdownTimeout, logger)
	})
}

func RunBackend(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
		cfg.Backend.Addr = addr
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); cmd.Flags().Changed("dsn") {
		cfg.Backend.Dsn = dsn
	}
	seed, err := cmd.Flags().GetInt("seed")
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr())

	conn, err := db.OpenDB(db.DefaultConfig(cfg.Backend.Dsn), data.Schema)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer conn.Close()

	srv := backend.New(conn, logger)

	if seed > 0 {
		if err := srv.Conversations().Seed(cmd.Context(), seed, time.Now()); err != nil {
			return fmt.Errorf("failed to seed conversations: %w", err)
		}
		logger.Info("Seeded conversations", "count", seed)
	}

	ln, err := net.Listen("tcp", cfg.Backend.Addr)
	if err != nil {
		return err
	}

	logger.Info("Starting development backend", "dsn", cfg.Backend.Dsn)

	return lifecycle.Run(cmd.Context(), logger, func(ctx context.Context) error {
		return server.Run(ctx, ln, srv, cfg.Server.ShutdownTimeout, logger)
	})
}

// applyDashboardFlags copies explicitly set flags over the loaded config.
func applyDashboardFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if v, _ := flags.GetString("proxy-url"); flags.Changed("proxy-url") {
		cfg.Dashboard.ProxyURL = v
	}
	if v, _ := flags.GetString("timezone"); flags.Changed("timezone") {
		cfg.Dashboard.Timezone = v
	}
	if v, _ := flags.GetString("viewer-host"); flags.Changed("viewer-host") {
		cfg.Dashboard.ViewerHost = v
	}
	if v, _ := flags.GetInt("page-size"); flags.Changed("page-size") {
		cfg.Dashboard.PageSize = v
	}
}

func DashboardHandler(cmd *cobra.Command, args []string) error {
	applyDashboardFlags(cmd)

	logFile, err := logging.OpenFile(cfg.Dashboard.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := newLogger(logFile)

	loc, err := cfg.Dashboard.Location()
	if err != nil {
		return err
	}

	pageSize := cfg.Dashboard.PageSize

	var saver tui.PageSizeSaver
	store, err := prefs.Open(cfg.Dashboard.PrefsPath)
	if err != nil {
		logger.Warn("Preferences unavailable", "error", err)
	} else {
		defer store.Close()
		saver = store

		if saved, ok, err := store.PageSize(); err != nil {
			logger.Warn("Failed to read saved page size", "error", err)
		} else if ok && !cmd.Flags().Changed("page-size") {
			pageSize = saved
		}
	}

	if !schema.ValidPageSize(pageSize) {
		logger.Warn("Unsupported page size, using default", "page_size", pageSize)
		pageSize = schema.DefaultPageSize
	}

	client := api.NewClient(cfg.Dashboard.ProxyURL)

	policy := dashboard.LatestIssued
	if lastResolved, _ := cmd.Flags().GetBool("last-resolved"); lastResolved {
		policy = dashboard.LastResolved
	}

	sync := dashboard.New(client, dashboard.Options{
		Location:        loc,
		Policy:          policy,
		Logger:          logger,
		InitialPageSize: pageSize,
	})

	logger.Info("Starting dashboard", "proxy_url", cfg.Dashboard.ProxyURL, "page_size", pageSize, "policy", policy)

	d := tui.New(sync, pageSize, tui.Options{
		View:   view.Options{ViewerHost: cfg.Dashboard.ViewerHost, Location: loc},
		Prefs:  saver,
		Logger: logger,
	})
	return d.Run(cmd.Context())
}

func ConversationListHandler(cmd *cobra.Command, args []string) error {
	applyDashboardFlags(cmd)

	loc, err := cfg.Dashboard.Location()
	if err != nil {
		return err
	}

	f := query.DefaultFilter()
	f.PageSize = cfg.Dashboard.PageSize
	if f.Page, err = cmd.Flags().GetInt("page"); err != nil {
		return err
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if !schema.ValidPageSize(f.PageSize) {
		return fmt.Errorf("page size must be one of %v", schema.PageSizes)
	}
	for _, field := range query.DateFields {
		if f.Dates[field], err = cmd.Flags().GetString(dateFlag(field)); err != nil {
			return err
		}
	}

	params, err := query.Build(f, loc)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.Dashboard.ProxyURL)
	resp, err := client.ListConversations(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	m := view.Derive(false, resp, view.Options{ViewerHost: cfg.Dashboard.ViewerHost, Location: loc})
	out := cmd.OutOrStdout()

	if m.Body == view.BodyEmpty {
		fmt.Fprintln(out, view.EmptyText)
		return nil
	}

	headers := []string{"ID", "Created At", "Updated At", "Viewer"}
	var rows [][]string
	for _, r := range m.Rows {
		rows = append(rows, []string{r.ID, r.CreatedAt, r.UpdatedAt, r.ViewURL})
	}
	if err := utils.RenderTable(out, headers, rows); err != nil {
		return err
	}

	if m.Stats != nil {
		lines := []string{
			fmt.Sprintf("Total Conversations: %d", m.Stats.TotalConversations),
			fmt.Sprintf("Current Page: %s", m.Stats.PageText()),
			fmt.Sprintf("Showing: %s", m.Stats.ShowingText()),
		}
		fmt.Fprint(out, utils.RenderBox("Conversations", lines))
	}

	return nil
}

// dateFlag names the flag for a date bound, e.g. "created-from".
func dateFlag(field query.DateField) string {
	switch field {
	case query.CreatedFrom:
		return "created-from"
	case query.CreatedTo:
		return "created-to"
	case query.UpdatedFrom:
		return "updated-from"
	case query.UpdatedTo:
		return "updated-to"
	}
	return ""
}

func addDashboardFlags(cmd *cobra.Command) {
	cmd.Flags().String("proxy-url", "", "Proxy gateway base URL")
	cmd.Flags().String("timezone", "", "IANA time zone for date filters and timestamps")
	cmd.Flags().String("viewer-host", "", "Host of the conversation viewer")
	cmd.Flags().Int("page-size", schema.DefaultPageSize, fmt.Sprintf("Rows per page %v", schema.PageSizes))
}

func NewCLI() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of convodash",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "convodash version %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the proxy gateway",
		Args:  cobra.ExactArgs(0),
		RunE:  RunServer,
	}
	serveCmd.Flags().String("addr", "", "Listen address")
	serveCmd.Flags().String("upstream", "", "Upstream API base URL")

	backendCmd := &cobra.Command{
		Use:   "backend",
		Short: "Start a local sqlite-backed upstream for development",
		Args:  cobra.ExactArgs(0),
		RunE:  RunBackend,
	}
	backendCmd.Flags().String("addr", "", "Listen address")
	backendCmd.Flags().String("dsn", "", "Path to the sqlite database")
	backendCmd.Flags().Int("seed", 0, "Insert this many generated conversations before serving")

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the terminal dashboard",
		Args:  cobra.ExactArgs(0),
		RunE:  DashboardHandler,
	}
	addDashboardFlags(dashboardCmd)
	dashboardCmd.Flags().Bool("last-resolved", false, "Apply responses in arrival order instead of discarding stale ones")

	conversationsCmd := &cobra.Command{
		Use:   "conversations",
		Short: "Query conversations",
	}

	conversationListCmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of conversations",
		Args:  cobra.ExactArgs(0),
		RunE:  ConversationListHandler,
	}
	addDashboardFlags(conversationListCmd)
	conversationListCmd.Flags().Int("page", 1, "Page number")
	for _, field := range query.DateFields {
		conversationListCmd.Flags().String(dateFlag(field), "", field.Label()+" (YYYY-MM-DD)")
	}
	conversationsCmd.AddCommand(conversationListCmd)

	rootCmd := &cobra.Command{
		Use:   "convodash",
		Short: "Browse conversations through a proxy gateway",
		Long: `convodash lists conversations stored by an upstream chat API.

It runs a small proxy gateway in front of the upstream and a terminal
dashboard that pages and filters conversations through it.`,
		PersistentPreRunE: loadConfig,
		SilenceUsage:      true,
		RunE:              DashboardHandler,
	}
	addDashboardFlags(rootCmd)
	rootCmd.Flags().Bool("last-resolved", false, "Apply responses in arrival order instead of discarding stale ones")

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default ~/.convodash/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "./.env", "Path to .env file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd, serveCmd, backendCmd, dashboardCmd, conversationsCmd, completionCmd)

	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
