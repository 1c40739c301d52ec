package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/econcal/internal/collector"
	"github.com/pfrederiksen/econcal/internal/config"
	"github.com/pfrederiksen/econcal/internal/filter"
	"github.com/pfrederiksen/econcal/internal/logger"
	"github.com/pfrederiksen/econcal/internal/metrics"
	"github.com/pfrederiksen/econcal/internal/scraper"
	"github.com/pfrederiksen/econcal/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitWeeksSkipped means the run finished under on_error=skip with failed weeks
	ExitWeeksSkipped = 2
)

// flag name -> config key
var flagKeys = map[string]string{
	"save-to-file":      "save_to_file",
	"current-week-only": "current_week_only",
	"year-from":         "year_from",
	"year-to":           "year_to",
	"output":            "output",
	"format":            "format",
	"sqlite":            "sqlite_path",
	"url-template":      "url_template",
	"timeout":           "timeout",
	"on-error":          "on_error",
	"workers":           "workers",
	"currency":          "currency",
	"impact":            "impact",
	"event-kind":        "event_kind",
	"metrics-file":      "metrics_file",
	"log-level":         "log.level",
	"log-file":          "log.file",
	"log-json":          "log.json",
}

// app carries the per-invocation state shared by the command and its tests
type app struct {
	v             *viper.Viper
	configFile    string
	previewFormat string

	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	// httpClient overrides the scraper's client when set
	httpClient *http.Client

	exitCode int
}

func newApp() *app {
	v := viper.New()
	config.SetDefaults(v)
	return &app{
		v:      v,
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "econcal",
		Short: "Scrape the weekly economic calendar into a table",
		Long: `A CLI tool to download economic-calendar events week by week.
Fetches the current ISO week or every week in a year range, extracts the
embedded calendar data and writes it as CSV, JSON or iCalendar, or prints a
preview of the first and last rows.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&a.configFile, "config", "", "Config file (yaml, toml or json)")
	flags.StringVar(&a.previewFormat, "preview-format", "text", "Preview format when not saving: text or json")

	flags.Bool("save-to-file", true, "Write the table to --output instead of printing a preview")
	flags.Bool("current-week-only", true, "Fetch only the current ISO week")
	flags.Int("year-from", 2018, "First year of the historical range (inclusive)")
	flags.Int("year-to", 2022, "Last year of the historical range (inclusive)")
	flags.String("output", storage.DefaultCSVPath, "Output file path")
	flags.String("format", string(storage.FormatCSV), "Output file format: csv, json or ics")
	flags.String("sqlite", "", "Also append the run to this SQLite database")
	flags.String("url-template", scraper.DefaultURLTemplate, "Calendar URL with a "+scraper.WeekPlaceholder+" placeholder")
	flags.Duration("timeout", scraper.Timeout, "Per-request HTTP timeout")
	flags.String("on-error", string(collector.PolicyAbort), "Failed week handling: abort or skip")
	flags.Int("workers", 1, "Weeks fetched concurrently")
	flags.StringSlice("currency", nil, "Keep only these currency codes (comma-separated)")
	flags.StringSlice("impact", nil, "Keep only these impact levels (comma-separated)")
	flags.String("event-kind", "", "Keep only all-day or timed events")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-file", "", "Also write JSON logs to this rotated file")
	flags.Bool("log-json", false, "Log JSON lines instead of console output")

	for name, key := range flagKeys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}

	return cmd
}

// run is the main command logic
func (a *app) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	previewFormat := OutputFormat(strings.ToLower(a.previewFormat))
	if previewFormat != FormatText && previewFormat != FormatJSON {
		return fmt.Errorf("invalid preview format: %s (must be 'text' or 'json')", a.previewFormat)
	}

	runID := uuid.NewString()
	log := logger.NewWithConfig(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		JSON:   cfg.Log.JSON,
		Output: a.stderr,
		File:   cfg.Log.File,
	}).With(logger.Fields{"run_id": runID})
	logger.SetDefault(log)

	format, err := storage.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	policy, err := collector.ParseErrorPolicy(cfg.OnError)
	if err != nil {
		return err
	}

	opts := []scraper.Option{
		scraper.WithURLTemplate(cfg.URLTemplate),
		scraper.WithTimeout(cfg.Timeout),
		scraper.WithLogger(log),
	}
	if a.httpClient != nil {
		opts = append(opts, scraper.WithHTTPClient(a.httpClient))
	}
	sc := scraper.New(opts...)

	m := metrics.New()
	col := collector.New(sc, collector.Options{
		Mode:     cfg.Mode(),
		YearFrom: cfg.YearFrom,
		YearTo:   cfg.YearTo,
		OnError:  policy,
		Workers:  cfg.Workers,
		RunID:    runID,
		Now:      a.now,
	}, m, log)

	result, err := col.Run(ctx)
	if err != nil {
		a.writeMetrics(cfg, m, log)
		return fmt.Errorf("collecting events: %w", err)
	}

	f := filter.NewFilter()
	f.Currencies = cfg.Currencies
	f.Impacts = cfg.Impacts
	f.AllDay = cfg.AllDay()
	table := f.Apply(result.Table)
	if !f.IsEmpty() {
		log.Info("applied filter", logger.Fields{
			"filter": f.String(),
			"before": result.Table.Len(),
			"after":  table.Len(),
		})
	}

	dest := ""
	if cfg.SaveToFile {
		sink, err := storage.NewFileSink(format, cfg.Output)
		if err != nil {
			return err
		}
		if ics, ok := sink.(*storage.ICSFile); ok {
			ics.Now = a.now
		}
		if err := sink.Save(ctx, table); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.Output, err)
		}
		dest = cfg.Output
		log.Info("wrote output", logger.Fields{"path": cfg.Output, "format": string(format), "rows": table.Len()})
	} else {
		if err := WritePreview(a.stdout, runID, table, previewFormat, a.now()); err != nil {
			return fmt.Errorf("writing preview: %w", err)
		}
	}

	if cfg.SQLitePath != "" {
		store, err := storage.NewSQLiteStore(cfg.SQLitePath, runID)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		defer store.Close() // nolint:errcheck
		if err := store.Save(ctx, table); err != nil {
			return fmt.Errorf("saving to sqlite: %w", err)
		}
		log.Info("saved run to sqlite", logger.Fields{"path": cfg.SQLitePath, "rows": table.Len()})
	}

	a.writeMetrics(cfg, m, log)

	if cfg.SaveToFile {
		WriteSummary(a.stderr, result, table.Len(), dest)
	}

	if len(result.Failed) > 0 {
		a.exitCode = ExitWeeksSkipped
	}
	return nil
}

func (a *app) writeMetrics(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn("failed to write metrics file", logger.Fields{"path": cfg.MetricsFile, "error": err.Error()})
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
	stop()
	os.Exit(a.exitCode)
}
