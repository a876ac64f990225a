package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/opening-times/internal/annotator"
	"github.com/username/opening-times/internal/calendar"
	"github.com/username/opening-times/internal/closures"
	"github.com/username/opening-times/internal/config"
	"github.com/username/opening-times/internal/daemon"
	"github.com/username/opening-times/internal/render"
	"github.com/username/opening-times/pkg/dateutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opening-times",
		Short: "Opening times closure annotator",
		Long:  "Mark holiday and bank holiday closures for the current week on a storefront opening-times table",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(annotateCmd())
	rootCmd.AddCommand(closuresCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func annotateCmd() *cobra.Command {
	var dryRun bool
	var nowFlag string

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Mark this week's closures on the configured page",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := initializeAnnotator()
			if err != nil {
				return err
			}

			now, err := parseNow(nowFlag, cfg.Closures.GetLocation())
			if err != nil {
				return err
			}

			result, err := a.Run(cmd.Context(), now, dryRun)
			if err != nil {
				return err
			}

			if !result.SectionFound {
				fmt.Fprintln(out, "No opening-times section found, page left untouched")
				return nil
			}

			printResult(result)
			if result.Written {
				fmt.Fprintf(out, "\n✅ Written to %s\n", result.Output)
			} else {
				fmt.Fprintln(out, "\n[DRY RUN] Page not written")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview closures without writing the page")
	cmd.Flags().StringVar(&nowFlag, "now", "", "Evaluate as of this date (YYYY-MM-DD) instead of today")

	return cmd
}

func closuresCmd() *cobra.Command {
	var nowFlag string

	cmd := &cobra.Command{
		Use:   "closures",
		Short: "List the closures that apply this week",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := initializeAnnotator()
			if err != nil {
				return err
			}

			now, err := parseNow(nowFlag, cfg.Closures.GetLocation())
			if err != nil {
				return err
			}

			result, err := a.Run(cmd.Context(), now, true)
			if err != nil {
				return err
			}
			if !result.SectionFound {
				fmt.Fprintln(out, "No opening-times section found")
				return nil
			}

			week := dateutil.StartOfWeek(now)
			fmt.Fprintf(out, "📅 Closures (%s window, week of %s)\n", result.Config.Window, week.Format(dateutil.ISODate))
			fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
			if len(result.Closures) == 0 {
				fmt.Fprintln(out, "  none")
				return nil
			}
			for _, name := range dateutil.WeekdayNames {
				wc, ok := result.Closures[name]
				if !ok {
					continue
				}
				fmt.Fprintf(out, "  %-10s | %s\n", name, render.Tooltip(wc))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&nowFlag, "now", "", "Evaluate as of this date (YYYY-MM-DD) instead of today")

	return cmd
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Re-render the page every day at the configured time",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := initializeAnnotator()
			if err != nil {
				return err
			}

			hour, minute := cfg.Daemon.GetDailyTime()
			d := daemon.NewScheduledDaemon(a, hour, minute, cfg.Closures.GetLocation(), logger)
			return d.Start()
		},
	}
}

func initializeAnnotator() (*annotator.Annotator, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ExpandEnvVars()

	var sources []closures.HolidaySource
	bh := cfg.BankHolidays

	switch {
	case bh.FeedURL != "" && bh.File != "":
		logger.Info("Using bank holiday feed with file fallback",
			zap.String("feed_url", bh.FeedURL),
			zap.String("file", bh.File))
		feed := calendar.NewGovUKCalendar(bh.FeedURL, bh.Division, bh.GetCacheTTL(), logger)
		composite := calendar.NewCompositeCalendar(feed, calendar.NewFileCalendar(bh.File, logger), logger)
		if err := composite.LoadFallback(); err != nil {
			logger.Warn("Failed to load fallback calendar, continuing with feed only",
				zap.Error(err))
		}
		sources = append(sources, composite)

	case bh.FeedURL != "":
		logger.Info("Using bank holiday feed", zap.String("feed_url", bh.FeedURL))
		sources = append(sources, calendar.NewGovUKCalendar(bh.FeedURL, bh.Division, bh.GetCacheTTL(), logger))

	case bh.File != "":
		logger.Info("Using bank holiday file", zap.String("file", bh.File))
		sources = append(sources, calendar.NewFileCalendar(bh.File, logger))
	}

	resolver := closures.NewResolver(logger, sources...)
	return annotator.NewAnnotator(cfg, resolver, logger), cfg, nil
}

// parseNow resolves --now to midnight in the closures timezone
func parseNow(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return dateutil.Today(loc), nil
	}
	now, err := dateutil.ParseISODate(value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return now, nil
}

func printResult(result *annotator.Result) {
	fmt.Fprintln(out, "📊 Opening times")
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
	for _, row := range result.Rows {
		marker := " "
		if _, ok := result.Closures[row.Day]; ok && row.HasTimes {
			marker = "✖"
		}
		fmt.Fprintf(out, "  %s %-10s | %-7s | %-7s\n", marker, row.Day, row.Open, row.Close)
	}
	if result.Note != "" {
		fmt.Fprintf(out, "\n  %s\n", result.Note)
	}
	fmt.Fprintf(out, "\n  Rows marked closed: %d\n", result.RowsMarked)
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,   // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
