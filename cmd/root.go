package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gcalevents/internal/calendar"
	"github.com/teemow/gcalevents/internal/config"
	"github.com/teemow/gcalevents/internal/event"
	"github.com/teemow/gcalevents/internal/google"
	"github.com/teemow/gcalevents/internal/instrumentation"
	"github.com/teemow/gcalevents/internal/logging"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	version = v
}

// app carries the state resolved before any subcommand runs.
type app struct {
	configPath string
	calendarID string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
	stderr io.Writer

	// newFactory builds the calendar factory. Tests replace it.
	newFactory func(ctx context.Context, a *app, metrics *instrumentation.Metrics) (*calendar.Factory, error)
}

func newApp() *app {
	return &app{
		stderr:     os.Stderr,
		newFactory: defaultFactory,
	}
}

func defaultFactory(ctx context.Context, a *app, metrics *instrumentation.Metrics) (*calendar.Factory, error) {
	opts, err := google.ClientOptions(ctx, a.cfg.Credentials(), a.logger)
	if err != nil {
		return nil, err
	}
	return calendar.NewFactory(ctx, a.cfg.CalendarID, opts,
		calendar.WithLogger(a.logger),
		calendar.WithMetrics(metrics),
	)
}

// setup loads configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.calendarID != "" {
		cfg.CalendarID = a.calendarID
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = logging.NewTextLogger(a.stderr, cfg.LogLevel)
	slog.SetDefault(a.logger)

	if cfg.Path != "" {
		a.logger.Debug("loaded config", "path", cfg.Path)
	}
	if len(cfg.Unknown) > 0 {
		a.logger.Warn("ignoring unknown config keys", "keys", strings.Join(cfg.Unknown, ","))
	}
	return nil
}

// repository builds an event repository from the resolved configuration.
func (a *app) repository(ctx context.Context, metrics *instrumentation.Metrics) (*event.Repository, error) {
	factory, err := a.newFactory(ctx, a, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return event.NewRepository(factory, a.logger), nil
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gcalevents",
		Short: "Read and write Google Calendar events",
		Long: `gcalevents maps logical event fields (name, startDate, endDateTime, ...)
onto Google Calendar events and performs list, get, create, update and delete
calls against the Calendar API.

It can run as:
  - A standalone CLI tool
  - An MCP (Model Context Protocol) server for AI assistants`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "gcalevents version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ./.gcalevents.toml or ~/.config/gcalevents/config.toml)")
	rootCmd.PersistentFlags().StringVar(&a.calendarID, "calendar", "", "Calendar ID (overrides calendar_id)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newEventsCmd(a))
	rootCmd.AddCommand(newAuthCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())

	return rootCmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
