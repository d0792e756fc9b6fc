package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/modoterra/logpanel/internal/buildinfo"
	"github.com/modoterra/logpanel/pkg/config"
	"github.com/modoterra/logpanel/pkg/transport/httplogs"
	tuimodel "github.com/modoterra/logpanel/pkg/tui/model"
)

var (
	configPath string
	endpoint   string
	logLevel   string
	logFile    string

	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "logpanel",
	Short:        "View and filter server logs",
	Long:         "logpanel polls a logs endpoint, renders the records and filters them by type, keyword and date range, optionally refreshing live.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	// Assigned here: setup reads rootCmd, which would be an initialization cycle.
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $LOGPANEL_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "logs endpoint URL, overrides client.endpoint")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (the TUI logs nowhere otherwise)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(instancesCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads the config and builds the logger for every command.
func setup(cmd *cobra.Command, _ []string) error {
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.ErrOrStderr()
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = f
	case cmd == rootCmd:
		w = io.Discard
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

	if cmd.Parent() == configCmd {
		return nil
	}

	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath())
	}
	if err != nil {
		return err
	}
	if endpoint != "" {
		cfg.Client.Endpoint = endpoint
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return l, fmt.Errorf("invalid --log-level %q", s)
	}
	return l, nil
}

func newClient() *httplogs.Client {
	return httplogs.NewClient(cfg.Client.Endpoint, cfg.Client.Timeout(), logger)
}

// --- Root: TUI ---

func runTUI(_ *cobra.Command, _ []string) error {
	app := tuimodel.New(tuimodel.Options{
		Source:    newClient(),
		Logger:    logger,
		Defaults:  cfg.Client.Settings(),
		Instances: cfg.Client.Instances,
		MaxRows:   cfg.Client.MaxRows,
		Timeout:   cfg.Client.Timeout(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "logpanel %s (%s) built %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	},
}
