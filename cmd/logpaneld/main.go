package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coreos/go-systemd/v22/activation"
	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/modoterra/logpanel/internal/buildinfo"
	"github.com/modoterra/logpanel/pkg/config"
	"github.com/modoterra/logpanel/pkg/daemon"
)

var (
	configPath string
	listenAddr string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "logpaneld",
	Short:        "Serve tailed logs to logpanel",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "logpaneld %s (%s) built %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default $LOGPANEL_CONFIG or the user config dir)")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides server.listen")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return fmt.Errorf("invalid --log-level %q", logLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("config validation", "err", e)
		}
		return fmt.Errorf("%s: %d error(s)", path, len(errs))
	}
	logger.Info("config loaded", "path", path, "instances", len(cfg.Server.Instances))

	d, err := daemon.New(cfg.Server, logger)
	if err != nil {
		return err
	}

	ln, err := listener(cfg.Server.Listen, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.OnReady(func() {
		if ok, err := sddaemon.SdNotify(false, sddaemon.SdNotifyReady); err != nil {
			logger.Warn("sd_notify failed", "err", err)
		} else if ok {
			logger.Debug("notified systemd")
		}
	})

	logger.Info("starting logpaneld", "version", buildinfo.Version)
	err = d.Run(ctx, ln)
	sddaemon.SdNotify(false, sddaemon.SdNotifyStopping)
	logger.Info("shutting down")
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// listener prefers a systemd-activated socket over listening itself.
func listener(addr string, logger *slog.Logger) (net.Listener, error) {
	lns, err := activation.Listeners()
	if err != nil {
		return nil, fmt.Errorf("socket activation: %w", err)
	}
	for _, ln := range lns {
		if ln != nil {
			logger.Info("using activated socket", "addr", ln.Addr().String())
			return ln, nil
		}
	}

	if listenAddr != "" {
		addr = listenAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}
