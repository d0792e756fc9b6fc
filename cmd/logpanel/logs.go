package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/modoterra/logpanel/pkg/core"
	"github.com/modoterra/logpanel/pkg/fetcher"
	"github.com/modoterra/logpanel/pkg/logview"
	"github.com/modoterra/logpanel/pkg/settings"
	tuimodel "github.com/modoterra/logpanel/pkg/tui/model"
)

var (
	fromFlag    string
	toFlag      string
	typeFlag    string
	keywordFlag string
	jsonFlag    bool
	delayFlag   string
)

// --- Fetch ---

var fetchCmd = &cobra.Command{
	Use:   "fetch <instance>",
	Short: "Fetch one date range of log records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := rangeSettings(args[0])
		if err != nil {
			return err
		}
		return runCycle(cmd, s)
	},
}

// --- Tail ---

var tailCmd = &cobra.Command{
	Use:   "tail <instance>",
	Short: "Follow an instance's log records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := rangeSettings(args[0])
		if err != nil {
			return err
		}
		s.ToDate = 0
		s.LiveUpdate = true
		s.UpdateDelay = cfg.Client.Settings().UpdateDelay
		if delayFlag != "" {
			s.UpdateDelay = settings.ParseDelay(delayFlag)
		}
		return runCycle(cmd, s)
	},
}

func init() {
	for _, c := range []*cobra.Command{fetchCmd, tailCmd} {
		c.Flags().StringVar(&fromFlag, "from", "", "start date (unix seconds, 2006-01-02, 2006-01-02 15:04 or RFC 3339)")
		c.Flags().StringVar(&typeFlag, "type", core.SelectAll, "record type: all, error, warn, info, message or misc")
		c.Flags().StringVar(&keywordFlag, "keyword", "", "keep records containing this text (case sensitive)")
		c.Flags().BoolVar(&jsonFlag, "json", false, "print one JSON record per line")
	}
	fetchCmd.Flags().StringVar(&toFlag, "to", "", "end date, open when empty")
	tailCmd.Flags().StringVar(&delayFlag, "delay", "", "polling delay in milliseconds (default client.update_delay_ms)")
}

func rangeSettings(instance string) (core.Settings, error) {
	store := settings.NewStore(core.Settings{}, time.Local)
	store.SetInstance(instance)
	if err := store.SetFromDate(fromFlag); err != nil {
		return core.Settings{}, err
	}
	if err := store.SetToDate(toFlag); err != nil {
		return core.Settings{}, err
	}
	if !validType(typeFlag) {
		return core.Settings{}, fmt.Errorf("invalid --type %q", typeFlag)
	}
	return store.Snapshot(), nil
}

func validType(t string) bool {
	for _, v := range core.FilterTypes {
		if v == t {
			return true
		}
	}
	return false
}

func runCycle(cmd *cobra.Command, s core.Settings) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	crit := logview.Criteria{Type: typeFlag, Keyword: keywordFlag}
	out := cmd.OutOrStdout()
	var werr error
	render := func(records []core.LogRecord) {
		for _, r := range records {
			if !crit.Match(r) || werr != nil {
				continue
			}
			werr = printRecord(out, r)
		}
	}

	runner := fetcher.NewRunner(newClient(), logger)
	err := runner.Run(ctx, s, render)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return err
	}
	return werr
}

func printRecord(w io.Writer, r core.LogRecord) error {
	if jsonFlag {
		return json.NewEncoder(w).Encode(r)
	}
	_, err := fmt.Fprintln(w, tuimodel.RenderRecord(r))
	return err
}

// --- Instances ---

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List the instances served by the endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.Timeout())
		defer cancel()

		names, err := newClient().Instances(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, "no instances")
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return nil
	},
}
