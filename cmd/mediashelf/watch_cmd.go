package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nomadcxx/mediashelf/internal/scanner"
	"github.com/Nomadcxx/mediashelf/internal/ui"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var initialScan bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the database in sync with the library folders",
		Long: `Watch the configured movie libraries and update the database when
movie folders change. A full rescan runs every watch.scan_interval.

Examples:
  mediashelf watch
  mediashelf watch --scan=false   # skip the initial full scan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, initialScan)
		},
	}

	cmd.Flags().BoolVar(&initialScan, "scan", true, "run a full scan before watching")

	return cmd
}

func runWatch(cmd *cobra.Command, initialScan bool) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	lib, err := e.loadLibrary()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := startLive(ctx, e, lib)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if initialScan {
		l.periodic.Tick(ctx)
		if st := l.periodic.Status(); !st.Healthy {
			ui.WarningMsg(out, "Initial scan failed: %s", st.LastError)
		}
	}
	ui.InfoMsg(out, "Watching %d movies in %d sets (Ctrl+C to stop)", len(lib.Movies()), len(lib.MovieSets()))

	<-ctx.Done()
	fmt.Fprintln(out)
	if err := l.Stop(); err != nil {
		return fmt.Errorf("failed to apply pending changes: %w", err)
	}
	return reportSaved(cmd, e, l.Status())
}

func reportSaved(cmd *cobra.Command, e *env, st scanner.Status) error {
	movies, err := e.db.CountMovies()
	if err != nil {
		return err
	}
	ui.SuccessMsg(cmd.OutOrStdout(), "Stopped. %s movies stored, last full scan %s",
		ui.FormatCount(movies), ui.FormatAgo(st.LastSuccess))
	return nil
}
