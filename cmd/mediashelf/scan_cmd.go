package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/scanner"
	"github.com/Nomadcxx/mediashelf/internal/ui"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var showStats bool

	cmd := &cobra.Command{
		Use:   "scan [library-root...]",
		Short: "Scan movie libraries into the database",
		Long: `Scan movie library roots and store movies, movie sets and their files.

Without arguments the roots from the config file are scanned. Movies that
disappeared from a scanned root are removed from the database.

Examples:
  mediashelf scan                 # Scan configured libraries
  mediashelf scan /srv/movies     # Scan a specific root`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, showStats)
		},
	}

	cmd.Flags().BoolVar(&showStats, "stats", true, "Show database stats after scan")

	return cmd
}

func runScan(cmd *cobra.Command, roots []string, showStats bool) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if len(roots) == 0 {
		roots = e.cfg.Libraries.Movies
	}
	if len(roots) == 0 {
		return fmt.Errorf("no library roots: pass one or set libraries.movies in the config")
	}

	lib, err := e.loadLibrary()
	if err != nil {
		return err
	}

	journal, err := e.openJournal()
	if err != nil {
		return err
	}
	if journal != nil {
		detach := journal.Attach(lib, func(err error) {
			e.log.Warn("scan", "Failed to journal change", logging.F("error", err.Error()))
		})
		defer detach()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	sc := scanner.New(scanner.WithLogger(e.log))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("invalid root %s: %w", root, err)
		}
		fmt.Fprintf(out, "Scanning %s\n", ui.Path(abs))

		res, err := sc.Scan(ctx, abs)
		if err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			return fmt.Errorf("scan %s: %w", abs, err)
		}
		stats := scanner.Apply(lib, res)

		ui.SuccessMsg(out, "%s files in %s: %d movies (%d new, %d removed), %d sets",
			ui.FormatCount(res.FilesScanned), ui.FormatDuration(res.Duration),
			len(res.Movies), stats.MoviesAdded, stats.MoviesRemoved, len(res.MovieSets))
		for _, scanErr := range res.Errors {
			ui.WarningMsg(out, "%v", scanErr)
		}
	}

	if err := e.db.SaveLibrary(lib); err != nil {
		return fmt.Errorf("failed to save library: %w", err)
	}
	e.log.Info("scan", "Library saved", logging.F("movies", len(lib.Movies())), logging.F("sets", len(lib.MovieSets())))

	if showStats {
		return printStats(cmd, e)
	}
	return nil
}

func printStats(cmd *cobra.Command, e *env) error {
	stats, err := e.db.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	out := cmd.OutOrStdout()
	ui.Section(out, "Database")
	ui.KeyValue(out, "Path", e.db.Path())
	ui.KeyValue(out, "Movies", ui.FormatCount(stats.Movies))
	ui.KeyValue(out, "Movie sets", ui.FormatCount(stats.MovieSets))
	ui.KeyValue(out, "Media files", ui.FormatCount(stats.MediaFiles))
	for _, typ := range []string{"VIDEO", "VIDEO_EXTRA", "TRAILER", "SAMPLE", "NFO", "SUBTITLE"} {
		if n := stats.FilesByType[typ]; n > 0 {
			ui.KeyValue(out, "  "+typ, ui.FormatCount(n))
		}
	}
	return nil
}
