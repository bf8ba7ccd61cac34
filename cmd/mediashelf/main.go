package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mediashelf",
		Short: "Movie library manager with movie sets",
		Long: `mediashelf scans movie folders, classifies every file it finds
(videos, extras, trailers, samples, artwork, NFOs) and groups movies into
movie sets.

Features:
  - Kodi NFO support: titles, ratings, watched state, sets, stream details
  - Multi-part (cd1/cd2, part 1/part 2) detection
  - Filterable, sortable movie set table, terminal browser and JSON API
  - Live updates through file watching`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/mediashelf/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newSetsCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newChannelsCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newActivityCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mediashelf %s\n", version)
		},
	}
}
