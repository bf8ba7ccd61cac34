package main

import (
	"fmt"

	"github.com/Nomadcxx/mediashelf/internal/moviesets"
	"github.com/Nomadcxx/mediashelf/internal/tree"
	"github.com/Nomadcxx/mediashelf/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	var (
		filter  string
		watched string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse movie sets interactively",
		Long: `Open the terminal browser over the movie sets in the database.

Keys: ↑/↓ move, ←/→ fold sets, / filter titles, s cycle sort order,
r reload, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(filter, watched)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "initial title filter")
	cmd.Flags().StringVarP(&watched, "watched", "w", "", "only watched (yes) or unwatched (no) movies")

	return cmd
}

func runBrowse(filter, watched string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sortBy, err := moviesets.ParseSortBy(e.cfg.Browse.Sort)
	if err != nil {
		return err
	}

	var provider *moviesets.Provider
	load := func() (tree.DataProvider[moviesets.Node], error) {
		lib, err := e.loadLibrary()
		if err != nil {
			return nil, err
		}
		if provider != nil {
			provider.Close()
		}
		provider = moviesets.NewProvider(lib, e.log)
		return provider, nil
	}
	defer func() {
		if provider != nil {
			provider.Close()
		}
	}()

	opts := []tui.Option{
		tui.WithSort(sortBy, e.language()),
		tui.WithQuery(filter),
	}
	if watched != "" {
		wf := moviesets.ParseWatched(watched)
		if !wf.Active() {
			return fmt.Errorf("invalid --watched %q (use yes or no)", watched)
		}
		opts = append(opts, tui.WithFilters(wf))
	}

	m := tui.New(load, opts...)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	}
	return err
}
