package main

import (
	"fmt"

	"github.com/Nomadcxx/mediashelf/internal/moviesets"
	"github.com/Nomadcxx/mediashelf/internal/tree"
	"github.com/Nomadcxx/mediashelf/internal/ui"
	"github.com/spf13/cobra"
)

type setsOptions struct {
	filter  string
	watched string
	sort    string
	compact bool
}

func newSetsCmd() *cobra.Command {
	var opts setsOptions

	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Show movie sets and their movies",
		Long: `Show the movie set table from the database.

A set is listed when its title or one of its movies matches the filters.

Examples:
  mediashelf sets
  mediashelf sets --filter alien
  mediashelf sets --watched no --sort rating`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSets(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "", "title filter (tolerates small typos)")
	cmd.Flags().StringVarP(&opts.watched, "watched", "w", "", "watched state: yes or no")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "sort order: title, year, rating (default from config)")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "borderless table")

	return cmd
}

func runSets(cmd *cobra.Command, opts setsOptions) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if opts.sort == "" {
		opts.sort = e.cfg.Browse.Sort
	}
	sortBy, err := moviesets.ParseSortBy(opts.sort)
	if err != nil {
		return err
	}

	lib, err := e.loadLibrary()
	if err != nil {
		return err
	}
	p := moviesets.NewProvider(lib, e.log)
	defer p.Close()

	var filters []tree.Filter[moviesets.Node]
	if opts.filter != "" {
		filters = append(filters, moviesets.NewTitleFilter(opts.filter))
	}
	if opts.watched != "" {
		wf := moviesets.ParseWatched(opts.watched)
		if !wf.Active() {
			return fmt.Errorf("invalid --watched %q (use yes or no)", opts.watched)
		}
		filters = append(filters, wf)
	}
	p.SetFilters(filters...)
	p.SetComparator(moviesets.NewComparator(sortBy, e.language()))

	out := cmd.OutOrStdout()
	t := ui.TreeTable(p, moviesets.NewTableFormat())
	if t.Len() == 0 {
		ui.InfoMsg(out, "No movie sets match.")
		return nil
	}
	if opts.compact {
		t.RenderCompact(out)
	} else {
		t.Render(out)
	}
	fmt.Fprintf(out, "%d sets\n", len(p.Children(p.Root())))
	return nil
}
