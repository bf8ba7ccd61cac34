package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/Nomadcxx/mediashelf/internal/scanner"
	"github.com/Nomadcxx/mediashelf/internal/ui"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <path>...",
		Short: "Classify files or show how a movie folder is read",
		Long: `Show the file type, stacking and NFO details mediashelf derives.

A file (existing or not) is classified by its path alone. An existing
folder is read like a movie folder during a scan.

Examples:
  mediashelf inspect "/movies/Alien (1979)/Alien.cd1.mkv"
  mediashelf inspect "/movies/Alien (1979)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			for _, path := range args {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if err := inspectDir(cmd, path); err != nil {
						return err
					}
					continue
				}
				files = append(files, path)
			}
			if len(files) > 0 {
				inspectFiles(cmd, files...)
			}
			return nil
		},
	}
	return cmd
}

func inspectFiles(cmd *cobra.Command, paths ...string) {
	t := ui.NewTable("File", "Type", "Part", "Without part")
	for _, p := range paths {
		mf := media.NewMediaFile(p)
		if mf.Type == media.FileTypeVideo {
			mf.DetectStacking()
		}
		part := ""
		if mf.IsStacked() {
			part = mf.StackingMarker
		}
		t.AddRow(mf.Filename, string(mf.Type), part, mf.FilenameWithoutStacking())
	}
	t.Render(cmd.OutOrStdout())
}

func inspectDir(cmd *cobra.Command, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	sc := scanner.New()
	m, setName, err := sc.ScanMovieDir(cmd.Context(), filepath.Dir(abs), abs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if m == nil {
		ui.WarningMsg(out, "%s holds no main video", abs)
		return nil
	}

	ui.Section(out, m.Title)
	ui.KeyValue(out, "Year", yearString(m.Year))
	ui.KeyValue(out, "Folder", m.Path)
	if setName != "" {
		ui.KeyValue(out, "Movie set", setName)
	}
	if m.Rating.Value > 0 {
		ui.KeyValue(out, "Rating", strconv.FormatFloat(float64(m.Rating.Value), 'f', 1, 32))
	}
	ui.KeyValue(out, "Watched", ui.CheckMark(m.Watched))
	ui.KeyValue(out, "Format", m.VideoFormat())
	ui.KeyValue(out, "Size", ui.FormatBytes(m.VideoFilesize()))
	fmt.Fprintln(out)

	t := ui.NewTable("File", "Type", "Part", "Size", "Audio")
	for _, mf := range m.MediaFiles {
		part := ""
		if mf.IsStacked() {
			part = mf.StackingMarker
		}
		audio := ""
		if ch := mf.MaxAudioChannels(); ch > 0 {
			audio = strconv.Itoa(ch) + " ch"
		}
		rel, err := filepath.Rel(m.Path, mf.Path)
		if err != nil {
			rel = mf.Filename
		}
		t.AddRow(rel, string(mf.Type), part, ui.FormatBytes(mf.Filesize), audio)
	}
	t.Render(out)
	return nil
}

func yearString(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}
