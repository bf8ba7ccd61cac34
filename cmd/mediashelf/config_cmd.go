package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/config"
	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/ui"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mediashelf configuration",
		Long: `Commands for managing mediashelf configuration.

The config file is stored at: ~/.config/mediashelf/config.toml

Examples:
  mediashelf config init              # Create default config file
  mediashelf config show              # Display current configuration
  mediashelf config test              # Check library folders
  mediashelf config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigTestCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

// configPath is --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var (
		force     bool
		libraries []string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Create a new configuration file with default values.

Edit the file afterwards to set your movie library roots, or pass them
with --library.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			cfg.Libraries.Movies = append(cfg.Libraries.Movies, libraries...)
			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			ui.SuccessMsg(out, "Created config file: %s", path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Edit the config file to set your movie library roots")
			fmt.Fprintln(out, "  2. Run 'mediashelf scan' to build the database")
			fmt.Fprintln(out, "  3. Run 'mediashelf sets' or 'mediashelf browse'")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	cmd.Flags().StringSliceVar(&libraries, "library", nil, "movie library root (repeatable)")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  "Display the effective configuration: file values over defaults, with MEDIASHELF_* environment overrides applied.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintf(out, "# %s does not exist, showing defaults\n", path)
			} else {
				fmt.Fprintf(out, "# %s\n", path)
			}
			fmt.Fprint(out, cfg.ToTOML())
			return nil
		},
	}
}

func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check library folders and notifier connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			ui.Section(out, "Movie libraries")
			if len(cfg.Libraries.Movies) == 0 {
				ui.WarningMsg(out, "No movie libraries configured")
			}
			failed := 0
			for _, dir := range cfg.Libraries.Movies {
				if err := testReadable(dir); err != nil {
					ui.ErrorMsg(out, "%s (%v)", dir, err)
					failed++
					continue
				}
				ui.SuccessMsg(out, "%s", dir)
			}

			mgr := newNotifyManager(cfg, logging.Nop())
			if mgr.NotifierCount() > 0 {
				ui.Section(out, "Notifiers")
				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				defer cancel()
				for name, err := range mgr.PingAll(ctx) {
					if err != nil {
						ui.ErrorMsg(out, "%s (%v)", name, err)
						failed++
						continue
					}
					ui.SuccessMsg(out, "%s", name)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d checks failed", failed)
			}
			return nil
		},
	}
}

func testReadable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	return f.Close()
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
