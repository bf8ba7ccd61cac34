package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/api"
	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Long: `Start the HTTP API server.

Endpoints:
  GET /health
  GET /api/v1/moviesets?filter=&watched=&sort=
  GET /api/v1/tree?filter=&watched=&sort=
  GET /api/v1/movies/{id}
  GET /api/v1/stats
  GET /api/v1/classify?path=
  GET /api/v1/channels?value=
  GET /api/v1/activity?limit=   (when watch.activity_days > 0)

Examples:
  mediashelf serve                      # Listen on server.addr from config
  mediashelf serve --addr :9000 --watch # Also keep the library live`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Watch library folders while serving")

	return cmd
}

func runServe(cmd *cobra.Command, addr string, watch bool) error {
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

	opts := []api.Option{
		api.WithDatabase(e.db),
		api.WithLogger(e.log),
		api.WithLanguage(e.language()),
	}
	var l *live
	if watch {
		l, err = startLive(ctx, e, lib)
		if err != nil {
			return err
		}
		opts = append(opts, api.WithScanStatus(l.Status))
	}
	journal, err := e.openJournal()
	if err != nil {
		return err
	}
	if journal != nil {
		opts = append(opts, api.WithActivity(journal))
	}

	serverCfg := e.cfg.Server
	if addr != "" {
		serverCfg.Addr = addr
	}
	srv := api.NewServer(lib, serverCfg, opts...).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	e.log.Info("api", "Server listening", logging.F("addr", serverCfg.Addr))
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d movies on http://%s\n", len(lib.Movies()), serverCfg.Addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			stop()
			if l != nil {
				l.Stop()
			}
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Warn("api", "Shutdown incomplete", logging.F("error", err.Error()))
	}
	if l != nil {
		return l.Stop()
	}
	return nil
}
