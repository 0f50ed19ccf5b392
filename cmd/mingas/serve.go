package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mingas-api/internal/config"
	"mingas-api/internal/db"
	"mingas-api/internal/handlers"
	"mingas-api/internal/metrics"
	"mingas-api/internal/models"
	"mingas-api/internal/seed"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(a.out, "database schema initialized")
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with the demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			now := a.now()
			stats, err := seed.Run(ctx, store, now)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			upcoming, err := store.ListEvents(ctx, models.EventFilter{Upcoming: true}, now)
			if err != nil {
				return fmt.Errorf("seed summary: %w", err)
			}

			fmt.Fprintf(a.out, "%d events, %d participants\n", stats.Events, stats.Participants)
			fmt.Fprintf(a.out, "%d upcoming, %d past\n\n", len(upcoming), stats.Events-len(upcoming))
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for i, e := range upcoming {
				fmt.Fprintf(tw, "%d.\t%s\t%s\t%d participants\n", i+1, e.Title, formatDate(e.Date), e.ParticipantsCount)
			}
			return tw.Flush()
		},
	}
}

// openStore connects to the configured database and ensures the schema.
func (a *app) openStore(ctx context.Context) (*db.DB, error) {
	store, err := db.NewDB(a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	// short timeout so a locked database fails fast on boot
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.InitSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// newServer builds the API server for cfg on top of store.
func newServer(cfg *config.Config, store handlers.Store, m *metrics.Metrics) *http.Server {
	h := &handlers.Handlers{DB: store, Metrics: m}

	var opts handlers.RouterOptions
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handlers.NewRouter(h, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func (a *app) serve() error {
	logger := a.cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	store, err := a.openStore(context.Background())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return errReported
	}
	slog.Info("database schema initialized")

	var m *metrics.Metrics
	if a.cfg.Metrics.Enabled {
		m = metrics.New()
	}
	server := newServer(a.cfg, store, m)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", server.Addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err := <-serveErr:
		slog.Error("server error", "error", err)
		runErr = errReported
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Close DB connection last
	if err := store.Close(); err != nil {
		slog.Error("failed to close db", "error", err)
	}

	if runErr == nil {
		slog.Info("server exited cleanly")
	}
	return runErr
}
