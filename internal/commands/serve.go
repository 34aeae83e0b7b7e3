package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/planora/planora/internal/agent"
	"github.com/planora/planora/internal/api"
	"github.com/planora/planora/internal/auth"
	"github.com/planora/planora/internal/llm"
	"github.com/planora/planora/internal/metrics"
	"github.com/planora/planora/internal/planner"
)

func newServeCmd(f *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the planora HTTP API until interrupted.

Examples:
  planora serve
  planora serve --addr :8080
  PLANORA_SERVER_MODE=release PLANORA_AUTH_JWT_SECRET=... planora serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := f.open(false)
			if err != nil {
				return err
			}
			defer a.store.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

// newHandler wires the API with its planner, agent and metrics
func newHandler(a *app) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	gen, err := llm.New(a.cfg.AI, llm.WithLogger(a.logger), llm.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	if a.cfg.AI.APIKey == "" {
		a.logger.Warn("no AI api key configured, plan generation and chat will fail", "provider", a.cfg.AI.Provider)
	}

	tokens, err := auth.NewTokenIssuer(a.cfg.Auth.JWTSecret, a.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	opts := api.Options{
		Store:   a.store,
		Planner: planner.NewService(a.store, gen, planner.WithLogger(a.logger), planner.WithMetrics(m)),
		Agent:   agent.New(a.store, gen, agent.WithLogger(a.logger), agent.WithMetrics(m)),
		Tokens:  tokens,
		Logger:  a.logger,
		Mode:    a.cfg.Server.Mode,
	}
	if a.cfg.Metrics.Enabled {
		opts.Metrics = m
		opts.Gatherer = reg
		opts.MetricsPath = a.cfg.Metrics.Path
	}

	return api.NewServer(opts).Handler(), nil
}

// runServe serves until ctx is done, then drains in-flight requests
func runServe(ctx context.Context, a *app) error {
	handler, err := newHandler(a)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("planora api listening", "addr", srv.Addr, "mode", a.cfg.Server.Mode,
			"database", a.cfg.Database.Driver, "ai_provider", a.cfg.AI.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down", "timeout", a.cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}
