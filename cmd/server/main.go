package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"graphtrail/internal/audit/handler"
	"graphtrail/internal/audit/service"
	"graphtrail/internal/graphstore"
	"graphtrail/internal/platform/config"
	"graphtrail/internal/platform/health"
	"graphtrail/internal/platform/httpserver"
	"graphtrail/internal/platform/logger"
	"graphtrail/internal/platform/metrics"
	"graphtrail/internal/platform/middleware"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// main wires high-level dependencies and keeps the server lifecycle
// small. The audit service is constructed once here and passed by
// reference; business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client service.GraphClient
	var closeClient func(context.Context) error
	var ping pinger

	if cfg.GraphURI == "" {
		log.Warn("GRAPH_STORE_URI not set, using in-memory graph store; audit history will not survive restarts")
		mem := graphstore.NewInMemory()
		client, closeClient, ping = mem, mem.Close, mem
	} else {
		neo, err := graphstore.NewNeo4j(ctx, cfg.GraphURI, cfg.GraphUsername, cfg.GraphPassword,
			graphstore.WithDatabase(cfg.GraphDatabase))
		if err != nil {
			log.Error("failed to connect to graph store", "error", err, "uri", cfg.GraphURI)
			os.Exit(1)
		}
		client, closeClient, ping = neo, neo.Close, neo
	}

	m := metrics.New()
	auditService := service.NewService(client, log,
		service.WithMetrics(m),
		service.WithDefaultLimit(cfg.QueryLimit),
	)

	// Index setup is best-effort at startup: missing indexes degrade
	// query latency, not correctness, so a failure must not keep the
	// write path from coming up.
	if err := auditService.CreateIndexes(ctx); err != nil {
		log.Warn("audit index setup failed, continuing without", "error", err)
	}

	healthHandler := health.New()
	healthHandler.RegisterCheck("graph_store", ping.Ping)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.AuthSigningKey, log))
		handler.New(auditService, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting audit trail server", "addr", cfg.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := closeClient(closeCtx); err != nil {
		log.Error("failed to close graph store client", "error", err)
	}
	log.Info("server stopped")
}
