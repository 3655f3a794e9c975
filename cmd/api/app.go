package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/httpx"
	"bookshelf/internal/seed"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "bookshelf"

type app struct {
	cfg       config.Config
	logger    *slog.Logger
	books     *book.Service
	metrics     *prometheus.Registry
	httpMetrics *httpx.Metrics
	rateLimit   *httpx.RateLimitMiddleware
}

func newApp(cfg config.Config, logger *slog.Logger) *app {
	books := book.NewService(book.NewRegistry())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "books",
			Help:      "Number of books currently in the registry.",
		}, func() float64 { return float64(books.Count()) }),
	)

	return &app{
		cfg:         cfg,
		logger:      logger,
		books:       books,
		metrics:     reg,
		httpMetrics: httpx.NewMetrics(reg, metricsNamespace),
		rateLimit:   httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

func (a *app) routes() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(httpx.NotFound)
	router.MethodNotAllowed = http.HandlerFunc(httpx.MethodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))

	book.NewHTTPHandler(a.books).Routes(router)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(a.logger),
		httpx.AccessLogMiddleware(a.logger),
		a.httpMetrics.Middleware,
		httpx.SecurityHeadersMiddleware(a.cfg.EnableHSTS),
		httpx.CORSMiddleware(a.cfg.AllowedOrigins),
		a.rateLimit.Middleware,
		httpx.RequestSizeLimitMiddleware(a.cfg.MaxBodyBytes),
	)
}

func (a *app) loadSeed(ctx context.Context) error {
	if a.cfg.SeedFile == "" {
		return nil
	}
	payloads, err := seed.LoadFile(a.cfg.SeedFile)
	if err != nil {
		return err
	}
	res, err := seed.Apply(ctx, a.books, payloads, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("seed loaded",
		slog.String("file", a.cfg.SeedFile),
		slog.Int("created", len(res.Created)),
		slog.Int("rejected", res.Rejected),
	)
	return nil
}

// run serves until ctx is cancelled, then drains in-flight requests for up
// to cfg.ShutdownTimeout.
func (a *app) run(ctx context.Context) error {
	if err := a.loadSeed(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	srv := &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      a.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(a.logger.Handler(), slog.LevelError),
	}

	go a.rateLimit.Run(ctx)

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		a.logger.Info("shutting down server", slog.String("addr", srv.Addr))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("starting server",
		slog.String("addr", srv.Addr),
		slog.String("env", a.cfg.Env),
		slog.String("version", Version),
	)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	if err := <-shutdownErr; err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
