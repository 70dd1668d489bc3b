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
	"time"

	"github.com/rankscore/aeo-insight/internal/analyzer"
	"github.com/rankscore/aeo-insight/internal/archive"
	"github.com/rankscore/aeo-insight/internal/leads"
	"github.com/rankscore/aeo-insight/internal/pageinsight"
	"github.com/rankscore/aeo-insight/internal/platform/config"
	"github.com/rankscore/aeo-insight/internal/platform/logger"
	"github.com/rankscore/aeo-insight/internal/platform/middleware"
	"github.com/rankscore/aeo-insight/internal/reportstore"
	"github.com/rankscore/aeo-insight/internal/tips"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := pageinsight.NewHTTPClient(cfg.ProbeTimeout, cfg.FetchTimeout)
	engine := pageinsight.NewEngine(client, client, log)

	opts := []analyzer.Option{analyzer.WithBatchConcurrency(cfg.BatchConcurrency)}

	if cfg.Storage.SQLitePath != "" {
		store, err := reportstore.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, analyzer.WithSinks(store), analyzer.WithReportReader(store))
		log.Info("report history enabled", "path", cfg.Storage.SQLitePath)
	}

	if cfg.Archive.Enabled() {
		arc, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		opts = append(opts, analyzer.WithSinks(arc))
		log.Info("report archive enabled", "bucket", cfg.Archive.Bucket)
	}

	if cfg.Tips.Enabled() {
		opts = append(opts, analyzer.WithTips(tips.NewClient(cfg.Tips)))
	}
	if cfg.Mailchimp.Enabled() {
		opts = append(opts, analyzer.WithLeads(leads.NewMailchimp(cfg.Mailchimp)))
	}

	svc := analyzer.NewService(engine, log.With("component", "analyzer"), opts...)

	mux := http.NewServeMux()
	analyzer.NewTransport(svc, log).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Chain(mux, middleware.RequestID, middleware.Logging(log), middleware.Recover(log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
