package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/algo-quickstart/internal/config"
	pinhttp "github.com/quantumauth-io/algo-quickstart/internal/http"
	"github.com/quantumauth-io/algo-quickstart/internal/metrics"
	"github.com/quantumauth-io/algo-quickstart/internal/pinning"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	log.Info("pin-server",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.DefaultPaths()...)
	if err != nil {
		log.Fatal("failed to parse config", "error", err)
	}

	store, fetcher, err := openStore(ctx, cfg.Pinning)
	if err != nil {
		log.Error("pin store init failed", "backend", cfg.Pinning.Backend, "error", err)
		return
	}

	service := pinning.NewService(store, pinning.Options{
		ImageName:           cfg.Pinning.ImageName,
		MetadataName:        cfg.Pinning.MetadataName,
		MetadataTitle:       cfg.Pinning.MetadataTitle,
		MetadataDescription: cfg.Pinning.MetadataDescription,
		Timeout:             cfg.Pinning.Timeout,
	})

	handler := pinhttp.NewHandler(service, fetcher, metrics.New(), cfg.Server.MaxUploadBytes)
	router := pinhttp.NewRouter(handler, cfg.Server)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("pin server listening", "addr", addr, "backend", cfg.Pinning.Backend)
		if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("HTTP server gracefully stopped")
	}
}

// openStore builds the configured pin store. Only local stores can serve
// content back, so fetcher is nil for Pinata.
func openStore(ctx context.Context, cfg *config.PinningSettings) (pinning.Store, pinning.Fetcher, error) {
	switch cfg.Backend {
	case config.PinBackendLocal:
		cas, err := pinning.NewDirCAS(cfg.LocalDir)
		if err != nil {
			return nil, nil, err
		}
		store := pinning.NewLocalStore(cas)
		return store, store, nil

	case config.PinBackendMemory:
		store := pinning.NewLocalStore(pinning.NewMemoryCAS())
		return store, store, nil

	default:
		if !cfg.HasPinataCredentials() {
			log.Warn("no Pinata credentials configured, uploads will be rejected upstream")
		}
		p := pinning.NewPinata(cfg.BaseURL, pinning.PinataCredentials{
			JWT:       cfg.JWT,
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
		}, cfg.Timeout)

		authCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := p.TestAuthentication(authCtx); err != nil {
			log.Warn("Pinata authentication check failed", "error", err)
		} else {
			log.Info("Pinata authentication ok")
		}
		return p, nil, nil
	}
}
