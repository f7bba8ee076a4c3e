// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"renovation-workers/internal/common/camunda"
	"renovation-workers/internal/common/config"
	"renovation-workers/internal/common/database"
	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/common/observability"
)

const serviceName = "renovation-workers"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("contractorSource", cfg.Scheduling.ContractorSource),
	)

	ctx := context.Background()

	// --- Observability ---
	jaegerEndpoint := ""
	if cfg.Observability.Tracing.Enabled {
		jaegerEndpoint = cfg.Observability.Tracing.JaegerEndpoint
	}
	tracer, err := observability.NewTracer(serviceName, jaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracer init failed", zap.Error(err))
	}
	otelMetrics, err := observability.NewMetrics(serviceName)
	if err != nil {
		zapLog.Fatal("otel metrics init failed", zap.Error(err))
	}

	// --- Data stores with retry ---
	var clients *database.Clients
	err = retryWithBackoff(func() error {
		var err error
		clients, err = database.Connect(ctx, cfg)
		return err
	}, 15, 2*time.Second, zapLog, "Data store connection")
	if err != nil {
		zapLog.Fatal("data stores failed after retries", zap.Error(err))
	}
	defer clients.Close()
	zapLog.Info("Data stores connected",
		zap.Bool("redis", clients.Redis != nil),
		zap.Bool("elasticsearch", clients.Elasticsearch != nil),
	)

	// --- Zeebe client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Workers ---
	deps, err := buildDependencies(ctx, cfg, clients, tracer, otelMetrics, log)
	if err != nil {
		zapLog.Fatal("worker dependencies failed", zap.Error(err))
	}
	workers, err := registerWorkers(zeebe.GetClient(), cfg, deps, log)
	if err != nil {
		zapLog.Fatal("worker registration failed", zap.Error(err))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := clients.Ping(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}
	if err := otelMetrics.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping otel metrics", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
