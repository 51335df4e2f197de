package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/udpbalancer/internal/balancer"
	"github.com/yourorg/udpbalancer/internal/version"
)

func main() {
	var configFile = flag.String("config", "/etc/udpbalancer.yaml", "path to config file")
	var showVersion = flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	// Load configuration
	cfg, err := balancer.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := &balancer.Server{
		Config: cfg,
	}

	// Start status HTTP server if configured
	var httpServer *http.Server
	if cfg.StatusAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/health", server.HealthHandler())
		mux.Handle("/metrics", promhttp.Handler())

		httpServer = &http.Server{
			Addr:    cfg.StatusAddr,
			Handler: mux,
		}

		go func() {
			log.Printf("HTTP server starting on %s", cfg.StatusAddr)
			log.Println("  /health       - Health check")
			log.Println("  /metrics      - Prometheus metrics")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	// Run the relay loop in a goroutine so signals stay responsive
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx)
	}()

	slog.Info("Starting udpbalancer", "listen", cfg.Listen, "upstreams", len(cfg.Upstreams))

	var runErr error
	select {
	case runErr = <-errCh:
		// Fatal receive or bind error; stop everything else too.
		cancel()
	case <-ctx.Done():
		cancel() // Stop listening for signals, so next Ctrl+C kills the program
		runErr = <-errCh
	}

	slog.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down status server: %v", err)
		}
	}

	if runErr != nil {
		slog.Error("relay terminated", "err", runErr)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
