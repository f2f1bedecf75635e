// Command server runs the yatube web application.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yatube/internal/bootstrap"
	"yatube/internal/config"
	"yatube/internal/middleware"
	"yatube/internal/observability"
	"yatube/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Getenv("LOG_LEVEL"))

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "yatube",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx := context.Background()
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{LoadDefaultGroups: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServer(cfg, db, rdb)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := shutdownOnSignal(sigChan, 10*time.Second,
		shutdownStep{"server", srv.Shutdown},
		shutdownStep{"tracing", shutdownTracing},
	)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	// Start returns once Shutdown begins; wait for tracing to flush.
	<-done
}

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// shutdownOnSignal runs steps in order after the first signal, sharing one
// timeout. The returned channel closes when every step has returned.
func shutdownOnSignal(sig <-chan os.Signal, timeout time.Duration, steps ...shutdownStep) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sig

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		for _, step := range steps {
			if err := step.fn(ctx); err != nil {
				middleware.Logger.Error(step.name+" shutdown error", slog.String("error", err.Error()))
			}
		}
	}()
	return done
}
