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

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-saga/cmd/server/client"
	"github.com/KirkDiggler/rpg-saga/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-saga/internal/handlers/relay"
	"github.com/KirkDiggler/rpg-saga/internal/ratelimit"
)

const (
	// relayTimeout bounds one provider attempt made on behalf of a caller
	relayTimeout    = 45 * time.Second
	relayMaxRetries = 2
	shutdownTimeout = 30 * time.Second
)

var (
	httpPort  int
	redisAddr string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the story generation relay",
	Long: `Start the HTTP relay that serves POST /api/generate-story.
The provider key stays on the server; requests are rate limited per client.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&httpPort, "port", 0, "HTTP port (default from PORT, then 3000)")
	serverCmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for shared rate limiting (default from REDIS_ADDR)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := client.LoadConfig(cmd)
	if err != nil {
		return err
	}
	if httpPort != 0 {
		cfg.Port = httpPort
	}
	if redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}

	limiter, closeLimiter, err := newLimiter(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer closeLimiter()

	var narrativeClient narrative.Client
	if cfg.HasAPIKey() {
		narrativeClient, err = client.NewNarrativeClient(ctx, cfg, &narrative.Config{
			Timeout:    relayTimeout,
			MaxRetries: relayMaxRetries,
		})
		if err != nil {
			return fmt.Errorf("failed to create narrative client: %w", err)
		}
	} else {
		slog.Warn("GEMINI_API_KEY is not set, generation requests will fail")
	}

	handler, err := relay.NewHandler(&relay.HandlerConfig{
		Client:  narrativeClient,
		Limiter: limiter,
	})
	if err != nil {
		return fmt.Errorf("failed to create relay handler: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Relay starting", "port", cfg.Port, "model", cfg.Model, "shared_limiter", cfg.UsesRedis())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal, gracefully stopping...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Graceful shutdown timeout exceeded, forcing stop", "error", err)
			return srv.Close()
		}
		slog.Info("Server stopped gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

func newLimiter(addr string) (ratelimit.Limiter, func(), error) {
	if addr == "" {
		l, err := ratelimit.NewMemory(nil)
		return l, func() {}, err
	}

	rc, err := client.NewRedisClient(addr)
	if err != nil {
		return nil, nil, err
	}
	l, err := ratelimit.NewRedis(&ratelimit.RedisConfig{Client: rc})
	if err != nil {
		_ = rc.Close()
		return nil, nil, err
	}

	return l, func() { _ = rc.Close() }, nil
}
