package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (default $PORT or 8080)")
	return cmd
}

func serve(ctx context.Context) error {
	slog.Info("Starting splitledger", "config", cfg)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	publisher, err := newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	m := metrics.New()
	ledgerSvc := service.NewLedgerService(store, service.Options{
		CacheSize: cfg.CacheSize,
		Publisher: publisher,
		Metrics:   m,
	})

	deps := api.Deps{
		Groups:      service.NewGroupService(store, ledgerSvc),
		Ledger:      ledgerSvc,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.AuthEnabled() {
		deps.JWT = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
		deps.Auth = service.NewAuthService(auth.NewPasswordAuthenticator(store), deps.JWT, slog.Default())
	} else {
		slog.Warn("JWT_SECRET not set, group routes are unauthenticated")
	}

	// h2c serves HTTP/2 without TLS next to HTTP/1.1
	handler := h2c.NewHandler(api.NewRouter(deps), &http2.Server{})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

func newPublisher() (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	slog.Info("Publishing ledger events", "queue", cfg.AMQPQueue)
	return publisher, nil
}
