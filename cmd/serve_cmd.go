package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"game-catalog/pkg/admin"
	"game-catalog/pkg/backend"
	"game-catalog/pkg/config"
	"game-catalog/pkg/handlers"
	"game-catalog/pkg/services"
	"game-catalog/pkg/upload"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the catalog, upload and admin pages via HTTP.`,
		Example: `  # Start server on default port 8080 against a local backend
  game-catalog serve

  # Start server on a custom port and backend
  game-catalog serve --port 3000 --api-url https://api.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serveWebsite(cmd.Context(), cfg, client)
		},
	}
}

// serveWebsite runs the web server until ctx is cancelled
func serveWebsite(ctx context.Context, cfg *config.Config, client *backend.Client) error {
	srv := handlers.New(handlers.Options{
		APIBase:      cfg.APIURL,
		SiteBase:     cfg.SiteURL(),
		PublicDir:    cfg.PublicDir,
		CookieSecure: cfg.CookieSecure,
		Catalog:      services.Default(),
		Backend:      client,
		Connect:      admin.BackendConnect(client),
		Views:        handlers.PugRenderer{Dir: cfg.ViewsDir},
		Tracker:      upload.NewTracker(30 * time.Minute),
		Invalidate:   services.Invalidate,
		Logger:       slog.Default(),
	})
	router, err := srv.Router()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		cfg.PrintServerStartMessage()
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation (Ctrl+C) or server error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "err", err)
			return err
		}
		slog.Info("Server stopped")
		return nil
	case err := <-serverErr:
		slog.Error("Server error", "err", err)
		return err
	}
}
