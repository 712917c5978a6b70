package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/config"
	"github.com/lehigh-university-libraries/bookid/internal/handlers"
	"github.com/lehigh-university-libraries/bookid/internal/images"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the book identification API",
		Long: `Starts the HTTP API on the specified port.

Endpoints:
  POST /extract_and_summarize  identify a cover (multipart "file" or JSON {"image_url"})
  GET  /search_by_isbn?isbn=   look up a book by ISBN
  POST /search_book            look up a book by title and author, or ISBN
  GET  /similar_books?title=   recommend books from the same categories
  GET  /healthcheck            liveness probe`,
		Example: `  # Start server on the port from $PORT (default 8000)
  bookid serve

  # Start server on custom port
  bookid serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			svc, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Cache.Close()

			handler := handlers.New(svc, images.NewFetcher())

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Bookid API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
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
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides $PORT)")

	return cmd
}
