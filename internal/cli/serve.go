package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/flow/internal/server"
)

const shutdownTimeout = 10 * time.Second

var (
	serveHost string
	servePort int
)

// serveCmd runs the HTTP surface
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the suggestion endpoint and the document API over HTTP",
	Long: `Serve the suggestion endpoint and the document API over HTTP.

Routes:
  POST   /api/suggest                     {"contextText": "..."} -> {"suggestion": "..." | null}
  GET    /api/document                    current snapshot
  PUT    /api/document                    {"text": "..."}
  POST   /api/document/accept             accept the visible suggestion
  POST   /api/document/dismiss            hide the visible suggestion
  POST   /api/document/annotations        {"start": 0, "end": 5, "note": "..."}
  DELETE /api/document/annotations/{id}
  GET    /api/document/export?comments=1
  GET    /health/live`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := log.Logger
	completer, err := newCompleter(cfg, logger)
	if err != nil {
		return err
	}
	if !completer.IsEnabled() {
		logger.Warn().Msg("no suggestion provider configured; /api/suggest will always return null")
	}

	doc, st, err := openDocument(cfg, completer)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("close store")
		}
	}()
	defer doc.Close()

	handler := server.NewHandler(completer, doc, logger.With().Str("component", "api").Logger())
	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           server.NewRouter(handler, logger.With().Str("component", "http").Logger()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("address", httpServer.Addr).Str("provider", completer.ProviderName()).Msg("starting HTTP server")
		fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
