package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core/engine"
	"github.com/querylens/querylens/internal/core/store"
	"github.com/querylens/querylens/internal/observability"
	"github.com/querylens/querylens/internal/server"
	"github.com/querylens/querylens/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	Long: `Start the dashboard HTTP server with graceful shutdown support.

Ctrl+C (SIGINT) or SIGTERM triggers a graceful shutdown.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if cfg == nil {
		return errors.New("config not loaded")
	}

	observability.InitServerLogger(cfg.Logging.Level)
	logger := observability.ServerLogger

	serverCfg := cfg.Server
	if serverPort != 0 {
		serverCfg.Port = serverPort
	}
	if serverHost != "" {
		serverCfg.Host = serverHost
	}

	if strings.TrimSpace(cfg.SerpAPI.APIKey) == "" {
		logger.Warn("No SERPAPI_KEY configured; the dashboard will load but batch runs are blocked")
	}

	dashboard := &handlers.Dashboard{
		Config: cfg,
		Logger: logger,
	}

	svc := &engine.Service{Config: cfg, Logger: logger}
	svc.Progress = func(done, total int) {
		logger.Debug("batch progress", zap.Int("done", done), zap.Int("total", total))
	}
	dashboard.Service = svc

	if st, err := store.Open(cmd.Context(), cfg.Store); err != nil {
		logger.Warn("run history disabled", zap.Error(err))
	} else {
		defer st.Close() // nolint:errcheck // best-effort cleanup
		svc.Store = st
		dashboard.History = st
	}

	srv := server.New(serverCfg, dashboard)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
