package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joescharf/yr/internal/api"
	"github.com/joescharf/yr/internal/daemon"
	"github.com/joescharf/yr/internal/history"
	"github.com/joescharf/yr/internal/metrics"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review HTTP API",
	Long: `Start an HTTP server exposing the review API and Prometheus metrics.
By default it listens on port 8080. Use --port to change it.

Endpoints:
  GET    /api/v1/reviews/{year}   review a year
  POST   /api/v1/reviews          review {"year": <value>}
  GET    /api/v1/reviews          list the history
  GET    /api/v1/reviews/id/{id}  one recorded review
  DELETE /api/v1/reviews          clear the history
  GET    /api/v1/stats            review counts
  GET    /api/v1/info             present year, defaults and fixed reviews
  GET    /metrics                 Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := configPort()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
		defer stop()
		return serveRun(ctx, fmt.Sprintf(":%d", port))
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

// pidFile returns the PID file tracking a running server.
func pidFile() *daemon.PIDFile {
	return daemon.NewPIDFile(filepath.Join(viper.GetString("state_dir"), "yr-serve.pid"))
}

func serveStatusRun() error {
	pf := pidFile()
	if pid, running := pf.IsRunning(); running {
		ui.Success("Server running (pid %d)", pid)
		return nil
	}
	ui.Info("Server not running")
	return nil
}

// serveRun serves the API on addr until ctx is cancelled, then shuts down gracefully.
func serveRun(ctx context.Context, addr string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pf := pidFile()
	if err := pf.Acquire(); err != nil {
		return err
	}
	defer func() { _ = pf.Release() }()

	m := metrics.New()
	rec, err := newRecorder(true, history.WithMetrics(m), history.WithLogger(logger))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(rec, m, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving review API", zap.String("addr", addr), zap.Bool("history", rec.Recording()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
