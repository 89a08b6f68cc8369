// Package app initializes and runs the development server.
// It configures logging, the trusted subnet check and the router,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/linkshrink/internal/config"
	"github.com/patric-chuzhbe/linkshrink/internal/ipchecker"
	"github.com/patric-chuzhbe/linkshrink/internal/logger"
	"github.com/patric-chuzhbe/linkshrink/internal/router"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the configuration and the HTTP handler needed to serve
// the client pages and proxy the gateway paths.
type App struct {
	cfg         *config.Config
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - setting up the trusted subnet check
// - setting up the router and middleware
func New(opts ...config.InitOption) (*App, error) {
	cfg, err := config.New(opts...)
	if err != nil {
		return nil, err
	}

	return NewWithConfig(cfg)
}

// NewWithConfig is New for an already assembled configuration.
func NewWithConfig(cfg *config.Config) (*App, error) {
	if err := logger.InitWithOutput(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}

	checker, err := ipchecker.New(cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	handler, err := router.New(cfg.GatewayURL, cfg.StaticDir, checker)
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, httpHandler: handler}, nil
}

// Handler exposes the assembled router.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run starts the HTTP server with graceful shutdown support.
// It returns when ctx is done or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infow("dev server running",
		"RunAddr", a.cfg.RunAddr,
		"GatewayURL", a.cfg.GatewayURL,
		"StaticDir", a.cfg.StaticDir,
	)

	server := &http.Server{
		Addr:              a.cfg.RunAddr,
		Handler:           a.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Stopping the dev server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
