// Package server initializes and runs the authentication server.
// It opens the configured storage backend, wires the services, serves the
// HTTP API and shuts down gracefully on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/league-auth/internal/logging"
	"github.com/dmitrijs2005/league-auth/internal/server/config"
	"github.com/dmitrijs2005/league-auth/internal/server/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	hs "github.com/dmitrijs2005/league-auth/internal/server/http"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage *Storage
	server  *hs.Server
}

// NewApp builds an App writing JSON logs to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.New(os.Stdout, c.LogFormat, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	st, err := OpenStorage(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	users, tokens, err := NewUserService(c, st, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("service init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	h := hs.NewHandler(users, tokens, collector, logger)
	srv := hs.NewServer(c.HTTPAddr, hs.NewRouter(h, metrics.Handler(reg)), logger, c.ShutdownTimeout)

	return &App{config: c, logger: logger, storage: st, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a shutdown signal arrives, then
// closes storage.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		serveErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		serveErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return errors.Join(serveErr, app.storage.Close())
}
