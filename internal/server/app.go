// Package server wires the dashboard together: it opens the connection
// pool, ensures the schema, and runs the HTTP API and the gRPC health
// service until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/subdash/internal/dbx"
	"github.com/dmitrijs2005/subdash/internal/logging"
	"github.com/dmitrijs2005/subdash/internal/server/config"
	"github.com/dmitrijs2005/subdash/internal/server/health"
	"github.com/dmitrijs2005/subdash/internal/server/httpapi"
	"github.com/dmitrijs2005/subdash/internal/server/metrics"
	"github.com/dmitrijs2005/subdash/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/subdash/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	metrics     *metrics.Collectors
	services    *services.Services
	health      *health.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	db, err := dbx.Open(ctx, c.DatabaseDSN, c.DBMaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, logger, db, repomanager.NewPostgresRepositoryManager()), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	m := metrics.New()

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		metrics:     m,
		services:    services.New(db, rm, c, services.WithObserver(m)),
		health:      health.NewServer(c.EndpointAddrGRPC, logger),
	}
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(
		app.services.Members,
		app.services.Reports,
		app.services.Exports,
		app.services.Archive,
		app.db,
		app.logger,
	)
	router := httpapi.NewRouter(h, app.metrics, app.logger)

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.config.ShutdownTimeout, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run ensures the schema and serves until ctx is cancelled, a termination
// signal arrives, or one of the listeners fails. The pool is closed on
// return.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.closeDB(ctx)

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return err
	}
	app.logger.Info(ctx, "Schema ensured")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	app.health.SetServing(true)

	<-ctx.Done()
	app.health.SetServing(false)
	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return nil
}

func (app *App) closeDB(ctx context.Context) {
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
