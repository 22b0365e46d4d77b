package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"readtrack/internal/config"
	"readtrack/internal/reading"
	"readtrack/internal/server"
	"readtrack/internal/source"
	"readtrack/internal/source/ch"
	"readtrack/internal/source/file"
	"readtrack/internal/source/stubs"
	"readtrack/internal/tracker"
)

// App represents the application
type App struct {
	config  *config.Config
	logger  *zap.Logger
	src     source.Source
	session *tracker.Session
	api     *server.Server
	server  *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("Starting reading tracker", zap.String("book_source", cfg.BookSource))

	// Initialize the book catalog source
	if err := app.initSource(); err != nil {
		return nil, err
	}

	// Initialize the tracking session
	app.initSession()

	// Initialize HTTP server
	app.initHTTPServer()

	return app, nil
}

// initSource selects and connects the book catalog source
func (a *App) initSource() error {
	var src source.Source

	switch a.config.BookSource {
	case config.SourceMock:
		a.logger.Info("Using mock book catalog")
		src = stubs.NewMockSource()

	case config.SourceFile:
		a.logger.Info("Using file book catalog", zap.String("path", a.config.BooksFile))
		src = file.New(a.config.BooksFile)

	case config.SourceClickHouse:
		tlsStatus := "without TLS"
		if a.config.ClickHouse.UseTLS {
			tlsStatus = "with TLS"
		}
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", a.config.ClickHouse.Host),
			zap.Int("port", a.config.ClickHouse.Port),
			zap.String("database", a.config.ClickHouse.Database),
			zap.String("user", a.config.ClickHouse.User),
			zap.String("tls", tlsStatus),
		)
		clickhouseSrc, err := ch.New(
			a.config.ClickHouse.Host,
			a.config.ClickHouse.Port,
			a.config.ClickHouse.Database,
			a.config.ClickHouse.User,
			a.config.ClickHouse.Password,
			a.config.ClickHouse.UseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		src = clickhouseSrc
	}

	if err := src.Initialize(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize book source: %w", err)
	}

	a.src = src
	return nil
}

// initSession creates the tracking session and loads the catalog into it.
// A failed load is not fatal: the API stays up and reports the catalog as
// unavailable.
func (a *App) initSession() {
	a.session = tracker.NewSession(
		a.src,
		reading.NewTracker(reading.DefaultIntensityThresholds(), nil),
		reading.NewEngine(reading.DefaultMaxSpeedReadDays, nil),
		a.logger,
	)
	a.api = server.New(a.session, a.logger)

	if err := a.session.Load(context.Background()); err != nil {
		a.logger.Error("Failed to load book catalog", zap.Error(err))
		a.api.SetLoadError(err)
	}
}

// initHTTPServer initializes the HTTP server for the API and health checks
func (a *App) initHTTPServer() {
	mux := http.NewServeMux()
	a.api.RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		a.logger.Error("HTTP server error", zap.Error(err))
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.src.Close(); err != nil {
		a.logger.Error("Error closing book source", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return nil
}
