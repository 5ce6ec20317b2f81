// Package cli provides the startup steps shared by the wealth commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"wealth/internal/config"
	"wealth/internal/log"
	"wealth/internal/storage"
)

// LoadEnvFile loads .env for local development. A missing file is not an
// error; ENV_FILE overrides the path.
func LoadEnvFile() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		_ = godotenv.Load()
		return
	}
	_ = godotenv.Load(path)
}

// SetupLogger builds the process logger from cfg and installs it as the slog
// default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Component = component
	if cfg != nil {
		lc.Level = cfg.LogLevel
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// Bootstrap loads .env and the environment, sets up logging for component
// and runs validate against the config.
func Bootstrap(component string, validate func(*config.Config) error) (*config.Config, *log.Logger, error) {
	LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		return nil, SetupLogger(nil, component), err
	}
	logger := SetupLogger(cfg, component)

	if validate != nil {
		if err := validate(cfg); err != nil {
			return nil, logger, err
		}
	}
	return cfg, logger, nil
}

// MustBootstrap is Bootstrap for long-running workers: it exits on failure.
func MustBootstrap(component string, validate func(*config.Config) error) (*config.Config, *log.Logger) {
	cfg, logger, err := Bootstrap(component, validate)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenSQLite opens the repository at dbPath, applying migrations.
func OpenSQLite(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository at %s: %w", dbPath, err)
	}
	logger.WithComponent(log.ComponentStorage).Debug("SQLite repository ready", "path", dbPath)
	return repo, nil
}

// InitSQLite is OpenSQLite for long-running workers: it exits on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := OpenSQLite(logger, dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM. The
// returned stop restores default signal handling.
func ShutdownContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, stop
}
