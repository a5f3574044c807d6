package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/favorites"
	"github.com/desertthunder/chalet/internal/repositories"
	"github.com/desertthunder/chalet/internal/server"
	"github.com/desertthunder/chalet/internal/services"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func main() {
	logger := shared.NewLogger(nil)
	services.UserAgent = "chalet/" + version

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	backend, err := services.NewBackendService(config.Backend, logger)
	if err != nil {
		logger.Fatalf("invalid backend configuration: %v", err)
	}

	var google server.Provider
	if config.Credentials.Google.Configured() {
		if svc, err := services.NewGoogleService(config.Credentials.Google); err == nil {
			google = svc
		}
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		logger.Warn("local database unavailable, sessions will not be remembered", "error", err)
	}

	store, changes, err := newFavoritesStore(config, db, logger)
	if err != nil {
		logger.Warn("favorites cache unavailable, using memory", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Backend: backend,
		Google:  google,
		DB:      db,
		Store:   store,
		Signal:  changes,
		Logger:  logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "chalet",
		Usage:    "Browse, like, and export vacation chalets from the terminal",
		Version:  version,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}

// newFavoritesStore builds the favorites store for the configured cache backend,
// along with the signal that reports writes made by other processes.
func newFavoritesStore(config *shared.Config, db *sql.DB, logger *log.Logger) (*favorites.LocalStore, favorites.Signal, error) {
	key := config.Favorites.Key

	switch config.Favorites.Backend {
	case shared.FavoritesFile:
		cache := favorites.NewFileCache(shared.ExpandPath(config.Favorites.FilePath), logger)
		return favorites.NewLocalStore(cache, logger), cache, nil

	case shared.FavoritesRedis:
		client := favorites.NewRedisClient(config.Redis)
		cache := favorites.NewRedisCache(client, key, config.Redis.Channel, logger)
		return favorites.NewLocalStore(cache, logger), cache, nil

	default:
		if db == nil {
			return nil, nil, fmt.Errorf("%w: the sqlite favorites backend needs the local database", shared.ErrServiceUnavailable)
		}
		cache := favorites.NewSQLiteCache(repositories.NewKVRepository(db), key, logger)
		return favorites.NewLocalStore(cache, logger), cache, nil
	}
}
