// Package app wires configuration into adapters and services.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"tennishighlights/internal/adapters/apify"
	"tennishighlights/internal/adapters/localstorage"
	"tennishighlights/internal/adapters/postgres"
	"tennishighlights/internal/adapters/rediscache"
	"tennishighlights/internal/adapters/sqlitestore"
	"tennishighlights/internal/adapters/ytdlp"
	"tennishighlights/internal/config"
	"tennishighlights/internal/core/ports"
	"tennishighlights/internal/metrics"
	"tennishighlights/internal/service"
)

// App holds the wired components.
type App struct {
	Catalog *service.Catalog
	Metrics *metrics.Metrics

	closers []func()
}

// Build initializes adapters for cfg.
func Build(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	a := &App{Metrics: metrics.New()}

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	store, err := a.newStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Catalog = service.NewCatalog(
		service.NewExtractor(provider, cfg.MaxDuration, logger),
		store,
		service.NewSelector(store, logger),
		a.Metrics,
		logger,
	)
	return a, nil
}

// Close releases database and cache connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newProvider(cfg *config.Config) (ports.MetadataProvider, error) {
	switch cfg.Provider {
	case config.ProviderApify:
		p, err := apify.NewProvider(cfg.ApifyToken,
			apify.WithTimeout(cfg.ProviderTimeout),
			apify.WithRateLimit(cfg.ProviderRPS),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize provider: %w", err)
		}
		return p, nil
	default:
		return ytdlp.NewProvider(
			ytdlp.WithBinary(cfg.YtDlpPath),
			ytdlp.WithTimeout(cfg.ProviderTimeout),
			ytdlp.WithRateLimit(cfg.ProviderRPS),
		), nil
	}
}

func (a *App) newStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (ports.HighlightStore, error) {
	var store ports.HighlightStore

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, s, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		store = s
	case config.DriverFS:
		s, err := localstorage.NewLocalStorage(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		db, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })
		s, err := sqlitestore.New(db)
		if err != nil {
			return nil, err
		}
		store = s
	}

	if cfg.RedisAddr == "" {
		return store, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Printf("Redis unavailable at %s, list cache will fall through: %v", cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, func() { rdb.Close() })
	return rediscache.New(store, rdb, cfg.CacheTTL, logger), nil
}
