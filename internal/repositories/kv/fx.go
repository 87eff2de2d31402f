package kv

import (
	"context"
	"fmt"

	"github.com/orgball2608/scheduled-post-manager/pkg/config"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
	"github.com/orgball2608/scheduled-post-manager/pkg/pgx"
	"github.com/orgball2608/scheduled-post-manager/pkg/retry"
	"go.uber.org/fx"
)

// Module provides the Repository for the configured backend.
func Module(backend string) fx.Option {
	var provide fx.Option
	switch backend {
	case config.BackendMemory:
		provide = fx.Provide(
			fx.Annotate(NewMemory, fx.As(new(Repository))),
		)
	case config.BackendPebble:
		provide = fx.Provide(
			fx.Annotate(newPebble, fx.As(new(Repository))),
		)
	case config.BackendRedis:
		provide = fx.Provide(
			fx.Annotate(newRedis, fx.As(new(Repository))),
		)
	case config.BackendPostgres:
		provide = fx.Provide(
			pgx.New,
			fx.Annotate(NewPgx, fx.As(new(Repository))),
		)
	default:
		provide = fx.Error(fmt.Errorf("unknown store backend %q", backend))
	}
	return fx.Module("kv_repository", provide)
}

func newPebble(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) (*Pebble, error) {
	p, err := OpenPebble(cfg.Pebble.Path, nil, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return p.Close()
		},
	})
	log.Info("Opened pebble store", "path", cfg.Pebble.Path)
	return p, nil
}

func newRedis(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) (*Redis, error) {
	r, err := NewRedis(cfg.Redis.URL, cfg.Redis.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := retry.Do(ctx, log, "redis ping", r.Ping, retry.DefaultConfig()); err != nil {
				return fmt.Errorf("failed to ping redis: %w", err)
			}
			log.Info("Connected to redis")
			return nil
		},
		OnStop: func(context.Context) error {
			return r.Close()
		},
	})
	return r, nil
}
