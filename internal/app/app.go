package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/scheduled-post-manager/internal/command"
	"github.com/orgball2608/scheduled-post-manager/internal/command/commandimpl"
	"github.com/orgball2608/scheduled-post-manager/internal/migrations"
	"github.com/orgball2608/scheduled-post-manager/internal/poststore"
	"github.com/orgball2608/scheduled-post-manager/internal/poststore/poststoreimpl"
	"github.com/orgball2608/scheduled-post-manager/internal/ratelimit"
	"github.com/orgball2608/scheduled-post-manager/internal/repositories/kv"
	"github.com/orgball2608/scheduled-post-manager/internal/scheduler"
	"github.com/orgball2608/scheduled-post-manager/internal/scheduler/schedulerimpl"
	"github.com/orgball2608/scheduled-post-manager/internal/telegram"
	"github.com/orgball2608/scheduled-post-manager/internal/telegram/telegramimpl"
	"github.com/orgball2608/scheduled-post-manager/pkg/config"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
	"go.uber.org/fx"
)

// New builds the application graph for cfg. The Telegram bot is only wired
// when a token is configured.
func New(cfg *config.Config) fx.Option {
	options := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(
			logger.FxOption,
			newClock,
		),
		kv.Module(cfg.Store.Backend),
		fx.Provide(
			fx.Annotate(
				poststoreimpl.New,
				fx.As(new(poststore.Store)),
			),
			fx.Annotate(
				schedulerimpl.New,
				fx.As(new(scheduler.Clock)),
			),
		),
	}

	if cfg.Store.Backend == config.BackendPostgres {
		options = append(options, fx.Invoke(migrate))
	}

	options = append(options,
		fx.Invoke(startHttpServer),
		fx.Invoke(run),
	)

	if cfg.Telegram.Token != "" {
		options = append(options,
			fx.Provide(
				fx.Annotate(
					telegramimpl.New,
					fx.As(new(telegram.Client)),
				),
				fx.Annotate(
					newLimiter,
					fx.As(new(ratelimit.Limiter)),
				),
				fx.Annotate(
					commandimpl.New,
					fx.As(new(command.Client)),
				),
			),
			fx.Invoke(runCommands),
		)
	}

	return fx.Options(options...)
}

func newClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

// One command every two seconds per user, bursts of five.
func newLimiter() *ratelimit.InMemoryLimiter {
	return ratelimit.NewInMemoryLimiter(1, 2*time.Second, 5)
}

// migrate runs after the pool has answered a ping and before the posts are loaded.
func migrate(lc fx.Lifecycle, _ *pgxpool.Pool, cfg *config.Config, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := migrations.Up(ctx, cfg.GetDSN()); err != nil {
				return err
			}
			log.Info("Database migrations applied")
			return nil
		},
	})
}

func run(lc fx.Lifecycle, log logger.Logger, store poststore.Store, clock scheduler.Clock) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if err := store.Load(startCtx); err != nil {
				cancel()
				return fmt.Errorf("failed to load posts: %w", err)
			}
			log.Info("Loaded posts", "count", len(store.Posts()))

			if err := clock.Start(ctx); err != nil {
				cancel()
				return fmt.Errorf("failed to start publication clock: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			defer cancel()
			return clock.Stop()
		},
	})
}

func runCommands(lc fx.Lifecycle, log logger.Logger, clock scheduler.Clock, cmd command.Client) {
	clock.OnPublished(cmd.AnnouncePublished)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := cmd.HandleCommand(ctx); err != nil {
					log.Error("Command handling stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
