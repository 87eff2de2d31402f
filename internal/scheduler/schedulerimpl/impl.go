package schedulerimpl

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/scheduled-post-manager/internal/poststore"
	"github.com/orgball2608/scheduled-post-manager/internal/scheduler"
	"github.com/orgball2608/scheduled-post-manager/pkg/config"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
	"go.uber.org/fx"
)

const tickTimeout = 30 * time.Second

type Opts struct {
	fx.In

	Store  poststore.Store
	Clock  clockwork.Clock
	Logger logger.Logger
	Config *config.Config
}

// ClockImpl re-evaluates every pending post once per interval. Publication is
// level-triggered, so a late or skipped tick needs no catch-up.
type ClockImpl struct {
	store    poststore.Store
	clock    clockwork.Clock
	logger   logger.Logger
	interval time.Duration
	location *time.Location

	lifecycleMu sync.Mutex
	scheduler   gocron.Scheduler
	cancel      context.CancelFunc
	stopped     atomic.Bool

	stateMu   sync.RWMutex
	now       time.Time
	listeners []scheduler.PublishedFunc
}

func New(opts Opts) *ClockImpl {
	return &ClockImpl{
		store:    opts.Store,
		clock:    opts.Clock,
		logger:   opts.Logger.WithComponent("PublicationClock"),
		interval: opts.Config.Clock.Interval,
		location: opts.Config.Location(),
	}
}

var _ scheduler.Clock = (*ClockImpl)(nil)

func (c *ClockImpl) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.scheduler != nil {
		return scheduler.ErrAlreadyStarted
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(c.location),
		gocron.WithLogger(c.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create publication scheduler: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	_, err = s.NewJob(
		gocron.DurationJob(c.interval),
		gocron.NewTask(func() {
			c.runTick(runCtx)
		}),
		gocron.WithName("publication-clock"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		_ = s.Shutdown()
		return fmt.Errorf("failed to schedule publication clock: %w", err)
	}

	c.stopped.Store(false)
	c.scheduler = s
	c.cancel = cancel
	s.Start()
	c.logger.Info("Publication clock started", "interval", c.interval.String())

	go func() {
		<-runCtx.Done()
		c.lifecycleMu.Lock()
		defer c.lifecycleMu.Unlock()
		if c.scheduler != s {
			return
		}
		if err := c.stopLocked(); err != nil {
			c.logger.Error("Failed to stop publication clock", "error", err)
		}
	}()

	return nil
}

func (c *ClockImpl) Stop() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	return c.stopLocked()
}

func (c *ClockImpl) stopLocked() error {
	c.stopped.Store(true)
	if c.scheduler == nil {
		return nil
	}

	// Shutdown waits for a running tick to finish.
	err := c.scheduler.Shutdown()
	c.cancel()
	c.scheduler = nil
	c.cancel = nil

	if err != nil {
		return fmt.Errorf("failed to shut down publication scheduler: %w", err)
	}
	c.logger.Info("Publication clock stopped")
	return nil
}

func (c *ClockImpl) Now() time.Time {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if c.now.IsZero() {
		return c.clock.Now()
	}
	return c.now
}

func (c *ClockImpl) OnPublished(fn scheduler.PublishedFunc) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *ClockImpl) runTick(ctx context.Context) {
	if c.stopped.Load() || ctx.Err() != nil {
		return
	}

	now := c.clock.Now()
	c.stateMu.Lock()
	c.now = now
	listeners := append([]scheduler.PublishedFunc(nil), c.listeners...)
	c.stateMu.Unlock()

	ticks.Inc()

	tickCtx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	res, err := c.store.Tick(tickCtx, now)
	if err != nil {
		tickErrors.Inc()
		c.logger.Error("Publication tick failed", "error", err)
		return
	}
	if !res.Changed() {
		return
	}

	c.logger.Info("Posts published", "count", len(res.Published))
	for _, fn := range listeners {
		fn(ctx, res.Published)
	}
}
