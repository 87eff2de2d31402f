package schedulerimpl

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
	"github.com/orgball2608/scheduled-post-manager/internal/poststore"
	mock_poststore "github.com/orgball2608/scheduled-post-manager/internal/poststore/mocks"
	"github.com/orgball2608/scheduled-post-manager/internal/poststore/poststoreimpl"
	"github.com/orgball2608/scheduled-post-manager/internal/repositories/kv"
	"github.com/orgball2608/scheduled-post-manager/internal/scheduler"
	"github.com/orgball2608/scheduled-post-manager/pkg/config"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
)

var start = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func testConfig(interval time.Duration) *config.Config {
	cfg := &config.Config{}
	cfg.Store.Key = "scheduledPosts"
	cfg.Clock.Interval = interval
	cfg.Clock.Timezone = "UTC"
	return cfg
}

func testLogger() logger.Logger {
	return logger.New(logger.Opts{Env: logger.EnvProduction, Writer: io.Discard})
}

func newClock(store poststore.Store, clock clockwork.Clock, interval time.Duration) *ClockImpl {
	return New(Opts{
		Store:  store,
		Clock:  clock,
		Logger: testLogger(),
		Config: testConfig(interval),
	})
}

func TestRunTickUpdatesNowAndNotifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_poststore.NewMockStore(ctrl)
	fake := clockwork.NewFakeClockAt(start)
	c := newClock(store, fake, time.Second)

	published := []domain.Post{{ID: "1", IsPublished: true}}
	store.EXPECT().Tick(gomock.Any(), start).Return(poststore.TickResult{Published: published}, nil)

	var got []domain.Post
	c.OnPublished(func(_ context.Context, posts []domain.Post) {
		got = posts
	})

	c.runTick(context.Background())

	assert.Equal(t, start, c.Now())
	assert.Equal(t, published, got)
}

func TestRunTickSkipsListenersWithoutChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_poststore.NewMockStore(ctrl)
	c := newClock(store, clockwork.NewFakeClockAt(start), time.Second)

	store.EXPECT().Tick(gomock.Any(), gomock.Any()).Return(poststore.TickResult{}, nil)
	store.EXPECT().Tick(gomock.Any(), gomock.Any()).Return(poststore.TickResult{}, errors.New("disk full"))

	c.OnPublished(func(context.Context, []domain.Post) {
		t.Fatal("listener must not be called")
	})

	c.runTick(context.Background())
	c.runTick(context.Background())
}

func TestRunTickAfterStopIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_poststore.NewMockStore(ctrl)
	c := newClock(store, clockwork.NewFakeClockAt(start), time.Second)

	require.NoError(t, c.Stop())
	c.runTick(context.Background())
}

func TestNowBeforeFirstTick(t *testing.T) {
	fake := clockwork.NewFakeClockAt(start)
	c := newClock(nil, fake, time.Second)
	assert.Equal(t, start, c.Now())
}

func TestStartTicksUntilStopped(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_poststore.NewMockStore(ctrl)
	c := newClock(store, clockwork.NewRealClock(), 10*time.Millisecond)

	var calls atomic.Int64
	store.EXPECT().Tick(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, time.Time) (poststore.TickResult, error) {
			calls.Add(1)
			return poststore.TickResult{}, nil
		},
	).AnyTimes()

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), scheduler.ErrAlreadyStarted)

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.Stop())
	stoppedAt := calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, stoppedAt, calls.Load(), "no tick may run after Stop returns")

	require.NoError(t, c.Stop())
}

func TestCancelledContextStopsClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_poststore.NewMockStore(ctrl)
	c := newClock(store, clockwork.NewRealClock(), 10*time.Millisecond)

	var calls atomic.Int64
	store.EXPECT().Tick(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, time.Time) (poststore.TickResult, error) {
			calls.Add(1)
			return poststore.TickResult{}, nil
		},
	).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		c.lifecycleMu.Lock()
		defer c.lifecycleMu.Unlock()
		return c.scheduler == nil
	}, 2*time.Second, 5*time.Millisecond)

	stoppedAt := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stoppedAt, calls.Load())

	require.NoError(t, c.Start(context.Background()), "a stopped clock can be started again")
	require.NoError(t, c.Stop())
}

func TestClockPublishesThroughStore(t *testing.T) {
	ctx := context.Background()
	fake := clockwork.NewFakeClockAt(start)
	cfg := testConfig(10 * time.Millisecond)
	store := poststoreimpl.New(poststoreimpl.Opts{
		KV:     kv.NewMemory(),
		Clock:  fake,
		Logger: testLogger(),
		Config: cfg,
	})
	require.NoError(t, store.Load(ctx))

	post, err := store.Add(ctx, "Hello", start.Add(2*time.Minute))
	require.NoError(t, err)

	c := New(Opts{Store: store, Clock: fake, Logger: testLogger(), Config: cfg})

	var mu sync.Mutex
	var announced []domain.Post
	c.OnPublished(func(_ context.Context, posts []domain.Post) {
		mu.Lock()
		defer mu.Unlock()
		announced = append(announced, posts...)
	})

	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	require.Eventually(t, func() bool { return c.Now().Equal(start) }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, store.Posts()[0].IsPublished)

	fake.Advance(2*time.Minute + time.Second)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(announced) == 1
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, post.ID, announced[0].ID)
	mu.Unlock()
	assert.True(t, store.Posts()[0].IsPublished)
	assert.Equal(t, start.Add(2*time.Minute+time.Second), c.Now())
}
