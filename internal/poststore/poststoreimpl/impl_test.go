package poststoreimpl

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
	"github.com/orgball2608/scheduled-post-manager/internal/repositories/kv"
	mock_kv "github.com/orgball2608/scheduled-post-manager/internal/repositories/kv/mocks"
	"github.com/orgball2608/scheduled-post-manager/internal/timeline"
	"github.com/orgball2608/scheduled-post-manager/pkg/config"
	apperrors "github.com/orgball2608/scheduled-post-manager/pkg/errors"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
)

const storeKey = "scheduledPosts"

var start = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// countingKV records how many writes reach the backend.
type countingKV struct {
	kv.Repository
	writes int
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.writes++
	return c.Repository.Set(ctx, key, value)
}

func newStore(t *testing.T, repo kv.Repository, clock clockwork.Clock, failOpen bool) *StoreImpl {
	t.Helper()
	cfg := &config.Config{}
	cfg.Store.Key = storeKey
	cfg.Store.FailOpen = failOpen
	return New(Opts{
		KV:     repo,
		Clock:  clock,
		Logger: logger.New(logger.Opts{Env: logger.EnvProduction, Writer: io.Discard}),
		Config: cfg,
	})
}

func TestAddValidPost(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	repo := &countingKV{Repository: kv.NewMemory()}
	store := newStore(t, repo, clock, false)
	require.NoError(t, store.Load(ctx))

	first, err := store.Add(ctx, "  Hello  ", start.Add(2*time.Minute))
	require.NoError(t, err)
	second, err := store.Add(ctx, "World", start.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, "Hello", first.Content)
	assert.False(t, first.IsPublished)
	assert.Equal(t, start, first.CreatedAt)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, repo.writes)

	assert.Equal(t, []domain.Post{first, second}, store.Posts())
}

func TestAddRejectsInvalidDrafts(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	repo := &countingKV{Repository: kv.NewMemory()}
	store := newStore(t, repo, clock, false)
	require.NoError(t, store.Load(ctx))

	existing, err := store.Add(ctx, "keep me", start.Add(time.Hour))
	require.NoError(t, err)

	cases := []struct {
		name    string
		content string
		at      time.Time
		rule    string
	}{
		{"empty", "", start.Add(time.Hour), domain.RuleContentRequired},
		{"whitespace", "   ", start.Add(time.Hour), domain.RuleContentRequired},
		{"too long", strings.Repeat("x", 300), start.Add(time.Hour), domain.RuleContentTooLong},
		{"missing time", "Hello", time.Time{}, domain.RuleScheduledTimeRequired},
		{"now", "Hello", start, domain.RuleScheduledTimeNotFuture},
		{"past", "Hello", start.Add(-time.Minute), domain.RuleScheduledTimeNotFuture},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Add(ctx, tc.content, tc.at)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.rule, verr.Rule)
			assert.True(t, apperrors.IsInvalidInput(err))
		})
	}

	assert.Equal(t, []domain.Post{existing}, store.Posts())
	assert.Equal(t, 1, repo.writes, "rejected drafts must not be written")
}

func TestAddNeverTruncates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, kv.NewMemory(), clockwork.NewFakeClockAt(start), false)

	_, err := store.Add(ctx, strings.Repeat("a", 300), start.Add(time.Hour))
	require.Error(t, err)
	assert.Empty(t, store.Posts())

	post, err := store.Add(ctx, strings.Repeat("a", 280), start.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, post.Content, 280)
}

func TestAddRegeneratesCollidingIDs(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, kv.NewMemory(), clockwork.NewFakeClockAt(start), false)
	ids := []string{"same", "same", "same", "other"}
	store.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := store.Add(ctx, "one", start.Add(time.Hour))
	require.NoError(t, err)
	second, err := store.Add(ctx, "two", start.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "same", first.ID)
	assert.Equal(t, "other", second.ID)
}

func TestTickPublishesDuePostsOnce(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	repo := &countingKV{Repository: kv.NewMemory()}
	store := newStore(t, repo, clock, false)

	soon, err := store.Add(ctx, "soon", start.Add(time.Minute))
	require.NoError(t, err)
	later, err := store.Add(ctx, "later", start.Add(time.Hour))
	require.NoError(t, err)
	writesAfterAdd := repo.writes

	res, err := store.Tick(ctx, start.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Len(t, res.Posts, 2)
	assert.Equal(t, writesAfterAdd, repo.writes, "no-op tick must not write")

	res, err = store.Tick(ctx, start.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, res.Changed())
	require.Len(t, res.Published, 1)
	assert.Equal(t, soon.ID, res.Published[0].ID)
	assert.True(t, res.Published[0].IsPublished)
	assert.Equal(t, writesAfterAdd+1, repo.writes)

	res, err = store.Tick(ctx, start.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, writesAfterAdd+1, repo.writes)

	posts := store.Posts()
	assert.True(t, posts[0].IsPublished)
	assert.Equal(t, later.ID, posts[1].ID)
	assert.False(t, posts[1].IsPublished)
	assert.Equal(t, soon.CreatedAt, posts[0].CreatedAt)
}

func TestTickReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, kv.NewMemory(), clockwork.NewFakeClockAt(start), false)
	_, err := store.Add(ctx, "Hello", start.Add(time.Minute))
	require.NoError(t, err)

	res, err := store.Tick(ctx, start)
	require.NoError(t, err)
	res.Posts[0].Content = "mutated"

	assert.Equal(t, "Hello", store.Posts()[0].Content)
}

func TestHelloScenario(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	store := newStore(t, kv.NewMemory(), clock, false)
	require.NoError(t, store.Load(ctx))

	post, err := store.Add(ctx, "Hello", clock.Now().Add(2*time.Minute))
	require.NoError(t, err)

	posts := store.Posts()
	assert.Equal(t, 1, timeline.PendingCount(posts))
	assert.Empty(t, timeline.Published(timeline.SortedByScheduledTimeDescending(posts)))

	clock.Advance(2*time.Minute + time.Second)
	res, err := store.Tick(ctx, clock.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, timeline.PendingCount(res.Posts))
	published := timeline.Published(timeline.SortedByScheduledTimeDescending(res.Posts))
	require.Len(t, published, 1)
	assert.Equal(t, post.ID, published[0].ID)
}

func TestPersistedStateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	repo := kv.NewMemory()

	store := newStore(t, repo, clock, false)
	require.NoError(t, store.Load(ctx))
	_, err := store.Add(ctx, "first", start.Add(time.Minute))
	require.NoError(t, err)
	_, err = store.Add(ctx, "second", start.Add(time.Hour))
	require.NoError(t, err)
	_, err = store.Tick(ctx, start.Add(2*time.Minute))
	require.NoError(t, err)
	want := store.Posts()

	reloaded := newStore(t, repo, clock, false)
	require.NoError(t, reloaded.Load(ctx))
	got := reloaded.Posts()

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Content, got[i].Content)
		assert.Equal(t, want[i].IsPublished, got[i].IsPublished)
		assert.True(t, want[i].ScheduledTime.Equal(got[i].ScheduledTime))
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt))
	}
}

func TestLoadAbsentKeyStartsEmpty(t *testing.T) {
	store := newStore(t, kv.NewMemory(), clockwork.NewFakeClockAt(start), false)
	require.NoError(t, store.Load(context.Background()))
	assert.Empty(t, store.Posts())
}

func TestLoadCorruptBlobIsFatalByDefault(t *testing.T) {
	ctx := context.Background()
	repo := kv.NewMemory()
	require.NoError(t, repo.Set(ctx, storeKey, []byte(`[{"id":"1","scheduledTime":"soon"}]`)))

	store := newStore(t, repo, clockwork.NewFakeClockAt(start), false)
	err := store.Load(ctx)

	require.Error(t, err)
	assert.True(t, apperrors.IsStorageRead(err))
}

func TestLoadCorruptBlobFailsOpenWhenConfigured(t *testing.T) {
	ctx := context.Background()
	repo := kv.NewMemory()
	require.NoError(t, repo.Set(ctx, storeKey, []byte(`{garbage`)))

	store := newStore(t, repo, clockwork.NewFakeClockAt(start), true)
	require.NoError(t, store.Load(ctx))
	assert.Empty(t, store.Posts())

	_, err := store.Add(ctx, "fresh start", start.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, store.Posts(), 1)
}

func TestLoadBackendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_kv.NewMockRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), storeKey).Return(nil, false, errors.New("connection reset"))

	store := newStore(t, repo, clockwork.NewFakeClockAt(start), false)
	err := store.Load(context.Background())

	assert.True(t, apperrors.IsStorageRead(err))
	assert.ErrorContains(t, err, "connection reset")
}

func TestWriteFailureLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := mock_kv.NewMockRepository(ctrl)
	store := newStore(t, repo, clockwork.NewFakeClockAt(start), false)

	gomock.InOrder(
		repo.EXPECT().Set(gomock.Any(), storeKey, gomock.Any()).Return(nil),
		repo.EXPECT().Set(gomock.Any(), storeKey, gomock.Any()).Return(errors.New("disk full")),
		repo.EXPECT().Set(gomock.Any(), storeKey, gomock.Any()).Return(errors.New("disk full")),
	)

	post, err := store.Add(ctx, "Hello", start.Add(time.Minute))
	require.NoError(t, err)

	_, err = store.Add(ctx, "Lost", start.Add(time.Hour))
	assert.True(t, apperrors.IsStorageWrite(err))
	assert.Equal(t, []domain.Post{post}, store.Posts())

	_, err = store.Tick(ctx, start.Add(time.Minute))
	assert.True(t, apperrors.IsStorageWrite(err))
	assert.False(t, store.Posts()[0].IsPublished, "publication must not be committed when the write fails")
}
