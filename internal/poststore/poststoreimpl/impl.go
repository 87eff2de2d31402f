package poststoreimpl

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/scheduled-post-manager/internal/domain"
	"github.com/orgball2608/scheduled-post-manager/internal/poststore"
	"github.com/orgball2608/scheduled-post-manager/internal/repositories/kv"
	"github.com/orgball2608/scheduled-post-manager/internal/timeline"
	"github.com/orgball2608/scheduled-post-manager/pkg/config"
	apperrors "github.com/orgball2608/scheduled-post-manager/pkg/errors"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	KV     kv.Repository
	Clock  clockwork.Clock
	Logger logger.Logger
	Config *config.Config
}

// StoreImpl owns the post collection. Every mutation reads the full state,
// computes the next full state, writes it, and only then commits it in memory,
// all under one lock.
type StoreImpl struct {
	kv       kv.Repository
	clock    clockwork.Clock
	logger   logger.Logger
	key      string
	failOpen bool
	newID    func() string

	mu    sync.Mutex
	posts []domain.Post
}

func New(opts Opts) *StoreImpl {
	return &StoreImpl{
		kv:       opts.KV,
		clock:    opts.Clock,
		logger:   opts.Logger.WithComponent("PostStore"),
		key:      opts.Config.Store.Key,
		failOpen: opts.Config.Store.FailOpen,
		newID:    uuid.NewString,
	}
}

var _ poststore.Store = (*StoreImpl)(nil)

func (s *StoreImpl) Load(ctx context.Context) error {
	posts, err := s.read(ctx)
	if err != nil {
		if !s.failOpen {
			return err
		}
		s.logger.Error("Stored posts are unreadable, starting with an empty collection", "key", s.key, "error", err)
		posts = nil
	}

	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()

	pendingPosts.Set(float64(timeline.PendingCount(posts)))
	s.logger.Info("Posts loaded", "key", s.key, "total", len(posts), "pending", timeline.PendingCount(posts))
	return nil
}

func (s *StoreImpl) read(ctx context.Context) ([]domain.Post, error) {
	data, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeStorageRead, "failed to read posts")
	}
	if !found {
		return nil, nil
	}
	posts, err := decodePosts(data)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeStorageRead, "failed to read posts")
	}
	return posts, nil
}

func (s *StoreImpl) write(ctx context.Context, posts []domain.Post) error {
	data, err := encodePosts(posts)
	if err == nil {
		err = s.kv.Set(ctx, s.key, data)
	}
	if err != nil {
		writeErrors.Inc()
		return apperrors.WrapWithCode(err, apperrors.CodeStorageWrite, "failed to write posts")
	}
	return nil
}

func (s *StoreImpl) Add(ctx context.Context, content string, scheduledTime time.Time) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	trimmed, err := domain.Validate(content, scheduledTime, now)
	if err != nil {
		return domain.Post{}, err
	}

	post := domain.Post{
		ID:            s.uniqueID(),
		Content:       trimmed,
		ScheduledTime: scheduledTime,
		CreatedAt:     now,
		IsPublished:   false,
	}

	next := append(slices.Clone(s.posts), post)
	if err := s.write(ctx, next); err != nil {
		return domain.Post{}, err
	}
	s.posts = next

	postsAdded.Inc()
	pendingPosts.Set(float64(timeline.PendingCount(next)))
	s.logger.Info("Post scheduled", "post_id", post.ID, "scheduled_time", post.ScheduledTime)
	return post, nil
}

// uniqueID must be called with mu held.
func (s *StoreImpl) uniqueID() string {
	for {
		id := s.newID()
		if !slices.ContainsFunc(s.posts, func(p domain.Post) bool { return p.ID == id }) {
			return id
		}
	}
}

func (s *StoreImpl) Tick(ctx context.Context, now time.Time) (poststore.TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next []domain.Post
	var published []domain.Post
	for i, p := range s.posts {
		if !p.IsDue(now) {
			continue
		}
		if next == nil {
			next = slices.Clone(s.posts)
		}
		next[i].IsPublished = true
		published = append(published, next[i])
	}

	if len(published) == 0 {
		return poststore.TickResult{Posts: slices.Clone(s.posts)}, nil
	}

	if err := s.write(ctx, next); err != nil {
		return poststore.TickResult{}, fmt.Errorf("failed to publish %d post(s): %w", len(published), err)
	}
	s.posts = next

	postsPublished.Add(float64(len(published)))
	pendingPosts.Set(float64(timeline.PendingCount(next)))
	for _, p := range published {
		s.logger.Info("Post published", "post_id", p.ID, "scheduled_time", p.ScheduledTime)
	}

	return poststore.TickResult{
		Posts:     slices.Clone(next),
		Published: published,
	}, nil
}

func (s *StoreImpl) Posts() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.posts)
}
