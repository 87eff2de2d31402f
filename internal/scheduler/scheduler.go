package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
)

var ErrAlreadyStarted = errors.New("publication clock already started")

// PublishedFunc is called after a tick published at least one post.
type PublishedFunc func(ctx context.Context, posts []domain.Post)

//go:generate go run go.uber.org/mock/mockgen -source=scheduler.go -destination=mocks/mock.go
type Clock interface {
	// Start begins ticking until Stop is called or ctx is done.
	Start(ctx context.Context) error

	// Stop halts ticking. No tick runs after Stop returns.
	Stop() error

	// Now is the current time as of the latest tick.
	Now() time.Time

	// OnPublished registers fn to be called with the posts each tick publishes.
	OnPublished(fn PublishedFunc)
}
