package poststore

import (
	"context"
	"time"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
)

// TickResult is the outcome of one publication pass. Published is empty when
// nothing was due, in which case nothing was written.
type TickResult struct {
	Posts     []domain.Post
	Published []domain.Post
}

// Changed reports whether the pass published anything.
func (r TickResult) Changed() bool {
	return len(r.Published) > 0
}

//go:generate go run go.uber.org/mock/mockgen -source=poststore.go -destination=mocks/mock.go
type Store interface {
	// Load replaces the in-memory collection with the durable copy.
	Load(ctx context.Context) error

	// Add validates and stores a new pending post, then persists the collection.
	Add(ctx context.Context, content string, scheduledTime time.Time) (domain.Post, error)

	// Tick publishes every pending post whose scheduled time is at or before now.
	Tick(ctx context.Context, now time.Time) (TickResult, error)

	// Posts returns a copy of the collection in insertion order.
	Posts() []domain.Post
}
