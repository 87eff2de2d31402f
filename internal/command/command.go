package command

import (
	"context"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
)

type Client interface {
	// HandleCommand serves bot commands until ctx is done.
	HandleCommand(ctx context.Context) error

	// AnnouncePublished posts freshly published posts to the default channel.
	AnnouncePublished(ctx context.Context, posts []domain.Post)
}
