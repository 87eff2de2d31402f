package commandimpl

import (
	"context"
	"fmt"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
	"github.com/orgball2608/scheduled-post-manager/pkg/formatter"
)

// AnnouncePublished is registered as a publication listener on the clock.
func (c *CommandImpl) AnnouncePublished(ctx context.Context, posts []domain.Post) {
	for _, p := range posts {
		if ctx.Err() != nil {
			return
		}
		text := fmt.Sprintf("📢 *Published*\n\n%s\n\n_%s_",
			formatter.EscapeMarkdownV2(p.Content),
			formatter.EscapeMarkdownV2(c.formatTime(p.ScheduledTime)),
		)
		if err := c.Telegram.SendMarkdownToDefaultChannel(text); err != nil {
			c.Logger.Error("Failed to announce published post", "post_id", p.ID, "error", err)
		}
	}
}
