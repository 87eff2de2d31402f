package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/orgball2608/scheduled-post-manager/internal/domain"
	"github.com/orgball2608/scheduled-post-manager/internal/timeline"
	"github.com/orgball2608/scheduled-post-manager/pkg/formatter"
)

const scheduleUsage = "Usage: /schedule <time> | <content>\nExample: /schedule 2026-10-16 18:30 | Launch day!"

// handleSchedule parses "/schedule <time> | <content>" and returns the reply.
func (c *CommandImpl) handleSchedule(ctx context.Context, args string) string {
	when, content, found := strings.Cut(args, "|")
	when = strings.TrimSpace(when)
	if !found || when == "" || strings.TrimSpace(content) == "" {
		return "Please fill in both the content and scheduled time.\n" + scheduleUsage
	}

	scheduledTime, err := dateparse.ParseIn(when, c.location)
	if err != nil {
		return fmt.Sprintf("Could not understand the time %q.\n%s", when, scheduleUsage)
	}

	now := c.Clock.Now()
	earliest := timeline.MinimumSelectableTime(now)
	if scheduledTime.Before(earliest) {
		return fmt.Sprintf("Please select a future date and time, no earlier than %s.", c.formatTime(earliest))
	}

	post, err := c.Store.Add(ctx, content, scheduledTime)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return validationMessage(verr)
		}
		c.Logger.Error("Failed to schedule post", "error", err)
		return "Could not save the post, please try again later."
	}

	pending := timeline.PendingCount(c.Store.Posts())
	return fmt.Sprintf("Scheduled for %s.\n%s post(s) scheduled.",
		c.formatTime(post.ScheduledTime), formatter.FormatNumber(pending))
}

func validationMessage(err *domain.ValidationError) string {
	switch err.Rule {
	case domain.RuleContentRequired, domain.RuleScheduledTimeRequired:
		return "Please fill in both the content and scheduled time."
	case domain.RuleContentTooLong:
		return fmt.Sprintf("Posts are limited to %d characters: %s.", domain.MaxContentLength, err.Message)
	case domain.RuleScheduledTimeNotFuture:
		return "Please select a future date and time."
	default:
		return err.Message
	}
}

func (c *CommandImpl) formatTime(t time.Time) string {
	return t.In(c.location).Format("Jan 2, 2006, 3:04 PM MST")
}
