package commandimpl

import (
	"fmt"
	"strings"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
	"github.com/orgball2608/scheduled-post-manager/internal/timeline"
	"github.com/orgball2608/scheduled-post-manager/pkg/formatter"
)

// Telegram caps messages at 4096 characters; long lists are cut.
const maxListed = 20

func (c *CommandImpl) usage() string {
	earliest := timeline.MinimumSelectableTime(c.Clock.Now())
	return strings.Join([]string{
		"Scheduled Post Manager",
		"",
		"/schedule <time> | <content> - schedule a post (up to 280 characters)",
		"/timeline - published posts",
		"/pending - posts waiting for their time",
		"/all - every post with its status",
		"/now - current time",
		"",
		"Earliest selectable time: " + c.formatTime(earliest),
	}, "\n")
}

func (c *CommandImpl) renderTimeline() string {
	published := timeline.Published(timeline.SortedByScheduledTimeDescending(c.Store.Posts()))
	if len(published) == 0 {
		return "No posts published yet\nScheduled posts will appear here when their time arrives"
	}

	var sb strings.Builder
	sb.WriteString("Published Timeline\n")
	for i, p := range published {
		if i == maxListed {
			fmt.Fprintf(&sb, "\n…and %s more", formatter.FormatNumber(len(published)-maxListed))
			break
		}
		fmt.Fprintf(&sb, "\nPublished · %s\n%s\nScheduled on %s\n",
			c.formatTime(p.ScheduledTime), p.Content, c.formatTime(p.CreatedAt))
	}
	return sb.String()
}

func (c *CommandImpl) renderPending() string {
	posts := c.Store.Posts()
	count := timeline.PendingCount(posts)
	if count == 0 {
		return "No posts scheduled"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s post(s) scheduled\n", formatter.FormatNumber(count))
	c.writeList(&sb, timeline.Pending(timeline.SortedByScheduledTimeDescending(posts)))
	return sb.String()
}

func (c *CommandImpl) renderAll() string {
	posts := timeline.SortedByScheduledTimeDescending(c.Store.Posts())
	if len(posts) == 0 {
		return "No posts yet"
	}

	var sb strings.Builder
	sb.WriteString("All Posts\n")
	c.writeList(&sb, posts)
	return sb.String()
}

func (c *CommandImpl) writeList(sb *strings.Builder, posts []domain.Post) {
	for i, p := range posts {
		if i == maxListed {
			fmt.Fprintf(sb, "…and %s more\n", formatter.FormatNumber(len(posts)-maxListed))
			return
		}
		fmt.Fprintf(sb, "%s · %s · %s\n",
			p.Status(), p.ScheduledTime.In(c.location).Format("Jan 02, 15:04"), formatter.Truncate(p.Content, 40))
	}
}

func (c *CommandImpl) renderNow() string {
	now := c.Clock.Now()
	text := "Current time: " + c.formatTime(now)
	if pending := timeline.PendingCount(c.Store.Posts()); pending > 0 {
		text += fmt.Sprintf("\n%s post(s) scheduled", formatter.FormatNumber(pending))
	}
	return text
}
