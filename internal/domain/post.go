package domain

import "time"

// Post is a user-authored text item with a future publish time.
type Post struct {
	ID            string
	Content       string
	ScheduledTime time.Time
	CreatedAt     time.Time
	IsPublished   bool
}

// IsDue reports whether the post is still pending and its scheduled time has
// been reached.
func (p Post) IsDue(now time.Time) bool {
	return !p.IsPublished && !p.ScheduledTime.After(now)
}

// Status is the human label of the publication state.
func (p Post) Status() string {
	if p.IsPublished {
		return "Published"
	}
	return "Pending"
}
