// Package timeline derives read-only views over a post collection. Every
// function returns a new slice and leaves its input untouched.
package timeline

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
)

// MinimumLeadTime keeps users from picking a time that is already past by the
// time the request is handled.
const MinimumLeadTime = time.Minute

// SortedByScheduledTimeDescending orders posts most-future-first. Posts with
// the same scheduled time keep their relative order.
func SortedByScheduledTimeDescending(posts []domain.Post) []domain.Post {
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b domain.Post) int {
		return b.ScheduledTime.Compare(a.ScheduledTime)
	})
	return sorted
}

// Published keeps published posts in input order.
func Published(posts []domain.Post) []domain.Post {
	return lo.Filter(posts, func(p domain.Post, _ int) bool {
		return p.IsPublished
	})
}

// Pending keeps unpublished posts in input order.
func Pending(posts []domain.Post) []domain.Post {
	return lo.Filter(posts, func(p domain.Post, _ int) bool {
		return !p.IsPublished
	})
}

func PendingCount(posts []domain.Post) int {
	return lo.CountBy(posts, func(p domain.Post) bool {
		return !p.IsPublished
	})
}

// MinimumSelectableTime is the earliest time a user may pick for a new post.
func MinimumSelectableTime(now time.Time) time.Time {
	return now.Add(MinimumLeadTime)
}
