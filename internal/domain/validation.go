package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/uniseg"

	apperrors "github.com/orgball2608/scheduled-post-manager/pkg/errors"
)

// MaxContentLength is the maximum number of user-perceived characters in a post.
const MaxContentLength = 280

// Validation rules reported by ValidationError.
const (
	RuleContentRequired        = "content_required"
	RuleContentTooLong         = "content_too_long"
	RuleScheduledTimeRequired  = "scheduled_time_required"
	RuleScheduledTimeNotFuture = "scheduled_time_not_future"
)

// ValidationError rejects a post draft. It matches errors.ErrInvalidInput.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid post (%s): %s", e.Rule, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ContentLength counts grapheme clusters, so an emoji with modifiers is one character.
func ContentLength(s string) int {
	n := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		n++
	}
	return n
}

// Validate checks a draft against the creation rules and returns the trimmed
// content to store. Content is never truncated.
func Validate(content string, scheduledTime, now time.Time) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", &ValidationError{
			Rule:    RuleContentRequired,
			Message: "post content must not be empty",
		}
	}
	if n := ContentLength(trimmed); n > MaxContentLength {
		return "", &ValidationError{
			Rule:    RuleContentTooLong,
			Message: fmt.Sprintf("post content is %d characters, the limit is %d", n, MaxContentLength),
		}
	}
	if scheduledTime.IsZero() {
		return "", &ValidationError{
			Rule:    RuleScheduledTimeRequired,
			Message: "scheduled time is required",
		}
	}
	if !scheduledTime.After(now) {
		return "", &ValidationError{
			Rule:    RuleScheduledTimeNotFuture,
			Message: "scheduled time must be in the future",
		}
	}
	return trimmed, nil
}
