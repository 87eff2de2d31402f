package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles commands per Telegram user.
type Limiter interface {
	// Allow consumes a token for userID. When it returns false, retryAfter is
	// how long the user has to wait for the next token.
	Allow(userID int64) (ok bool, retryAfter time.Duration)
}

// InMemoryLimiter keeps one token bucket per user in memory.
type InMemoryLimiter struct {
	users map[int64]*rate.Limiter
	mu    sync.Mutex
	r     rate.Limit
	b     int
	now   func() time.Time
}

// NewInMemoryLimiter allows requests per period with the given burst.
// Example: NewInMemoryLimiter(1, 5*time.Second, 3) -> one command every 5 seconds, bursts of 3.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	return &InMemoryLimiter{
		users: make(map[int64]*rate.Limiter),
		r:     rate.Every(per / time.Duration(requests)),
		b:     burst,
		now:   time.Now,
	}
}

var _ Limiter = (*InMemoryLimiter)(nil)

func (l *InMemoryLimiter) Allow(userID int64) (bool, time.Duration) {
	l.mu.Lock()
	limiter, exists := l.users[userID]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.users[userID] = limiter
	}
	l.mu.Unlock()

	now := l.now()
	res := limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}
