package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"belongings/internal/httputil"
)

const limiterIdleTTL = 15 * time.Minute

// UserRateLimiter hands out one token bucket per user.
type UserRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*userBucket
	now      func() time.Time
	sweepAt  time.Time
}

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter allows perMinute requests per user with a burst of the
// same size. perMinute <= 0 disables limiting.
func NewUserRateLimiter(perMinute int) *UserRateLimiter {
	l := &UserRateLimiter{
		limit:    rate.Inf,
		burst:    1,
		limiters: make(map[string]*userBucket),
		now:      time.Now,
	}
	if perMinute > 0 {
		l.limit = rate.Limit(float64(perMinute) / 60)
		l.burst = perMinute
	}
	return l
}

// Reserve takes a token for userID. When none is available it returns false
// and how long until one will be.
func (l *UserRateLimiter) Reserve(userID string) (bool, time.Duration) {
	if l.limit == rate.Inf {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.limiters[userID]
	if !ok {
		b = &userBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *UserRateLimiter) sweep(now time.Time) {
	if now.Before(l.sweepAt) {
		return
	}
	for id, b := range l.limiters {
		if now.Sub(b.lastSeen) > limiterIdleTTL {
			delete(l.limiters, id)
		}
	}
	l.sweepAt = now.Add(limiterIdleTTL)
}

// RateLimit rejects requests over the user's budget with 429 and Retry-After.
// It must run after Auth.
func RateLimit(l *UserRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Reserve(httputil.GetUserID(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				httputil.RespondError(w, http.StatusTooManyRequests, "AI request limit reached, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
