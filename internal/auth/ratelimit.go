package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginLimiter rate-limits login attempts per client IP. Entries idle
// longer than the prune window are dropped so the map does not grow with
// every address that ever tried to log in.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const pruneAfter = 10 * time.Minute

func newLoginLimiter(perMinute float64, burst int) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(perMinute / 60.0),
		burst:    burst,
	}
}

// Allow reports whether the given IP may attempt a login now.
func (l *loginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now

	if len(l.limiters) > 1000 {
		l.prune(now)
	}
	return entry.limiter.Allow()
}

func (l *loginLimiter) prune(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > pruneAfter {
			delete(l.limiters, ip)
		}
	}
}
