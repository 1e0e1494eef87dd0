package fetch

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RateLimiter enforces a minimum delay between consecutive requests to the
// same host. Workers call ApplyDelay before a request and
// UpdateLastRequestTime after the attempt (success or failure).
type RateLimiter struct {
	mu           sync.Mutex
	lastRequest  map[string]time.Time // hostname -> last request attempt time
	defaultDelay time.Duration
	log          *logrus.Logger
}

// NewRateLimiter creates a RateLimiter
func NewRateLimiter(defaultDelay time.Duration, log *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		lastRequest:  make(map[string]time.Time),
		defaultDelay: defaultDelay,
		log:          log,
	}
}

// ApplyDelay sleeps until at least the configured delay has elapsed since the
// last request to host. A small jitter (+/- 10%) desynchronizes workers that
// woke at the same time.
func (rl *RateLimiter) ApplyDelay(host string) {
	minDelay := rl.defaultDelay
	if minDelay <= 0 {
		return
	}

	rl.mu.Lock()
	lastReqTime, exists := rl.lastRequest[host]
	rl.mu.Unlock() // Unlock before potentially sleeping

	if !exists {
		return
	}

	elapsed := time.Since(lastReqTime)
	if elapsed >= minDelay {
		return
	}

	sleep := minDelay - elapsed
	if jitterRange := int64(sleep) / 5; jitterRange > 0 {
		sleep += time.Duration(rand.Int63n(jitterRange)) - (sleep / 10)
	}
	if sleep <= 0 {
		return
	}

	rl.log.WithFields(logrus.Fields{
		"host": host, "sleep": sleep, "required_delay": minDelay,
	}).Debug("Rate limit applying sleep")
	time.Sleep(sleep)
}

// UpdateLastRequestTime records the current time as the last request attempt
// time for the host. Call after every HTTP request attempt to the host.
func (rl *RateLimiter) UpdateLastRequestTime(host string) {
	rl.mu.Lock()
	rl.lastRequest[host] = time.Now()
	rl.mu.Unlock()
}
