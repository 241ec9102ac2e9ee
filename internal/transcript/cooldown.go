package transcript

import (
	"math/rand"
	"sync"
	"time"
)

const (
	defaultCooldownBase  = 5 * time.Second
	defaultCooldownCap   = 5 * time.Minute
	defaultCooldownReset = 15 * time.Minute
)

type cooldownEntry struct {
	nextAllowed time.Time
	consecutive int
	lastDelay   time.Duration
	lastLimited time.Time
}

// Cooldown tracks, per remote host key, how long to wait before the next
// attempt. It is the only state shared across concurrent requests; all access
// to it goes through a single mutex.
type Cooldown struct {
	mu      sync.Mutex
	entries map[string]*cooldownEntry

	base  time.Duration
	cap   time.Duration
	reset time.Duration

	now func() time.Time
	rng *rand.Rand
}

// NewCooldown creates a tracker with exponential per-host backoff. Zero
// durations select the defaults.
func NewCooldown(base, cap, reset time.Duration) *Cooldown {
	if base <= 0 {
		base = defaultCooldownBase
	}
	if cap <= 0 {
		cap = defaultCooldownCap
	}
	if reset <= 0 {
		reset = defaultCooldownReset
	}
	return &Cooldown{
		entries: make(map[string]*cooldownEntry),
		base:    base,
		cap:     cap,
		reset:   reset,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Allowed reports whether an attempt against host may start now.
func (c *Cooldown) Allowed(host string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[host]
	if !ok {
		return true
	}
	return !c.now().Before(e.nextAllowed)
}

// Record updates the host entry after an attempt. RateLimited grows the
// cooldown window, Success clears it, everything else leaves it untouched.
func (c *Cooldown) Record(host string, kind OutcomeKind) {
	c.RecordWithHint(host, kind, 0)
}

// RecordWithHint is Record with an optional backend-provided Retry-After
// hint, which takes precedence over the computed backoff when longer.
func (c *Cooldown) RecordWithHint(host string, kind OutcomeKind, retryAfter time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case KindSuccess:
		delete(c.entries, host)
	case KindRateLimited:
		now := c.now()
		e, ok := c.entries[host]
		if !ok {
			e = &cooldownEntry{}
			c.entries[host] = e
		}
		// A long quiet gap since the last 429 means the window has lapsed.
		if !e.lastLimited.IsZero() && now.Sub(e.lastLimited) > c.reset {
			e.consecutive = 0
			e.lastDelay = 0
		}

		delay := c.base << uint(e.consecutive)
		if delay > c.cap || delay <= 0 {
			delay = c.cap
		}
		// Additive jitter only, so the delay never shrinks between
		// consecutive rate limits for the same host.
		delay += time.Duration(c.rng.Int63n(int64(delay)/5 + 1))
		if delay < e.lastDelay {
			delay = e.lastDelay
		}
		if retryAfter > delay {
			delay = retryAfter
		}

		e.lastDelay = delay
		e.lastLimited = now
		e.nextAllowed = now.Add(delay)
		e.consecutive++
	}
}

// Consecutive returns the current consecutive rate-limit count for host.
func (c *Cooldown) Consecutive(host string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[host]; ok {
		return e.consecutive
	}
	return 0
}

// NextAllowed returns when host may be tried again, the zero time when it is
// not throttled. Used for diagnostics.
func (c *Cooldown) NextAllowed(host string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[host]; ok {
		return e.nextAllowed
	}
	return time.Time{}
}
