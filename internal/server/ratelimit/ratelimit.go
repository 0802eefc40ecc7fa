// Package ratelimit provides per-client request limiting on top of
// golang.org/x/time/rate token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an unused bucket is kept before cleanup drops it.
const idleTTL = time.Hour

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

type bucket struct {
	limiter    *rate.Limiter
	capacity   int
	lastAccess time.Time
}

// Limiter manages one token bucket per client, endpoint and method.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}

	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	cfg := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if cfg == nil {
		cfg = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return true, Info{Allowed: true}
	}

	// Prefix-matched endpoints share one bucket per tier.
	key := clientID + ":" + method + ":" + endpoint
	if cfg.Path != "" {
		key = clientID + ":" + cfg.Method + ":" + cfg.Path
	}

	now := l.now()
	b := l.bucket(key, cfg, now)

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     cfg.Limit,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now.Add(untilFull(tokens, b.capacity, b.limiter.Limit())),
	}
	if !allowed {
		info.RetryAfter = untilFull(tokens, int(math.Floor(tokens))+1, b.limiter.Limit())
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, cfg *EndpointConfig, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		capacity := cfg.Burst
		if capacity <= 0 {
			capacity = cfg.Limit
		}
		every := cfg.Window / time.Duration(cfg.Limit)
		b = &bucket{
			limiter:  rate.NewLimiter(rate.Every(every), capacity),
			capacity: capacity,
		}
		l.buckets[key] = b
	}
	b.lastAccess = now
	return b
}

// untilFull returns how long a bucket holding tokens needs to reach target.
func untilFull(tokens float64, target int, r rate.Limit) time.Duration {
	missing := float64(target) - tokens
	if missing <= 0 || r <= 0 {
		return 0
	}
	return time.Duration(missing / float64(r) * float64(time.Second))
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets that have not been used for idleTTL.
func (l *Limiter) cleanupBuckets() {
	cutoff := l.now().Add(-idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Size returns the number of live buckets.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
