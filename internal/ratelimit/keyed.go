package ratelimit

import (
	"sync"
	"time"

	"github.com/garyellow/itdept-site/internal/metrics"
)

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter for metrics (e.g., "visitor")
	Name string

	// Token bucket settings
	Burst      float64 // Maximum tokens (burst capacity)
	RefillRate float64 // Tokens refilled per second

	// CleanupPeriod is how often idle limiters are removed.
	CleanupPeriod time.Duration

	// Optional metrics reporter
	Metrics *metrics.Metrics
}

// KeyedLimiter tracks a separate token bucket per key (visitor id) and
// periodically drops buckets that have refilled completely.
type KeyedLimiter struct {
	mu       sync.RWMutex
	entries  map[string]*Limiter
	config   KeyedConfig
	onDrop   func()
	onUpdate func(count int)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewKeyedLimiter creates a new per-key rate limiter and starts its cleanup loop.
//
//	limiter := NewKeyedLimiter(KeyedConfig{
//	    Name:          "visitor",
//	    Burst:         30,
//	    RefillRate:    5,
//	    CleanupPeriod: 5 * time.Minute,
//	})
//	defer limiter.Stop()
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}

	kl := &KeyedLimiter{
		entries: make(map[string]*Limiter),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	if cfg.Metrics != nil {
		kl.onDrop = func() {
			cfg.Metrics.RecordRateLimiterDrop(cfg.Name)
		}
		kl.onUpdate = func(count int) {
			cfg.Metrics.SetRateLimiterKeys(cfg.Name, count)
		}
	}

	go kl.cleanupLoop()

	return kl
}

// Allow checks if a request for the given key is allowed.
// An empty key is always allowed.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	if kl.getOrCreate(key).Allow() {
		return true
	}
	if kl.onDrop != nil {
		kl.onDrop()
	}
	return false
}

// RetryAfter returns how long the key must wait for its next token.
func (kl *KeyedLimiter) RetryAfter(key string) time.Duration {
	kl.mu.RLock()
	limiter, exists := kl.entries[key]
	kl.mu.RUnlock()

	if !exists {
		return 0
	}
	return limiter.RetryAfter()
}

// getOrCreate returns the limiter for a key, creating it if needed.
func (kl *KeyedLimiter) getOrCreate(key string) *Limiter {
	kl.mu.RLock()
	limiter, exists := kl.entries[key]
	kl.mu.RUnlock()

	if exists {
		return limiter
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = kl.entries[key]; exists {
		return limiter
	}

	limiter = New(kl.config.Burst, kl.config.RefillRate)
	kl.entries[key] = limiter
	return limiter
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

// cleanup removes limiters whose buckets are full.
func (kl *KeyedLimiter) cleanup() {
	kl.mu.Lock()
	for key, limiter := range kl.entries {
		if limiter.IsFull() {
			delete(kl.entries, key)
		}
	}
	activeCount := len(kl.entries)
	kl.mu.Unlock()

	if kl.onUpdate != nil {
		kl.onUpdate(activeCount)
	}
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.cleanup()
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() { close(kl.stopCh) })
}
