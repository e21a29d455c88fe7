// Package cache holds small in-process caches for computed views.
package cache

import (
	"context"
	"time"

	applog "expensetracker/internal/log"
)

// Cache defines a generic keyed cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry.
	Purge()
	Size() int
}

// Cleaner is implemented by caches that expire entries.
type Cleaner interface {
	CleanExpired() int
}

// StatsReporter is implemented by caches that count lookups.
type StatsReporter interface {
	Stats() (hits, misses int64)
}

// Manager periodically removes expired entries from registered caches.
type Manager struct {
	caches []Cleaner
	logger *applog.Logger
}

func NewManager(caches ...Cleaner) *Manager {
	return &Manager{caches: caches}
}

// WithLogger makes every sweep report removals and lookup counters.
func (m *Manager) WithLogger(l *applog.Logger) *Manager {
	m.logger = l
	return m
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// CleanAll sweeps every registered cache once and returns the number of
// removed entries.
func (m *Manager) CleanAll() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps on every interval tick until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep runs CleanAll and logs the result together with the summed hit and
// miss counters of every cache that reports them.
func (m *Manager) Sweep() int {
	removed := m.CleanAll()
	if m.logger == nil {
		return removed
	}
	var hits, misses int64
	for _, c := range m.caches {
		if r, ok := c.(StatsReporter); ok {
			h, ms := r.Stats()
			hits += h
			misses += ms
		}
	}
	m.logger.Info("Cache sweep complete", "removed", removed, "hits", hits, "misses", misses, "caches", len(m.caches))
	return removed
}
