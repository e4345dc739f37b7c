// Package cache holds the in-process caches used for AI answers.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cache is the read/write surface shared by cache implementations.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches with expiring entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically sweeps expired entries from registered caches.
type Manager struct {
	mu       sync.Mutex
	cleaners map[string]Cleaner
	stop     chan struct{}
	done     chan struct{}
	started  bool
	once     sync.Once
}

func NewManager() *Manager {
	return &Manager{
		cleaners: make(map[string]Cleaner),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Register adds c under name. Registering the same name again replaces it.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaners[name] = c
}

// Sweep runs one cleanup pass and returns the removed count per cache.
func (m *Manager) Sweep() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := make(map[string]int, len(m.cleaners))
	for name, c := range m.cleaners {
		removed[name] = c.CleanExpired()
	}
	return removed
}

// Stats returns usage of the registered caches that report it, by name.
func (m *Manager) Stats() map[string]Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Stats, len(m.cleaners))
	for name, c := range m.cleaners {
		if sc, ok := c.(interface{ Stats() Stats }); ok {
			out[name] = sc.Stats()
		}
	}
	return out
}

// StartCleanup sweeps every interval until Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for name, n := range m.Sweep() {
					if n > 0 {
						slog.Debug("Expired cache entries removed", "cache", name, "count", n)
					}
				}
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup loop. It is safe to call more than once, and before
// StartCleanup.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stop)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.done
		}
	})
}
