// Package lockstore provides named mutexes for serializing work on a shared
// key: lifecycle operations on one document id, history appends on one
// session id. Idle entries are swept periodically so the map does not grow
// with every session ever seen.
package lockstore

import (
	"sync"
	"time"
)

type lockEntry struct {
	mutex    sync.Mutex
	refs     int
	lastUsed time.Time
}

type LockStore struct {
	mutex         sync.Mutex
	entries       map[string]*lockEntry
	timeProvider  TimeProvider
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

func New() *LockStore {
	return &LockStore{
		entries:      make(map[string]*lockEntry),
		timeProvider: &realTimeProvider{},
	}
}

// Lock blocks until the key's mutex is held and returns the unlock function.
func (s *LockStore) Lock(key string) func() {
	s.mutex.Lock()
	entry, exists := s.entries[key]
	if !exists {
		entry = &lockEntry{}
		s.entries[key] = entry
	}
	entry.refs++
	s.mutex.Unlock()

	entry.mutex.Lock()

	return func() {
		entry.mutex.Unlock()
		s.mutex.Lock()
		entry.refs--
		entry.lastUsed = s.timeProvider.Now()
		s.mutex.Unlock()
	}
}

// StartCleanup starts a goroutine that periodically drops lock entries that
// have been idle longer than threshold.
func (s *LockStore) StartCleanup(threshold time.Duration, cleanupInterval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.performCleanup(threshold)
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (s *LockStore) StopCleanup() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
	}
}

func (s *LockStore) performCleanup(threshold time.Duration) {
	now := s.timeProvider.Now()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key, entry := range s.entries {
		if entry.refs == 0 && !entry.lastUsed.IsZero() && now.Sub(entry.lastUsed) > threshold {
			delete(s.entries, key)
		}
	}
}

func (s *LockStore) size() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.entries)
}
