// Package lock provides in-process serialization of mutating operations by
// series identity. The store gives no structural guarantee against two
// writers interleaving reads and writes of a series' materialization cursor,
// so every generate-step, edit and delete must hold the series' lock for its
// duration. Operations on distinct series stay independent.
package lock

import (
	"sync"

	"github.com/google/uuid"
)

// seriesLock tracks one series' mutex together with the number of holders
// and waiters, so idle locks can be dropped from the map.
type seriesLock struct {
	mu   sync.Mutex
	refs int
}

// SeriesLocker is a keyed mutual-exclusion lock over series identities.
type SeriesLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*seriesLock
}

// NewSeriesLocker creates a new series locker.
func NewSeriesLocker() *SeriesLocker {
	return &SeriesLocker{
		locks: make(map[uuid.UUID]*seriesLock),
	}
}

// Lock acquires the exclusive lock for the given series identity, blocking
// until it is available.
func (l *SeriesLocker) Lock(id uuid.UUID) {
	l.mu.Lock()
	entry, exists := l.locks[id]
	if !exists {
		entry = &seriesLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the lock for the given series identity.
func (l *SeriesLocker) Unlock(id uuid.UUID) {
	l.mu.Lock()
	entry, exists := l.locks[id]
	if exists {
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
	}
	l.mu.Unlock()

	if exists {
		entry.mu.Unlock()
	}
}

// Do runs fn while holding the lock for the given series identity.
func (l *SeriesLocker) Do(id uuid.UUID, fn func() error) error {
	l.Lock(id)
	defer l.Unlock(id)
	return fn()
}
