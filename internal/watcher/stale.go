package watcher

import "sync"

// Staleness records whether the corpus changed after the store was built.
type Staleness struct {
	mu      sync.RWMutex
	changes int
	last    *Change
}

// Mark records a change. It is shaped to be passed as a Watcher callback.
func (s *Staleness) Mark(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes++
	s.last = &c
}

// Stale reports whether any change was recorded, how many, and the latest.
func (s *Staleness) Stale() (bool, int, *Change) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return false, 0, nil
	}
	last := *s.last
	return true, s.changes, &last
}
