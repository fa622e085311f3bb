package waitlist

import (
	"sync"
	"time"
)

// ControllerFactory builds the SignupController for a new session.
type ControllerFactory func() *SignupController

type sessionEntry struct {
	controller *SignupController
	lastSeen   time.Time
}

// SessionRegistry keeps one SignupController per page session, the way a page
// keeps one form component for its lifetime.
type SessionRegistry struct {
	newController ControllerFactory
	ttl           time.Duration
	metrics       *Metrics
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ops      uint64
}

func NewSessionRegistry(newController ControllerFactory, ttl time.Duration, metrics *Metrics) *SessionRegistry {
	return &SessionRegistry{
		newController: newController,
		ttl:           ttl,
		metrics:       metrics,
		now:           time.Now,
		sessions:      make(map[string]*sessionEntry),
	}
}

// Get returns the controller for id, creating it on first use.
func (r *SessionRegistry) Get(id string) *SignupController {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		entry = &sessionEntry{controller: r.newController()}
		r.sessions[id] = entry
	}
	entry.lastSeen = now

	r.ops++
	if r.ops%256 == 0 {
		r.evictLocked(now)
	}
	r.metrics.setSessions(len(r.sessions))

	return entry.controller
}

// Lookup returns the controller for id without creating one.
func (r *SessionRegistry) Lookup(id string) (*SignupController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.controller, true
}

// Evict drops sessions idle for longer than the TTL and returns how many were removed.
func (r *SessionRegistry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.evictLocked(r.now())
	r.metrics.setSessions(len(r.sessions))
	return removed
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) evictLocked(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}

	cutoff := now.Add(-r.ttl)
	removed := 0
	for id, entry := range r.sessions {
		// A session with a submission in flight is never dropped.
		if entry.lastSeen.Before(cutoff) && !entry.controller.State().Busy() {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
