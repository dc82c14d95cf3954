package session

import (
	"errors"
	"sync"
)

// ErrSessionExists is returned by Create when an id is already registered.
// Ids are fresh uuids, so hitting this indicates a caller bug.
var ErrSessionExists = errors.New("session id already exists")

// Registry is the process-wide map of live sessions. Connection handlers run
// on their own goroutines, so unlike a single-threaded event loop the map
// needs explicit locking.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create allocates a session for id: empty transcript, no profile, no engine
// handle.
func (r *Registry) Create(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return nil, ErrSessionExists
	}

	sess := newSession(id)
	r.sessions[id] = sess
	return sess, nil
}

// Get looks up a live session. A miss is expected after disconnect races and
// must be treated as a no-op by callers.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	return sess, ok
}

// Remove deletes a session. Idempotent.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
