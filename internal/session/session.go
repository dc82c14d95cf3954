// Package session owns live interview sessions: the registry that maps
// session ids to state, and the orchestrator that drives each session's
// state machine in response to client events.
package session

import (
	"sync"
	"time"

	"interviewd/internal/transcript"
)

// State is where a session is in its lifecycle.
type State int

const (
	// StateIdle: connected, no interview started.
	StateIdle State = iota
	// StateStarting: start requested, awaiting the engine's response.
	StateStarting
	// StateEngineActive: the engine drives the conversation through advance.
	StateEngineActive
	// StateFallbackActive: no engine handle; each turn gets a one-shot analyze.
	StateFallbackActive
	// StateEnded: the engine closed the interview; no further questions expected.
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateEngineActive:
		return "engine_active"
	case StateFallbackActive:
		return "fallback_active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session is one candidate's live interview. It exists only while the client
// is connected and is owned by its registry entry; no persistence.
type Session struct {
	ID         string
	StartedAt  time.Time
	Transcript *transcript.Log

	mu              sync.Mutex
	state           State
	industry        string
	level           string
	engineSessionID string
}

func newSession(id string) *Session {
	return &Session{
		ID:         id,
		StartedAt:  time.Now().UTC(),
		Transcript: transcript.NewLog(),
		state:      StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Profile returns the candidate-supplied industry and level.
func (s *Session) Profile() (industry, level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.industry, s.level
}

// EngineSessionID returns the remote engine handle, or "" in fallback mode.
func (s *Session) EngineSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engineSessionID
}

// beginStart moves Idle → Starting and records the immutable profile.
// It reports false if the session is past Idle, in which case nothing
// changes: restarting an interview is not supported.
func (s *Session) beginStart(industry, level string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return false
	}

	s.state = StateStarting
	s.industry = industry
	s.level = level
	return true
}

// activateEngine stores the engine handle exactly once and moves to
// EngineActive. The handle is never cleared or reassigned afterwards.
func (s *Session) activateEngine(engineSessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engineSessionID = engineSessionID
	s.state = StateEngineActive
}

// activateFallback moves to FallbackActive with no engine handle.
func (s *Session) activateFallback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFallbackActive
}

// end marks the interview finished. The session object survives until the
// client disconnects.
func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateEnded
}
