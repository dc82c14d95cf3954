package transcript

import (
	"sync"
	"time"
)

// Role identifies who produced a turn. There are exactly two speakers in an
// interview: the AI interviewer and the candidate.
type Role string

const (
	RoleAI        Role = "ai"
	RoleCandidate Role = "candidate"
)

// Turn is one utterance in a session's transcript. Turns are never mutated
// or removed once appended.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is the append-only transcript of one session. Append order is
// chronological and preserved exactly; readers only ever see copies.
type Log struct {
	mu    sync.Mutex
	turns []Turn
}

func NewLog() *Log {
	return &Log{}
}

// Append records a turn stamped with the current wall clock and returns it.
func (l *Log) Append(role Role, text string) Turn {
	turn := Turn{Role: role, Text: text, Timestamp: time.Now().UTC()}

	l.mu.Lock()
	l.turns = append(l.turns, turn)
	l.mu.Unlock()

	return turn
}

// Snapshot returns a copy of the transcript in append order. The copy is
// independent of the log: later appends do not show through.
func (l *Log) Snapshot() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns appended so far.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}
