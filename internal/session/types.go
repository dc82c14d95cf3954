package session

import (
	"context"
	"encoding/json"
	"time"

	"interviewd/internal/engine"
	"interviewd/internal/transcript"
)

// Engine is the capability surface of the external interview AI. Every call
// is remote, bounded by the gateway's timeout, and may fail with
// engine.ErrUnavailable.
type Engine interface {
	Start(ctx context.Context, industry, level string) (engine.StartResult, error)
	Advance(ctx context.Context, engineSessionID, text string) (engine.Action, error)
	Transcribe(ctx context.Context, audio []byte) (string, error)
	Analyze(ctx context.Context, text, industry, level string) (string, error)
	Question(ctx context.Context, industry, level string) (string, error)
}

// Emitter pushes events to the realtime channel of one session. Emitting to
// a session that has gone away is a silent no-op.
type Emitter interface {
	EmitAIMessage(sessionID, text string)
	EmitCandidateAck(sessionID, text string)
	EmitReport(sessionID string, report transcript.Report)
	EmitEngineReport(sessionID string, report json.RawMessage)
	EmitError(sessionID, message string)
}

// AudioQueue records lightweight audio-intake markers for operational
// visibility. Publish failures never affect session correctness.
type AudioQueue interface {
	PublishMarker(ctx context.Context, sessionID string, sizeBytes int) error
}

// Archiver persists a finished session outside the live path. It is called
// at most once per session, after the registry entry is gone.
type Archiver interface {
	ArchiveSession(id, industry, level string, startedAt, endedAt time.Time, turns []transcript.Turn) error
}
