package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"interviewd/internal/engine"
	"interviewd/internal/logging"
	"interviewd/internal/metrics"
	"interviewd/internal/transcript"
)

const (
	// fallbackOpeningQuestion is the synthesized opening turn when the engine
	// cannot start. The fallback path must always produce an opening turn.
	fallbackOpeningQuestion = "Tell me about yourself."

	// fallbackReplyPlaceholder stands in for an empty analyze reply.
	fallbackReplyPlaceholder = "Thank you for your answer."

	// emptyTranscriptionNotice is appended as an AI turn when audio
	// transcribes to nothing intelligible.
	emptyTranscriptionNotice = "Audio received, but transcription was empty. Please try again."

	engineUnavailableNotice = "AI service temporarily unavailable"
)

// Orchestrator drives the per-session state machine: it consumes client
// events, calls the engine, appends transcript turns, and emits realtime
// events back. All in-memory mutations happen synchronously between engine
// calls, so concurrent events for one session keep arrival order in the
// transcript.
type Orchestrator struct {
	registry *Registry
	engine   Engine
	emitter  Emitter
	queue    AudioQueue
	archiver Archiver
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewOrchestrator wires the orchestrator to its collaborators. Queue,
// archiver, and metrics may be nil.
func NewOrchestrator(registry *Registry, eng Engine, emitter Emitter, queue AudioQueue, archiver Archiver, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		engine:   eng,
		emitter:  emitter,
		queue:    queue,
		archiver: archiver,
		metrics:  m,
		log:      logging.WithComponent("orchestrator"),
	}
}

// Connect allocates a fresh session with a never-reused id.
func (o *Orchestrator) Connect() *Session {
	for {
		sess, err := o.registry.Create(uuid.NewString())
		if err != nil {
			continue
		}

		o.metrics.RecordConnection(true)
		o.log.Info().Str("sessionId", sess.ID).Msg("session connected")
		return sess
	}
}

// Start begins the interview for a session. A second start on the same
// session is rejected: profile and engine handle are set once and immutable.
func (o *Orchestrator) Start(ctx context.Context, sessionID, industry, level string) {
	sess, ok := o.registry.Get(sessionID)
	if !ok {
		return
	}

	industry = strings.TrimSpace(industry)
	level = strings.TrimSpace(level)

	if !sess.beginStart(industry, level) {
		o.emitter.EmitError(sessionID, "interview already started")
		return
	}

	res, err := o.engine.Start(ctx, industry, level)
	if !o.live(sessionID) {
		return
	}

	if err != nil {
		o.log.Warn().Err(err).Str("sessionId", sessionID).Msg("engine start failed, using fallback")
		o.emitter.EmitError(sessionID, "Failed to start interview engine. Using fallback.")
		sess.activateFallback()
		o.metrics.RecordInterviewStarted("fallback")
		o.sendFallbackOpening(ctx, sess)
		return
	}

	sess.activateEngine(res.SessionID)
	o.metrics.RecordInterviewStarted("engine")
	o.log.Info().Str("sessionId", sessionID).Str("engineSessionId", res.SessionID).Msg("engine session started")

	question := res.Question
	if question == "" {
		question = fallbackOpeningQuestion
	}
	o.appendAI(sess, question)
}

// sendFallbackOpening asks the legacy question endpoint for an opener and
// falls back to the default text, so the session never stalls with zero
// turns.
func (o *Orchestrator) sendFallbackOpening(ctx context.Context, sess *Session) {
	industry, level := sess.Profile()

	question, err := o.engine.Question(ctx, industry, level)
	if !o.live(sess.ID) {
		return
	}
	if err != nil || question == "" {
		question = fallbackOpeningQuestion
	}

	o.appendAI(sess, question)
}

// CandidateText handles a free-text candidate turn. The text is trimmed;
// an empty result is still accepted and recorded.
func (o *Orchestrator) CandidateText(ctx context.Context, sessionID, text string) {
	sess, ok := o.registry.Get(sessionID)
	if !ok {
		return
	}

	text = strings.TrimSpace(text)
	o.appendCandidate(sess, text)
	o.respond(ctx, sess, text)
}

// CandidateAudio handles an opaque audio payload: marker to the intake
// queue, normalize to bytes, transcribe, then treat a non-empty transcript
// like a candidate-text turn.
func (o *Orchestrator) CandidateAudio(ctx context.Context, sessionID string, blob json.RawMessage) {
	sess, ok := o.registry.Get(sessionID)
	if !ok {
		return
	}

	if isAbsentBlob(blob) {
		o.log.Warn().Str("sessionId", sessionID).Msg("audio event without blob")
		return
	}

	audio, err := DecodeAudioBlob(blob)
	if err != nil {
		o.emitter.EmitError(sessionID, "Unsupported audio format")
		return
	}

	o.metrics.RecordAudioBlob(len(audio))
	o.publishMarker(ctx, sessionID, len(audio))

	text, err := o.engine.Transcribe(ctx, audio)
	if !o.live(sessionID) {
		return
	}
	if err != nil {
		o.log.Warn().Err(err).Str("sessionId", sessionID).Msg("transcription failed")
		o.emitter.EmitError(sessionID, "Audio transcription failed")
		return
	}

	if text == "" {
		// Nothing intelligible was said: no candidate turn is recorded.
		o.appendAI(sess, emptyTranscriptionNotice)
		return
	}

	o.appendCandidate(sess, text)
	o.respond(ctx, sess, text)
}

// Report computes the current report from the transcript and emits it.
// It is a pure read and never mutates the session.
func (o *Orchestrator) Report(sessionID string) {
	sess, ok := o.registry.Get(sessionID)
	if !ok {
		return
	}

	industry, level := sess.Profile()
	report := transcript.BuildReport(industry, level, sess.Transcript.Snapshot())
	o.emitter.EmitReport(sessionID, report)
	o.metrics.RecordReport()
}

// Disconnect removes the session and archives it best-effort. Late engine
// results for the id become no-ops because the registry entry is gone.
func (o *Orchestrator) Disconnect(sessionID string) {
	sess, ok := o.registry.Get(sessionID)
	if !ok {
		return
	}

	o.registry.Remove(sessionID)
	o.metrics.RecordConnection(false)
	o.log.Info().Str("sessionId", sessionID).Msg("session disconnected")

	turns := sess.Transcript.Snapshot()
	if o.archiver == nil || len(turns) == 0 {
		return
	}

	industry, level := sess.Profile()
	if err := o.archiver.ArchiveSession(sessionID, industry, level, sess.StartedAt, time.Now().UTC(), turns); err != nil {
		o.log.Warn().Err(err).Str("sessionId", sessionID).Msg("session archive failed")
	}
}

// respond produces the AI side of a candidate turn according to the
// session's mode. Engine failures emit an error notice and leave all state
// unchanged so the candidate can retry.
func (o *Orchestrator) respond(ctx context.Context, sess *Session, text string) {
	switch sess.State() {
	case StateEngineActive:
		o.advance(ctx, sess, text)
	case StateEnded:
		o.log.Debug().Str("sessionId", sess.ID).Msg("turn after interview ended")
	default:
		o.analyze(ctx, sess, text)
	}
}

func (o *Orchestrator) advance(ctx context.Context, sess *Session, text string) {
	action, err := o.engine.Advance(ctx, sess.EngineSessionID(), text)
	if !o.live(sess.ID) {
		return
	}
	if err != nil {
		o.log.Warn().Err(err).Str("sessionId", sess.ID).Msg("engine advance failed")
		o.emitter.EmitError(sess.ID, engineUnavailableNotice)
		return
	}

	switch a := action.(type) {
	case engine.AskQuestion:
		o.appendAI(sess, a.Question)
	case engine.EndInterview:
		o.emitter.EmitEngineReport(sess.ID, a.Report)
		o.metrics.RecordReport()
		sess.end()
	default:
		o.log.Error().Str("sessionId", sess.ID).Msgf("unhandled engine action %T", action)
		o.emitter.EmitError(sess.ID, engineUnavailableNotice)
	}
}

func (o *Orchestrator) analyze(ctx context.Context, sess *Session, text string) {
	industry, level := sess.Profile()

	reply, err := o.engine.Analyze(ctx, text, industry, level)
	if !o.live(sess.ID) {
		return
	}
	if err != nil {
		o.log.Warn().Err(err).Str("sessionId", sess.ID).Msg("analyze failed")
		o.emitter.EmitError(sess.ID, engineUnavailableNotice)
		return
	}
	if reply == "" {
		reply = fallbackReplyPlaceholder
	}

	o.appendAI(sess, reply)
}

func (o *Orchestrator) appendAI(sess *Session, text string) {
	sess.Transcript.Append(transcript.RoleAI, text)
	o.metrics.RecordTurn(string(transcript.RoleAI))
	o.emitter.EmitAIMessage(sess.ID, text)
}

func (o *Orchestrator) appendCandidate(sess *Session, text string) {
	sess.Transcript.Append(transcript.RoleCandidate, text)
	o.metrics.RecordTurn(string(transcript.RoleCandidate))
	o.emitter.EmitCandidateAck(sess.ID, text)
}

func (o *Orchestrator) publishMarker(ctx context.Context, sessionID string, size int) {
	if o.queue == nil {
		return
	}
	if err := o.queue.PublishMarker(ctx, sessionID, size); err != nil {
		o.log.Warn().Err(err).Str("sessionId", sessionID).Msg("audio marker publish failed")
		o.metrics.RecordAudioMarkerError()
	}
}

// live reports whether the session is still registered. Checked after every
// engine call so results arriving past disconnect are discarded.
func (o *Orchestrator) live(sessionID string) bool {
	_, ok := o.registry.Get(sessionID)
	return ok
}

func isAbsentBlob(blob json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(blob))
	return trimmed == "" || trimmed == "null"
}
