package server

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"interviewd/internal/logging"
	"interviewd/internal/transcript"
)

// Hub routes server-to-client events to per-session rooms. Each connected
// client owns exactly one room, keyed by its session id; emitting to an
// unknown room is a silent drop, which is what makes late engine results
// after disconnect harmless.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]chan []byte
	log   zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]chan []byte),
		log:   logging.WithComponent("hub"),
	}
}

// Join opens the room for a session and returns the channel its connection
// writer drains.
func (h *Hub) Join(sessionID string) chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.rooms[sessionID] = ch
	h.mu.Unlock()
	return ch
}

// Leave closes a session's room. Idempotent.
func (h *Hub) Leave(sessionID string) {
	h.mu.Lock()
	ch, ok := h.rooms[sessionID]
	delete(h.rooms, sessionID)
	h.mu.Unlock()

	if ok {
		close(ch)
	}
}

// EmitWelcome delivers the once-per-connection welcome event.
func (h *Hub) EmitWelcome(sessionID string) {
	h.emit(sessionID, EventWelcome, WelcomePayload{SessionID: sessionID})
}

func (h *Hub) EmitAIMessage(sessionID, text string) {
	h.emit(sessionID, EventAIMessage, MessagePayload{Text: text})
}

func (h *Hub) EmitCandidateAck(sessionID, text string) {
	h.emit(sessionID, EventCandidateAck, MessagePayload{Text: text})
}

func (h *Hub) EmitReport(sessionID string, report transcript.Report) {
	h.emit(sessionID, EventReport, report)
}

// EmitEngineReport relays an engine-authored report payload verbatim.
func (h *Hub) EmitEngineReport(sessionID string, report json.RawMessage) {
	h.emit(sessionID, EventReport, report)
}

func (h *Hub) EmitError(sessionID, message string) {
	h.emit(sessionID, EventError, ErrorPayload{Message: message})
}

func (h *Hub) emit(sessionID, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("event payload marshal failed")
		return
	}

	msg, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("event envelope marshal failed")
		return
	}

	h.mu.RLock()
	ch, ok := h.rooms[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case ch <- msg:
	default:
		h.log.Warn().Str("sessionId", sessionID).Str("event", event).Msg("room buffer full, event dropped")
	}
}
