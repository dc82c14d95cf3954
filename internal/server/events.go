package server

import "encoding/json"

// Realtime channel event names, shared by both directions.
const (
	EventWelcome        = "system:welcome"
	EventInterviewStart = "interview:start"
	EventAIMessage      = "ai:message"
	EventCandidateText  = "candidate:text"
	EventCandidateAck   = "candidate:text:ack"
	EventCandidateAudio = "candidate:audio"
	EventReport         = "interview:report"
	EventError          = "system:error"
)

// Envelope frames every websocket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
}

type MessagePayload struct {
	Text string `json:"text"`
}

type StartPayload struct {
	Industry string `json:"industry"`
	Level    string `json:"level"`
}

type AudioPayload struct {
	Blob json.RawMessage `json:"blob"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
