package server

import (
	"encoding/json"
	"testing"
	"time"

	"interviewd/internal/transcript"
)

func receiveEnvelope(t *testing.T, ch chan []byte) Envelope {
	t.Helper()

	select {
	case msg := <-ch:
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		return env
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for room event")
		return Envelope{}
	}
}

func TestHubEmitsToOwnRoomOnly(t *testing.T) {
	hub := NewHub()
	chA := hub.Join("a")
	chB := hub.Join("b")
	defer hub.Leave("a")
	defer hub.Leave("b")

	hub.EmitAIMessage("a", "Q1")

	env := receiveEnvelope(t, chA)
	if env.Event != EventAIMessage {
		t.Fatalf("unexpected event %q", env.Event)
	}

	var payload MessagePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Text != "Q1" {
		t.Fatalf("unexpected text %q", payload.Text)
	}

	select {
	case msg := <-chB:
		t.Fatalf("event leaked to another room: %s", msg)
	default:
	}
}

func TestHubEmitToUnknownRoomIsNoOp(t *testing.T) {
	hub := NewHub()
	hub.EmitError("gone", "should vanish")
}

func TestHubLeaveIsIdempotent(t *testing.T) {
	hub := NewHub()
	hub.Join("a")
	hub.Leave("a")
	hub.Leave("a")
}

func TestHubWelcomeCarriesSessionID(t *testing.T) {
	hub := NewHub()
	ch := hub.Join("s-42")
	defer hub.Leave("s-42")

	hub.EmitWelcome("s-42")

	env := receiveEnvelope(t, ch)
	if env.Event != EventWelcome {
		t.Fatalf("unexpected event %q", env.Event)
	}

	var payload WelcomePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.SessionID != "s-42" {
		t.Fatalf("unexpected session id %q", payload.SessionID)
	}
}

func TestHubEngineReportRelayedVerbatim(t *testing.T) {
	hub := NewHub()
	ch := hub.Join("a")
	defer hub.Leave("a")

	hub.EmitEngineReport("a", json.RawMessage(`{"score":77,"verdict":"hire"}`))

	env := receiveEnvelope(t, ch)
	if env.Event != EventReport {
		t.Fatalf("unexpected event %q", env.Event)
	}
	if string(env.Data) != `{"score":77,"verdict":"hire"}` {
		t.Fatalf("report reshaped: %s", env.Data)
	}
}

func TestHubLocalReportShape(t *testing.T) {
	hub := NewHub()
	ch := hub.Join("a")
	defer hub.Leave("a")

	hub.EmitReport("a", transcript.Report{
		Industry:      "tech",
		QuestionCount: 2,
		AnswerCount:   1,
		Summary:       "AI: Q1 | You: A1 | AI: Q2",
	})

	env := receiveEnvelope(t, ch)

	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["questionCount"] != float64(2) || payload["answerCount"] != float64(1) {
		t.Fatalf("unexpected counts: %v", payload)
	}
	if _, ok := payload["level"]; ok {
		t.Fatal("empty level should be omitted")
	}
}
