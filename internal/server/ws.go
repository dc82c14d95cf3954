package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"interviewd/internal/logging"
	"interviewd/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func registerWSRoute(mux *http.ServeMux, hub *Hub, orch *session.Orchestrator) {
	log := logging.WithComponent("ws")

	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("ws upgrade failed")
			return
		}
		defer func() { _ = conn.Close() }()

		sess := orch.Connect()
		ch := hub.Join(sess.ID)

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for msg := range ch {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		hub.EmitWelcome(sess.ID)

		// Events for one session are handled serially by this loop, so turn
		// order always reflects arrival order. Engine calls run on
		// context.Background: disconnect does not cancel them, their results
		// are simply dropped once the session is gone.
		for {
			msgType, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if msgType != websocket.TextMessage {
				log.Debug().Str("sessionId", sess.ID).Msg("ignoring non-text frame")
				continue
			}
			dispatchClientEvent(context.Background(), hub, orch, sess.ID, raw)
		}

		orch.Disconnect(sess.ID)
		hub.Leave(sess.ID)
		<-writerDone
	})
}

func dispatchClientEvent(ctx context.Context, hub *Hub, orch *session.Orchestrator, sessionID string, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		hub.EmitError(sessionID, "invalid message")
		return
	}

	switch env.Event {
	case EventInterviewStart:
		var p StartPayload
		_ = json.Unmarshal(env.Data, &p)
		orch.Start(ctx, sessionID, p.Industry, p.Level)
	case EventCandidateText:
		var p MessagePayload
		_ = json.Unmarshal(env.Data, &p)
		orch.CandidateText(ctx, sessionID, p.Text)
	case EventCandidateAudio:
		var p AudioPayload
		_ = json.Unmarshal(env.Data, &p)
		orch.CandidateAudio(ctx, sessionID, p.Blob)
	case EventReport:
		orch.Report(sessionID)
	default:
		hub.EmitError(sessionID, fmt.Sprintf("unknown event %q", env.Event))
	}
}
