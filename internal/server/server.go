// Package server exposes the realtime websocket channel, the archive read
// API, and operational routes.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"interviewd/internal/session"
)

// Handler assembles all HTTP routes: the websocket endpoint, the archive
// API, the health check, and prometheus metrics.
func Handler(hub *Hub, orch *session.Orchestrator, store SessionStore) http.Handler {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub, orch)
	registerAPIRoutes(mux, store)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
