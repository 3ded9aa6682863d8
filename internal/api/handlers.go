// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package api serves the local HTTP surface of `reelpick serve`.
//
// Every endpoint answers with the models.APIResponse envelope. Backend
// failures never surface as HTTP errors: they are reported through the
// session or listing notice, exactly as the terminal frontend shows them.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/feed"
	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/models"
	"github.com/tomtom215/reelpick/internal/session"
	ws "github.com/tomtom215/reelpick/internal/websocket"
)

// BreakerStater reports the recommender circuit breaker state.
type BreakerStater interface {
	State() string
}

// Dependencies are the components the handlers serve.
type Dependencies struct {
	Session *session.Controller
	Feed    *feed.Controller
	Hub     *ws.Hub
	Config  *config.Config

	// Breaker is optional; nil when the breaker is disabled.
	Breaker BreakerStater
	Version string
}

// Handler implements the serve endpoints.
type Handler struct {
	session   *session.Controller
	feed      *feed.Controller
	hub       *ws.Hub
	config    *config.Config
	breaker   BreakerStater
	version   string
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		session:   deps.Session,
		feed:      deps.Feed,
		hub:       deps.Hub,
		config:    deps.Config,
		breaker:   deps.Breaker,
		version:   deps.Version,
		startTime: time.Now(),
	}
}

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status           string  `json:"status"`
	Version          string  `json:"version,omitempty"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	SessionState     string  `json:"session_state"`
	WebSocketClients int     `json:"websocket_clients"`
	Breaker          string  `json:"breaker,omitempty"`
}

// PopularResponse is the body of GET /api/v1/popular.
type PopularResponse struct {
	Items    []models.DisplayMovie `json:"items"`
	Notice   *feed.Notice          `json:"notice,omitempty"`
	LoadedAt *time.Time            `json:"loaded_at,omitempty"`
}

type feedbackRequest struct {
	Action string `validate:"required,feedback_action"`
}

// Health reports liveness. It never calls the backend.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		SessionState:  h.session.Snapshot().State.String(),
	}
	if h.hub != nil {
		status.WebSocketClients = h.hub.GetClientCount()
	}
	if h.breaker != nil {
		status.Breaker = h.breaker.State()
	}

	respondSuccess(w, status, start)
}

// Session returns the current session snapshot.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, h.session.Snapshot(), time.Now())
}

// Reload refetches the current candidate and returns the resulting snapshot.
// The fetch outlives a disconnecting client; the recommender timeout bounds it.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	err := h.session.LoadCurrent(context.WithoutCancel(r.Context()))
	if err != nil && !errors.Is(err, session.ErrSuperseded) {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("reload finished with notice")
	}

	respondSuccess(w, h.session.Snapshot(), start)
}

// Feedback records like, dislike or skip for the candidate in view, then
// returns the snapshot after the follow-up fetch.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := feedbackRequest{Action: chi.URLParam(r, "action")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	action, err := models.ParseFeedbackAction(req.Action)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidAction, err.Error(), nil)
		return
	}

	err = h.session.Submit(context.WithoutCancel(r.Context()), action)
	switch {
	case errors.Is(err, session.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, CodeSubmitInFlight, "A preference is already being recorded", nil)
		return
	case errors.Is(err, session.ErrUnknownAction):
		respondError(w, http.StatusBadRequest, CodeInvalidAction, err.Error(), nil)
		return
	case err != nil:
		logging.Ctx(r.Context()).Debug().Err(err).Str("action", string(action)).Msg("feedback finished with notice")
	}

	respondSuccess(w, h.session.Snapshot(), start)
}

// Popular loads the popular-movies listing and pushes it to websocket clients.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	items, err := h.feed.LoadAll(r.Context())
	resp := PopularResponse{Items: items, Notice: h.feed.Notice()}
	if err != nil {
		resp.Items = []models.DisplayMovie{}
	} else {
		loadedAt := h.feed.LoadedAt()
		resp.LoadedAt = &loadedAt
		if h.hub != nil {
			h.hub.BroadcastJSON(ws.MessageTypePopular, items)
		}
	}

	respondSuccess(w, resp, start)
}

// WebSocket upgrades the connection and streams session snapshots.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	select {
	case h.hub.Register <- client:
	case <-h.hub.Done():
		_ = conn.Close()
		return
	}
	client.Start()
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts same-host connections, clients that send no
// Origin (the terminal and scripts), and origins in the CORS list.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
