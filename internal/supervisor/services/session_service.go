// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package services

import (
	"context"
	"errors"

	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/session"
)

// Session is satisfied by *session.Controller.
type Session interface {
	LoadCurrent(ctx context.Context) error
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
	Close()
}

// SnapshotPublisher is satisfied by *websocket.Hub.
type SnapshotPublisher interface {
	BroadcastSession(snapshot interface{})
}

// SessionService connects a feedback session to the websocket hub and
// performs the initial fetch. It then waits for shutdown, keeping the
// subscription alive; on shutdown any in-flight load is canceled.
type SessionService struct {
	session   Session
	publisher SnapshotPublisher
	name      string
}

// NewSessionService creates the service.
func NewSessionService(sess Session, publisher SnapshotPublisher) *SessionService {
	return &SessionService{session: sess, publisher: publisher, name: "feedback-session"}
}

// Serve implements suture.Service. A failed initial load is not a service
// failure: the session already shows the notice and a reload can retry.
func (s *SessionService) Serve(ctx context.Context) error {
	unsubscribe := s.session.Subscribe(func(snap session.Snapshot) {
		s.publisher.BroadcastSession(snap)
	})
	defer unsubscribe()

	err := s.session.LoadCurrent(ctx)
	switch {
	case err == nil, errors.Is(err, session.ErrSuperseded), errors.Is(err, context.Canceled):
	default:
		logging.Warn().Err(err).Msg("initial movie load failed")
	}

	<-ctx.Done()
	s.session.Close()
	return ctx.Err()
}

func (s *SessionService) String() string {
	return s.name
}
