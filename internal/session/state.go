// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package session

import (
	"fmt"
	"time"

	"github.com/tomtom215/reelpick/internal/models"
)

// State is the lifecycle position of a feedback session.
type State int

const (
	// StateLoading means a candidate fetch is pending, or nothing has loaded yet.
	StateLoading State = iota
	// StateDisplayed means a candidate is in view.
	StateDisplayed
	// StateFailedDisplaying means the last fetch failed and the previous
	// candidate is still in view.
	StateFailedDisplaying
)

// AllStates lists every state, in declaration order.
var AllStates = []State{StateLoading, StateDisplayed, StateFailedDisplaying}

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateDisplayed:
		return "displayed"
	case StateFailedDisplaying:
		return "failed_displaying"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// stateNames is AllStates as strings, for metrics.
func stateNames() []string {
	names := make([]string, len(AllStates))
	for i, s := range AllStates {
		names[i] = s.String()
	}
	return names
}

// NoticeKind tells which operation a notice is about.
type NoticeKind string

const (
	NoticeLoadFailed   NoticeKind = "load_failed"
	NoticeRecordFailed NoticeKind = "record_failed"
)

// User-facing notice messages.
const (
	MessageLoadFailed   = "Failed to load movie. Please try again."
	MessageRecordFailed = "Failed to record your preference."
)

// Notice is a transient, user-visible report of a failed operation. At most
// one notice of each kind is active at a time.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Err     string     `json:"error,omitempty"`
	At      time.Time  `json:"at"`
}

// Snapshot is an immutable view of a session at one point in time.
type Snapshot struct {
	SessionID  string               `json:"session_id"`
	Sequence   uint64               `json:"sequence"`
	State      State                `json:"state"`
	Movie      *models.DisplayMovie `json:"movie"`
	Notices    []Notice             `json:"notices,omitempty"`
	Submitting bool                 `json:"submitting"`
}

// Notice returns the active notice of the given kind, or nil.
func (s Snapshot) Notice(kind NoticeKind) *Notice {
	for i := range s.Notices {
		if s.Notices[i].Kind == kind {
			n := s.Notices[i]
			return &n
		}
	}
	return nil
}
