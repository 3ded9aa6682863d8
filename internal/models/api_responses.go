// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package models

import (
	"time"
)

// MovieEnvelope is the `{ "data": ... }` wrapper returned by /get-movie.
// Data is a pointer so a missing or null payload can be told apart from an
// empty movie.
type MovieEnvelope struct {
	Data *CandidateMovie `json:"data"`
}

// MovieListEnvelope is the `{ "data": [...] }` wrapper returned by /popular-movies.
type MovieListEnvelope struct {
	Data []CandidateMovie `json:"data"`
}

// APIResponse is the envelope used by every endpoint of the local `serve` surface.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"state": "displayed", "movie": {...}},
//	  "metadata": {"timestamp": "2026-10-14T12:00:00Z"}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "Action must be one of: like dislike skip"},
//	  "metadata": {"timestamp": "2026-10-14T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a machine-readable error code plus a human message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
