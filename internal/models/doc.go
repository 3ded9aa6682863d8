// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package models defines the wire and display types shared across Reelpick.
//
// Wire types mirror the recommendation backend's JSON exactly (snake_case keys,
// `{ "data": ... }` envelopes). Numeric fields that the backend has been seen to
// send as strings or garbage use tolerant decoders (Rating, Minutes) so malformed
// fields degrade to display fallbacks instead of failing the request.
package models
