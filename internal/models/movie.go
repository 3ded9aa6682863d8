// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// CandidateMovie is a movie as served by the recommendation backend.
// The client never mutates it; display values are derived by the normalize package.
//
// Example payload:
//
//	{
//	  "title": "Arrival",
//	  "poster_link": "https://image.tmdb.org/t/p/w500/x2FJsf1ElAgr63Y3PNPtJrcmpoe.jpg",
//	  "release_date": "2016-11-10",
//	  "duration": 116,
//	  "rating": 7.6,
//	  "overview": "Taking place after alien crafts land around the world..."
//	}
type CandidateMovie struct {
	Title       string  `json:"title"`
	PosterLink  string  `json:"poster_link,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Duration    Minutes `json:"duration"`
	Rating      Rating  `json:"rating"`
	Overview    string  `json:"overview"`
}

// IsEmpty reports whether no field of m was present in the payload.
func (m CandidateMovie) IsEmpty() bool {
	return m == CandidateMovie{}
}

// Rating is a vote average on the backend's 0-10 scale.
//
// Decoding never fails: numbers and numeric strings are accepted, anything else
// (null, booleans, garbage text, NaN, Inf) decodes as an invalid rating so one bad
// field cannot take down the whole payload.
type Rating struct {
	Value float64
	Valid bool
}

// NewRating returns a valid rating, or an invalid one for non-finite input.
func NewRating(v float64) Rating {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Rating{}
	}
	return Rating{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rating) UnmarshalJSON(data []byte) error {
	v, ok := decodeLooseNumber(data)
	*r = Rating{}
	if ok {
		*r = NewRating(v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Invalid ratings encode as null.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', -1, 64)), nil
}

// Minutes is a running time in whole minutes. Fractional input is truncated
// toward negative infinity; negative values are kept as-is and clamped by the
// normalizer, never here.
type Minutes struct {
	Value int
	Valid bool
}

// NewMinutes returns a valid duration.
func NewMinutes(v int) Minutes {
	return Minutes{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Minutes) UnmarshalJSON(data []byte) error {
	v, ok := decodeLooseNumber(data)
	*m = Minutes{}
	if ok && !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) < math.MaxInt32 {
		*m = Minutes{Value: int(math.Floor(v)), Valid: true}
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Invalid durations encode as null.
func (m Minutes) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(m.Value)), nil
}

// decodeLooseNumber accepts a JSON number or a JSON string holding a number.
func decodeLooseNumber(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, false
	}
	v, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return v, true
}

// DisplayMovie is the display-ready form of a CandidateMovie. It is rebuilt
// every time a candidate arrives and is never stored.
type DisplayMovie struct {
	Title         string `json:"title"`
	PosterURL     string `json:"poster_url"`
	YearLabel     string `json:"year_label"`
	DurationLabel string `json:"duration_label"`
	StarCount     int    `json:"star_count"`
	Overview      string `json:"overview"`
}

// FeedbackAction is a one-shot judgment about the candidate in view.
type FeedbackAction string

const (
	ActionLike    FeedbackAction = "like"
	ActionDislike FeedbackAction = "dislike"
	ActionSkip    FeedbackAction = "skip"
)

// AllActions lists the actions in button order.
var AllActions = []FeedbackAction{ActionLike, ActionDislike, ActionSkip}

// String implements fmt.Stringer.
func (a FeedbackAction) String() string {
	return string(a)
}

// Valid reports whether a is one of the known actions.
func (a FeedbackAction) Valid() bool {
	switch a {
	case ActionLike, ActionDislike, ActionSkip:
		return true
	}
	return false
}

// actionAliases maps accepted spellings (terminal shortcuts, endpoint names) to actions.
var actionAliases = map[string]FeedbackAction{
	"like":          ActionLike,
	"l":             ActionLike,
	"liked":         ActionLike,
	"dislike":       ActionDislike,
	"d":             ActionDislike,
	"unliked":       ActionDislike,
	"skip":          ActionSkip,
	"s":             ActionSkip,
	"did-not-watch": ActionSkip,
	"not-watched":   ActionSkip,
}

// ParseFeedbackAction parses a user-supplied action name, case-insensitively.
func ParseFeedbackAction(s string) (FeedbackAction, error) {
	if a, ok := actionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return "", fmt.Errorf("unknown feedback action %q", s)
}
