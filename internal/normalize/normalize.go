// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package normalize turns raw candidate payloads into display-ready values.
//
// Every function here is pure: the same input always yields the same output and
// no function returns an error. Malformed input degrades to a defined fallback
// (0 stars, "N/A" year, "0 hrs 0 mins", placeholder poster) so a screen stays
// renderable whatever the backend sends.
package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/reelpick/internal/models"
)

const (
	// UnknownYear is shown when a release date is absent.
	UnknownYear = "N/A"

	// MaxStars is the width of the star row.
	MaxStars = 5

	// ratingScale converts the backend's 0-10 vote average to stars.
	ratingScale = 2.0
)

// YearLabel returns the part of releaseDate before the first '-', or "N/A"
// when the date is absent or empty.
func YearLabel(releaseDate string) string {
	releaseDate = strings.TrimSpace(releaseDate)
	if releaseDate == "" {
		return UnknownYear
	}
	year, _, _ := strings.Cut(releaseDate, "-")
	if year == "" {
		return UnknownYear
	}
	return year
}

// DurationLabel formats minutes as "<H> hrs <M> mins". Negative input clamps to 0.
func DurationLabel(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d hrs %d mins", minutes/60, minutes%60)
}

// MinutesLabel is DurationLabel for a decoded duration; invalid durations render as 0.
func MinutesLabel(m models.Minutes) string {
	if !m.Valid {
		return DurationLabel(0)
	}
	return DurationLabel(m.Value)
}

// StarScale converts a 0-10 rating to the unrounded 0-5 star value.
// Non-finite and non-positive ratings map to 0.
func StarScale(rating float64) float64 {
	if math.IsNaN(rating) || math.IsInf(rating, 0) || rating <= 0 {
		return 0
	}
	return math.Max(0, math.Min(MaxStars, rating/ratingScale))
}

// StarCount returns the number of filled stars (0-5) for a 0-10 rating.
// Halves round up, so 7 -> 3.5 -> 4.
func StarCount(rating float64) int {
	return int(math.Floor(StarScale(rating) + 0.5))
}

// RatingStars is StarCount for a decoded rating; invalid ratings have 0 stars.
func RatingStars(r models.Rating) int {
	if !r.Valid {
		return 0
	}
	return StarCount(r.Value)
}

// PosterURL returns the trimmed poster link, or fallback when the link is absent.
func PosterURL(link, fallback string) string {
	if link = strings.TrimSpace(link); link != "" {
		return link
	}
	return fallback
}

// Options tune display derivation.
type Options struct {
	// FallbackPoster replaces an absent poster link. Empty keeps it empty.
	FallbackPoster string
}

// Display derives the display form of a candidate.
func Display(c *models.CandidateMovie, opts Options) models.DisplayMovie {
	return models.DisplayMovie{
		Title:         strings.TrimSpace(c.Title),
		PosterURL:     PosterURL(c.PosterLink, opts.FallbackPoster),
		YearLabel:     YearLabel(c.ReleaseDate),
		DurationLabel: MinutesLabel(c.Duration),
		StarCount:     RatingStars(c.Rating),
		Overview:      c.Overview,
	}
}

// DisplayAll derives display forms for a listing, preserving order.
func DisplayAll(cs []models.CandidateMovie, opts Options) []models.DisplayMovie {
	out := make([]models.DisplayMovie, 0, len(cs))
	for i := range cs {
		out = append(out, Display(&cs[i], opts))
	}
	return out
}

// StarRow renders a star count as five slots, filled then outlined.
//
//	StarRow(3) == "★★★☆☆"
func StarRow(count int) string {
	if count < 0 {
		count = 0
	}
	if count > MaxStars {
		count = MaxStars
	}
	return strings.Repeat("★", count) + strings.Repeat("☆", MaxStars-count)
}
