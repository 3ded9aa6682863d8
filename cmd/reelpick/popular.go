// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/feed"
	"github.com/tomtom215/reelpick/internal/models"
	"github.com/tomtom215/reelpick/internal/normalize"
	"github.com/tomtom215/reelpick/internal/recommender"
)

// errListingFailed is returned after the failure notice has been printed.
var errListingFailed = errors.New("popular movies unavailable")

func runPopular(cfg *config.Config, stdout io.Writer) error {
	ctrl := feed.NewController(recommender.New(&cfg.Recommender), normalize.Options{
		FallbackPoster: cfg.Display.FallbackPoster,
	})
	return printPopular(context.Background(), ctrl, stdout)
}

func printPopular(ctx context.Context, ctrl *feed.Controller, w io.Writer) error {
	items, err := ctrl.LoadAll(ctx)
	if err != nil {
		if n := ctrl.Notice(); n != nil {
			fmt.Fprintf(w, "! %s\n", n.Message)
		}
		return errListingFailed
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No popular movies right now.")
		return nil
	}
	for i := range items {
		fmt.Fprintln(w, listingLine(i+1, &items[i]))
	}
	return nil
}

// listingLine formats one entry: rank, stars, title, year and duration.
func listingLine(rank int, m *models.DisplayMovie) string {
	return fmt.Sprintf("%2d. %s  %s (%s, %s)", rank, normalize.StarRow(m.StarCount), m.Title, m.YearLabel, m.DurationLabel)
}
