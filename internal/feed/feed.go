// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package feed loads the read-only popular movies listing.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/metrics"
	"github.com/tomtom215/reelpick/internal/models"
	"github.com/tomtom215/reelpick/internal/normalize"
	"github.com/tomtom215/reelpick/internal/recommender"
)

// MessageLoadFailed is the notice shown when the listing cannot be fetched.
const MessageLoadFailed = "Failed to load popular movies."

// Notice reports a failed listing load.
type Notice struct {
	Message string    `json:"message"`
	Err     string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// Controller holds the most recently loaded listing.
type Controller struct {
	svc    recommender.Service
	opts   normalize.Options
	logger zerolog.Logger

	mu       sync.Mutex
	items    []models.DisplayMovie
	notice   *Notice
	loadedAt time.Time
}

// NewController creates an empty listing controller.
func NewController(svc recommender.Service, opts normalize.Options) *Controller {
	return &Controller{
		svc:    svc,
		opts:   opts,
		logger: logging.WithComponent("feed"),
		items:  []models.DisplayMovie{},
	}
}

// LoadAll fetches the listing once and normalizes every entry, preserving the
// backend's order. On failure the list is emptied and a notice raised; the
// next successful load clears it. The last completed load wins.
func (c *Controller) LoadAll(ctx context.Context) ([]models.DisplayMovie, error) {
	movies, err := c.svc.PopularMovies(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.items = []models.DisplayMovie{}
		c.notice = &Notice{Message: MessageLoadFailed, Err: err.Error(), At: time.Now()}
		metrics.PopularItems.Set(0)
		metrics.RecordNotice("popular_load_failed")
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to load popular movies")
		return nil, fmt.Errorf("load popular movies: %w", err)
	}

	c.items = normalize.DisplayAll(movies, c.opts)
	c.notice = nil
	c.loadedAt = time.Now()
	metrics.PopularItems.Set(float64(len(c.items)))
	c.logger.Debug().Int("count", len(c.items)).Msg("popular movies loaded")

	return c.itemsLocked(), nil
}

// Items returns a copy of the current listing.
func (c *Controller) Items() []models.DisplayMovie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked()
}

// Notice returns the current notice, or nil.
func (c *Controller) Notice() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notice == nil {
		return nil
	}
	n := *c.notice
	return &n
}

// LoadedAt is the time of the last successful load; zero if none.
func (c *Controller) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt
}

func (c *Controller) itemsLocked() []models.DisplayMovie {
	out := make([]models.DisplayMovie, len(c.items))
	copy(out, c.items)
	return out
}
