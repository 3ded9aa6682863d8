// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package recommender is the HTTP client for the recommendation backend.
//
// Endpoints:
//
//	GET  /get-movie       current candidate, {"data": {...}}
//	POST /liked-movie     record like, response ignored
//	POST /unliked-movie   record dislike, response ignored
//	POST /did-not-watch   record skip, response ignored
//	GET  /popular-movies  listing, {"data": [...]}
//
// Requests carry no body and no authentication. Feedback is not tied to a
// candidate id; the backend attributes it to whatever it served last.
//
// Client does the HTTP work with a per-request timeout and client-side pacing.
// BreakerClient wraps any Service with a circuit breaker. Neither retries:
// retrying is left to the user.
package recommender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/metrics"
	"github.com/tomtom215/reelpick/internal/models"
)

// maxResponseBodySize bounds a decoded success body. Larger bodies are
// reported as ErrMalformed.
const maxResponseBodySize = 4 << 20

// Endpoint paths on the recommendation backend.
const (
	PathGetMovie      = "/get-movie"
	PathLiked         = "/liked-movie"
	PathUnliked       = "/unliked-movie"
	PathDidNotWatch   = "/did-not-watch"
	PathPopularMovies = "/popular-movies"
)

var feedbackPaths = map[models.FeedbackAction]string{
	models.ActionLike:    PathLiked,
	models.ActionDislike: PathUnliked,
	models.ActionSkip:    PathDidNotWatch,
}

// FeedbackPath returns the endpoint that records action.
func FeedbackPath(action models.FeedbackAction) (string, bool) {
	p, ok := feedbackPaths[action]
	return p, ok
}

// Service is the recommendation backend as seen by the controllers.
type Service interface {
	GetMovie(ctx context.Context) (*models.CandidateMovie, error)
	RecordFeedback(ctx context.Context, action models.FeedbackAction) error
	PopularMovies(ctx context.Context) ([]models.CandidateMovie, error)
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
	maxBody int64
}

// NewClient creates a client from cfg. A zero RateLimit disables pacing.
func NewClient(cfg *config.RecommenderConfig) *Client {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logging.WithComponent("recommender"),
		maxBody: maxResponseBodySize,
	}
}

// New returns the Service described by cfg: a Client, wrapped in a
// BreakerClient when the breaker is enabled.
func New(cfg *config.RecommenderConfig) Service {
	c := NewClient(cfg)
	if !cfg.Breaker.Enabled {
		return c
	}
	return NewBreakerClient(c, &cfg.Breaker)
}

// GetMovie fetches the current candidate. A null, absent or empty data member
// is reported as ErrMalformed.
func (c *Client) GetMovie(ctx context.Context) (*models.CandidateMovie, error) {
	var env models.MovieEnvelope
	if err := c.do(ctx, http.MethodGet, PathGetMovie, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", ErrMalformed, PathGetMovie)
	}
	if env.Data.IsEmpty() {
		return nil, fmt.Errorf("%w: %s: empty candidate", ErrMalformed, PathGetMovie)
	}
	return env.Data, nil
}

// RecordFeedback posts action to its endpoint. The response body is ignored.
func (c *Client) RecordFeedback(ctx context.Context, action models.FeedbackAction) error {
	path, ok := FeedbackPath(action)
	if !ok {
		return fmt.Errorf("unknown feedback action %q", action)
	}
	return c.do(ctx, http.MethodPost, path, nil)
}

// PopularMovies fetches the listing. A null data member is an empty listing.
func (c *Client) PopularMovies(ctx context.Context) ([]models.CandidateMovie, error) {
	var env models.MovieListEnvelope
	if err := c.do(ctx, http.MethodGet, PathPopularMovies, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []models.CandidateMovie{}, nil
	}
	return env.Data, nil
}

// do performs one request. When result is nil the body is drained and discarded.
func (c *Client) do(ctx context.Context, method, path string, result interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecommenderRequest(path, time.Since(start), err)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: rate limiter: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if result != nil {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Body:       readBodyForError(resp.Body),
		}
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(result); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Dur("elapsed", time.Since(start)).Msg("recommender request completed")
	return nil
}
