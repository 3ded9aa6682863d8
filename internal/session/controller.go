// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package session implements the feedback session: one candidate movie in view
// at a time, a like/dislike/skip judgment on it, and a fetch of the next one.
//
// A Controller is safe for concurrent use. Loads are superseding: starting a
// new LoadCurrent cancels the pending one and only the newest result is applied.
// Submissions are exclusive: a Submit while another is in flight fails with
// ErrSubmitInFlight. Every state change produces a new Snapshot, delivered in
// Sequence order to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/metrics"
	"github.com/tomtom215/reelpick/internal/models"
	"github.com/tomtom215/reelpick/internal/normalize"
	"github.com/tomtom215/reelpick/internal/recommender"
)

var (
	// ErrSubmitInFlight is returned by Submit while another submission runs.
	ErrSubmitInFlight = errors.New("a feedback submission is already in flight")

	// ErrSuperseded is returned by LoadCurrent when a newer load replaced it.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrUnknownAction is returned by Submit for an action outside like/dislike/skip.
	ErrUnknownAction = errors.New("unknown feedback action")
)

// Options configure a Controller.
type Options struct {
	Display normalize.Options

	// Now overrides the notice clock. Default: time.Now
	Now func() time.Time
}

// Controller owns the candidate in view and sequences fetches and submissions.
type Controller struct {
	svc    recommender.Service
	opts   normalize.Options
	now    func() time.Time
	id     string
	logger zerolog.Logger

	mu         sync.Mutex
	state      State
	candidate  *models.CandidateMovie
	display    *models.DisplayMovie
	loadNote   *Notice
	recordNote *Notice
	submitting bool
	seq        uint64
	gen        uint64
	cancel     context.CancelFunc
	subs       map[int]func(Snapshot)
	nextSub    int

	// pending snapshots are delivered in order by whichever goroutine
	// holds the draining flag.
	pending  []Snapshot
	draining bool
}

// NewController creates a controller in StateLoading. Nothing is fetched until
// LoadCurrent is called.
func NewController(svc recommender.Service, opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	id := uuid.NewString()

	c := &Controller{
		svc:    svc,
		opts:   opts.Display,
		now:    now,
		id:     id,
		logger: logging.WithComponent("session").With().Str("session_id", id).Logger(),
		state:  StateLoading,
		subs:   make(map[int]func(Snapshot)),
	}
	metrics.SetSessionState(c.state.String(), stateNames())
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns the current view of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive every committed snapshot, in Sequence
// order. fn runs on a goroutine that made a change and should return quickly.
// The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// LoadCurrent fetches the current candidate.
//
// On success the candidate replaces the one in view and the load_failed notice
// is cleared; a record_failed notice is left alone. On failure a load_failed
// notice is raised and the previous candidate, if any, stays in view as
// StateFailedDisplaying. If another LoadCurrent starts before this one
// finishes, this one is canceled and returns ErrSuperseded without touching
// state.
func (c *Controller) LoadCurrent(ctx context.Context) error {
	ctx = c.logContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.state = StateLoading
	c.commitAndPublishLocked()

	movie, err := c.svc.GetMovie(ctx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		metrics.RecordSessionLoad("superseded")
		logging.Ctx(ctx).Debug().Uint64("generation", gen).Msg("discarding superseded load")
		return ErrSuperseded
	}
	c.cancel = nil

	switch {
	case err == nil:
		display := normalize.Display(movie, c.opts)
		c.candidate = movie
		c.display = &display
		c.state = StateDisplayed
		c.loadNote = nil
		metrics.RecordSessionLoad(metrics.OutcomeSuccess)
		logging.Ctx(ctx).Debug().Str("title", display.Title).Msg("candidate displayed")

	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// Caller gave up. Not a backend failure, so no notice.
		c.state = c.restingStateLocked()
		metrics.RecordSessionLoad(metrics.OutcomeCancelled)

	default:
		c.raiseLocked(NoticeLoadFailed, MessageLoadFailed, err)
		c.state = c.restingStateLocked()
		metrics.RecordSessionLoad(metrics.OutcomeFailure)
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to load candidate")
	}

	c.commitAndPublishLocked()
	if err != nil {
		return fmt.Errorf("load current candidate: %w", err)
	}
	return nil
}

// Submit records action for the candidate in view, then fetches the next one.
//
// The refetch is issued after the post resolves, whether it succeeded or not.
// A failed post raises a record_failed notice that stays active until the next
// Submit, even if the refetch fails too. The returned error joins the
// post and load errors; a superseded refetch is not an error.
func (c *Controller) Submit(ctx context.Context, action models.FeedbackAction) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	ctx = c.logContext(ctx)

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.submitting = true
	c.recordNote = nil
	c.commitAndPublishLocked()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.commitAndPublishLocked()
	}()

	postErr := c.svc.RecordFeedback(ctx, action)
	metrics.RecordFeedback(action.String(), postErr)
	if postErr != nil {
		postErr = fmt.Errorf("record %s: %w", action, postErr)
		logging.Ctx(ctx).Warn().Err(postErr).Str("action", action.String()).Msg("failed to record preference")

		c.mu.Lock()
		c.raiseLocked(NoticeRecordFailed, MessageRecordFailed, postErr)
		c.commitAndPublishLocked()
	} else {
		logging.Ctx(ctx).Info().Str("action", action.String()).Msg("preference recorded")
	}

	loadErr := c.LoadCurrent(ctx)
	if errors.Is(loadErr, ErrSuperseded) {
		loadErr = nil
	}
	return errors.Join(postErr, loadErr)
}

// Close cancels any pending load.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) logContext(ctx context.Context) context.Context {
	ctx = logging.ContextWithSessionID(ctx, c.id)
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	return ctx
}

// restingStateLocked is the state to show when no load is pending.
func (c *Controller) restingStateLocked() State {
	if c.candidate == nil {
		return StateLoading
	}
	if c.loadNote != nil {
		return StateFailedDisplaying
	}
	return StateDisplayed
}

func (c *Controller) raiseLocked(kind NoticeKind, message string, err error) {
	n := &Notice{Kind: kind, Message: message, At: c.now()}
	if err != nil {
		n.Err = err.Error()
	}
	if kind == NoticeRecordFailed {
		c.recordNote = n
	} else {
		c.loadNote = n
	}
	metrics.RecordNotice(string(kind))
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:  c.id,
		Sequence:   c.seq,
		State:      c.state,
		Submitting: c.submitting,
	}
	if c.state != StateLoading && c.display != nil {
		d := *c.display
		snap.Movie = &d
	}
	for _, n := range []*Notice{c.recordNote, c.loadNote} {
		if n != nil {
			snap.Notices = append(snap.Notices, *n)
		}
	}
	return snap
}

// commitAndPublishLocked bumps the sequence, queues the new snapshot, releases
// mu and drains the queue unless another goroutine already is. Must be called
// with mu held; returns with mu released.
func (c *Controller) commitAndPublishLocked() {
	c.seq++
	snap := c.snapshotLocked()
	metrics.SetSessionState(snap.State.String(), stateNames())

	c.pending = append(c.pending, snap)
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	for len(c.pending) > 0 {
		batch := c.pending
		c.pending = nil
		subs := make([]func(Snapshot), 0, len(c.subs))
		for _, fn := range c.subs {
			subs = append(subs, fn)
		}
		c.mu.Unlock()

		for _, s := range batch {
			for _, fn := range subs {
				fn(s)
			}
		}

		c.mu.Lock()
	}

	c.draining = false
	c.mu.Unlock()
}
