// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommender

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/models"
)

// recordedRequest is one request seen by a fake backend.
type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeBackend records every request and answers from a per-path table.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	handlers map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T, handlers map[string]http.HandlerFunc) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{handlers: handlers}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		fb.mu.Unlock()

		if h, ok := fb.handlers[r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) seen() []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]recordedRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func testConfig(url string) *config.RecommenderConfig {
	return &config.RecommenderConfig{
		URL:     url,
		Timeout: 2 * time.Second,
		Burst:   1,
	}
}

func TestClient_GetMovie(t *testing.T) {
	t.Parallel()

	fb, srv := newFakeBackend(t, map[string]http.HandlerFunc{
		PathGetMovie: jsonHandler(http.StatusOK, `{"data":{"title":"Heat","poster_link":"https://img/heat.jpg","release_date":"1995-12-15","duration":170,"rating":8.3,"overview":"LA crime saga."}}`),
	})

	movie, err := NewClient(testConfig(srv.URL)).GetMovie(context.Background())
	if err != nil {
		t.Fatalf("GetMovie() error: %v", err)
	}
	if movie.Title != "Heat" || movie.Duration.Value != 170 || movie.Rating.Value != 8.3 {
		t.Errorf("unexpected movie: %+v", movie)
	}

	reqs := fb.seen()
	if len(reqs) != 1 || reqs[0].Method != http.MethodGet || reqs[0].Path != "/get-movie" {
		t.Errorf("unexpected requests: %+v", reqs)
	}
}

func TestClient_GetMovie_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{"server error", jsonHandler(http.StatusInternalServerError, `boom`), ErrStatus},
		{"not found", jsonHandler(http.StatusNotFound, ``), ErrStatus},
		{"null data", jsonHandler(http.StatusOK, `{"data":null}`), ErrMalformed},
		{"missing data", jsonHandler(http.StatusOK, `{}`), ErrMalformed},
		{"empty data", jsonHandler(http.StatusOK, `{"data":{}}`), ErrMalformed},
		{"empty data with nulls", jsonHandler(http.StatusOK, `{"data":{"duration":null,"rating":null}}`), ErrMalformed},
		{"not json", jsonHandler(http.StatusOK, `<html>`), ErrMalformed},
		{"wrong shape", jsonHandler(http.StatusOK, `{"data":"Heat"}`), ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, srv := newFakeBackend(t, map[string]http.HandlerFunc{PathGetMovie: tt.handler})

			_, err := NewClient(testConfig(srv.URL)).GetMovie(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_StatusErrorCarriesBody(t *testing.T) {
	t.Parallel()

	_, srv := newFakeBackend(t, map[string]http.HandlerFunc{
		PathGetMovie: jsonHandler(http.StatusServiceUnavailable, `maintenance`),
	})

	_, err := NewClient(testConfig(srv.URL)).GetMovie(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if se.StatusCode != http.StatusServiceUnavailable || se.Body != "maintenance" || se.Endpoint != PathGetMovie {
		t.Errorf("unexpected status error: %+v", se)
	}
}

func TestClient_Unavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(testConfig(url)).GetMovie(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_RecordFeedback_Paths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action models.FeedbackAction
		path   string
	}{
		{models.ActionLike, "/liked-movie"},
		{models.ActionDislike, "/unliked-movie"},
		{models.ActionSkip, "/did-not-watch"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()
			fb, srv := newFakeBackend(t, map[string]http.HandlerFunc{
				tt.path: jsonHandler(http.StatusOK, `{"message":"ok"}`),
			})

			if err := NewClient(testConfig(srv.URL)).RecordFeedback(context.Background(), tt.action); err != nil {
				t.Fatalf("RecordFeedback() error: %v", err)
			}

			reqs := fb.seen()
			if len(reqs) != 1 {
				t.Fatalf("expected 1 request, got %d", len(reqs))
			}
			if reqs[0].Method != http.MethodPost || reqs[0].Path != tt.path || reqs[0].Body != "" {
				t.Errorf("unexpected request: %+v", reqs[0])
			}
		})
	}
}

func TestClient_RecordFeedback_IgnoresBody(t *testing.T) {
	t.Parallel()

	_, srv := newFakeBackend(t, map[string]http.HandlerFunc{
		PathLiked: jsonHandler(http.StatusOK, `not json at all`),
	})
	if err := NewClient(testConfig(srv.URL)).RecordFeedback(context.Background(), models.ActionLike); err != nil {
		t.Errorf("response body must be ignored, got: %v", err)
	}
}

func TestClient_RecordFeedback_UnknownAction(t *testing.T) {
	t.Parallel()

	fb, srv := newFakeBackend(t, nil)
	if err := NewClient(testConfig(srv.URL)).RecordFeedback(context.Background(), "meh"); err == nil {
		t.Error("expected error for unknown action")
	}
	if n := len(fb.seen()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestClient_PopularMovies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantLen int
	}{
		{"two entries", `{"data":[{"title":"A","rating":6},{"title":"B","rating":"9.1"}]}`, 2},
		{"empty list", `{"data":[]}`, 0},
		{"null data", `{"data":null}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, srv := newFakeBackend(t, map[string]http.HandlerFunc{
				PathPopularMovies: jsonHandler(http.StatusOK, tt.body),
			})

			movies, err := NewClient(testConfig(srv.URL)).PopularMovies(context.Background())
			if err != nil {
				t.Fatalf("PopularMovies() error: %v", err)
			}
			if movies == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(movies) != tt.wantLen {
				t.Errorf("expected %d movies, got %d", tt.wantLen, len(movies))
			}
		})
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	_, srv := newFakeBackend(t, map[string]http.HandlerFunc{
		PathGetMovie: func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		},
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(testConfig(srv.URL)).GetMovie(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Errorf("canceled request must not be reported as unavailable: %v", err)
	}
}

func TestClient_OversizedBodyIsMalformed(t *testing.T) {
	t.Parallel()

	body := `{"data":[{"title":"` + strings.Repeat("x", 256) + `"}]}`
	_, srv := newFakeBackend(t, map[string]http.HandlerFunc{
		PathPopularMovies: jsonHandler(http.StatusOK, body),
	})

	c := NewClient(testConfig(srv.URL))
	c.maxBody = 64
	if _, err := c.PopularMovies(context.Background()); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for a body over the limit, got %v", err)
	}

	c.maxBody = maxResponseBodySize
	movies, err := c.PopularMovies(context.Background())
	if err != nil || len(movies) != 1 {
		t.Errorf("expected one movie under the default limit, got %d, %v", len(movies), err)
	}
}

func TestClient_TrimsTrailingSlash(t *testing.T) {
	t.Parallel()

	fb, srv := newFakeBackend(t, map[string]http.HandlerFunc{
		PathGetMovie: jsonHandler(http.StatusOK, `{"data":{"title":"X"}}`),
	})
	if _, err := NewClient(testConfig(srv.URL + "/")).GetMovie(context.Background()); err != nil {
		t.Fatalf("GetMovie() error: %v", err)
	}
	if reqs := fb.seen(); reqs[0].Path != "/get-movie" {
		t.Errorf("unexpected path %q", reqs[0].Path)
	}
}

func TestNew_BreakerToggle(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost:1")
	if _, ok := New(cfg).(*Client); !ok {
		t.Error("expected plain *Client with breaker disabled")
	}

	cfg.Breaker = config.BreakerConfig{Enabled: true, MaxRequests: 1, Timeout: time.Second, MinRequests: 1, FailureRatio: 0.5}
	if _, ok := New(cfg).(*BreakerClient); !ok {
		t.Error("expected *BreakerClient with breaker enabled")
	}
}

func TestReadBodyForError_Truncates(t *testing.T) {
	t.Parallel()

	got := readBodyForError(strings.NewReader(strings.Repeat("x", maxErrorBodySize+10)))
	if !strings.HasSuffix(got, "... (truncated)") {
		t.Error("expected truncation marker")
	}
	if got := readBodyForError(strings.NewReader("short")); got != "short" {
		t.Errorf("expected short body, got %q", got)
	}
}
