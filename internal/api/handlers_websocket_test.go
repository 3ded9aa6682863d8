// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/reelpick/internal/config"
)

type wsFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	return dialer.Dial(url, header)
}

func readSession(t *testing.T, conn *websocket.Conn) snapshotBody {
	t.Helper()
	for {
		if err := conn.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
			t.Fatalf("set deadline: %v", err)
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var frame wsFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if frame.Type != "session" {
			continue
		}
		var snap snapshotBody
		if err := json.Unmarshal(frame.Data, &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		return snap
	}
}

func TestWebSocket_StreamsSnapshots(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, &backend{}, nil)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	// Load first so the hub has a snapshot to replay.
	env.do(t, http.MethodPost, "/api/v1/session/reload")

	conn, _, err := dialWS(t, srv, "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	replayed := readSession(t, conn)
	if replayed.State != "displayed" || replayed.Movie == nil || replayed.Movie.Title != "Movie 1" {
		t.Fatalf("replayed snapshot = %+v", replayed)
	}

	env.do(t, http.MethodPost, "/api/v1/session/reload")

	// A reload commits loading then displayed. Frames already queued when the
	// client registered may repeat the replayed sequence; skip those.
	var last snapshotBody
	for last.State != "displayed" || last.Sequence <= replayed.Sequence {
		last = readSession(t, conn)
	}
	if last.Movie == nil || last.Movie.Title != "Movie 2" {
		t.Errorf("streamed snapshot = %+v", last)
	}
}

func TestWebSocket_Ping(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, &backend{}, nil)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	conn, _, err := dialWS(t, srv, "http://allowed.example")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame wsFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Type != "pong" {
		t.Errorf("frame type = %q, want pong", frame.Type)
	}
}

func TestWebSocket_RejectsUnknownOrigin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, &backend{}, nil)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	conn, resp, err := dialWS(t, srv, "http://evil.example")
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake to fail for an unlisted origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %+v, want 403", resp)
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		origins []string
		origin  string
		host    string
		want    bool
	}{
		{"no origin", []string{"https://a.example"}, "", "localhost:8090", true},
		{"listed", []string{"https://a.example"}, "https://a.example", "localhost:8090", true},
		{"wildcard", []string{"*"}, "https://any.example", "localhost:8090", true},
		{"same host", []string{"https://a.example"}, "http://localhost:8090", "localhost:8090", true},
		{"unlisted", []string{"https://a.example"}, "https://b.example", "localhost:8090", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &Handler{config: &config.Config{Server: config.ServerConfig{CORSOrigins: tt.origins}}}
			r := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := handler.checkWebSocketOrigin(r); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}
