package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campusnav/config"
	"campusnav/mapview"
	"campusnav/models"
	"campusnav/nav"
)

type nullSpeaker struct{}

func (nullSpeaker) Speak(string, bool) {}

type nullProvider struct{}

func (nullProvider) Route(context.Context, models.Coordinate, models.Coordinate, models.TransportMode) (*models.RouteResult, error) {
	return &models.RouteResult{}, nil
}

func testServer() (*Server, *nav.Coordinator) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	b := mapview.NewBridge()
	c := nav.NewCoordinator(logger, b, nullProvider{}, nullSpeaker{})
	return &Server{config: &config.Config{}, bridge: b, coord: c}, c
}

func TestMapClickHandler(t *testing.T) {
	srv, c := testServer()
	c.SetPointSelectionMode(models.SelectionStart, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/map-click",
		strings.NewReader(`{"lat": 8.9899, "lon": 7.3862}`))
	w := httptest.NewRecorder()
	srv.mapClickHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	// the click is forwarded asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for {
		start, _ := c.Endpoints()
		if start != nil {
			if start.Lat != 8.9899 || start.Lon != 7.3862 {
				t.Errorf("start = %+v", start)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("click never reached the coordinator")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestMapClickHandlerBadPayload(t *testing.T) {
	srv, c := testServer()
	c.SetPointSelectionMode(models.SelectionStart, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/map-click",
		strings.NewReader(`not json`))
	w := httptest.NewRecorder()
	srv.mapClickHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	time.Sleep(10 * time.Millisecond)
	if start, _ := c.Endpoints(); start != nil {
		t.Error("bad payload must not move the coordinator")
	}
}

func TestSanitizeControlChars(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "hello world", "hello world"},
		{"newline injection", "line1\nFAKE: log line", "line1FAKE: log line"},
		{"carriage return", "a\r\nb", "ab"},
		{"tabs", "a\tb", "ab"},
		{"escape codes", "\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"non-ascii dropped", "café ☕", "caf "},
		{"empty", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := sanitizeControlChars(c.in); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "https://example.com/map", "https://example.com/map"},
		{"token redacted", "https://example.com/p?access_token=pk.secret123",
			"https://example.com/p?access_token=%5BREDACTED%5D"},
		{"mixed case key", "https://example.com/p?API_KEY=abc",
			"https://example.com/p?API_KEY=%5BREDACTED%5D"},
		{"harmless query kept", "https://example.com/p?page=2",
			"https://example.com/p?page=2"},
		{"fragment dropped", "https://example.com/p#secret-anchor",
			"https://example.com/p"},
		{"relative path passes through", "/local/path", "/local/path"},
		{"empty", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := sanitizeURL(c.in, 500); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := truncate("ab", 3); got != "ab" {
		t.Errorf("got %q", got)
	}
}
