package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/avamind/ava-core/agent/contract"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "key",
		AuthURL: "https://auth.example.com/connect",
		Timeout: time.Second,
	})
}

func testWindow() contractx.TimeWindow {
	start := time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)
	return contractx.TimeWindow{Start: start, End: start.Add(time.Hour)}
}

func TestCheckConflictsReturnsTitles(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/u1/events" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{"events":[{"title":"Team standup","start":"2026-03-03T15:00:00Z"}]}`))
	})

	titles, err := client.CheckConflicts(context.Background(), "u1", testWindow())
	if err != nil {
		t.Fatalf("CheckConflicts() error = %v", err)
	}
	if len(titles) != 1 || titles[0] != "Team standup" {
		t.Fatalf("titles = %v, want [Team standup]", titles)
	}
}

func TestConnectionLifecycleErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, contractx.ErrCalendarRevoked},
		{http.StatusForbidden, contractx.ErrCalendarRevoked},
		{http.StatusNotFound, contractx.ErrCalendarNotConnected},
		{http.StatusBadGateway, contractx.ErrCalendarUnavailable},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := client.CheckConflicts(context.Background(), "u1", testWindow())
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestCreateEventPostsPayload(t *testing.T) {
	t.Parallel()

	var gotMethod string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusCreated)
	})

	if err := client.CreateEvent(context.Background(), "u1", "dentist", testWindow(), "UTC"); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("method = %q, want POST", gotMethod)
	}
}

func TestDeleteTokensIgnoresMissing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if err := client.DeleteTokens(context.Background(), "u1"); err != nil {
		t.Fatalf("DeleteTokens() error = %v, want nil for already-absent tokens", err)
	}
}
