package worldfootball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openfooty/schedsync/internal/domain/schedule"
	"github.com/openfooty/schedsync/internal/platform/logging"
	"github.com/openfooty/schedsync/internal/usecase"
)

const rowsPayload = `{"rows":[
	{"season":"2024-2025","competition":"epl","round":"1. Round","date":"2024-08-17",
	 "time":"16:00","home_team":"Arsenal FC","away_team":"Chelsea FC","score":"2:1"}
]}`

func newTestClient(t *testing.T, baseURLs ...string) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		BaseURLs:   baseURLs,
		MaxRetries: 1,
		Logger:     logging.NewNop(),
	})
}

func TestFetchScheduleHappyPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/all_matches/epl-2024-2025" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("family") != "league" {
			http.Error(w, "missing family", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(rowsPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	rows, err := client.FetchSchedule(context.Background(), schedule.FamilyLeague, "epl", "2024-2025")
	if err != nil {
		t.Fatalf("FetchSchedule: %v", err)
	}
	if len(rows) != 1 || rows[0].HomeTeam != "Arsenal FC" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestFetchScheduleFallsBackToAlternatePath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/all_matches/epl-2005-2006_2" {
			_, _ = w.Write([]byte(rowsPayload))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	rows, err := client.FetchSchedule(context.Background(), schedule.FamilyLeague, "epl", "2005-2006")
	if err != nil {
		t.Fatalf("FetchSchedule: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestFetchScheduleFallsBackToNextBaseURL(t *testing.T) {
	t.Parallel()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rowsPayload))
	}))
	defer up.Close()

	client := NewClient(ClientConfig{
		BaseURLs:   []string{down.URL, up.URL},
		MaxRetries: 0,
		Logger:     logging.NewNop(),
	})
	rows, err := client.FetchSchedule(context.Background(), schedule.FamilyLeague, "epl", "2024-2025")
	if err != nil {
		t.Fatalf("FetchSchedule: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestFetchScheduleRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(rowsPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.FetchSchedule(context.Background(), schedule.FamilyLeague, "epl", "2024-2025"); err != nil {
		t.Fatalf("FetchSchedule: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestFetchScheduleEmptyTables(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rows":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchSchedule(context.Background(), schedule.FamilyLeague, "epl", "2024-2025")
	if !errors.Is(err, usecase.ErrNoDataTable) {
		t.Fatalf("expected ErrNoDataTable, got %v", err)
	}
}

func TestFetchScheduleAllCandidatesFail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURLs:   []string{server.URL},
		MaxRetries: 0,
		Logger:     logging.NewNop(),
	})
	_, err := client.FetchSchedule(context.Background(), schedule.FamilyLeague, "epl", "2024-2025")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestFetchScheduleFillsSeasonAndCompetition(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rows":[{"round":"Final","date":"2025-05-31","home_team":"A","away_team":"B"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	rows, err := client.FetchSchedule(context.Background(), schedule.FamilyCup, "fa-cup", "2024-2025")
	if err != nil {
		t.Fatalf("FetchSchedule: %v", err)
	}
	if rows[0].Season != "2024-2025" || rows[0].Competition != "fa-cup" {
		t.Fatalf("row = %+v", rows[0])
	}

	if _, err := client.FetchSchedule(context.Background(), schedule.FamilyCup, "", "2024-2025"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
