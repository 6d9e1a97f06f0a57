package storage

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"CheeseAgent/internal/domain"
)

func newTestRepository(t *testing.T) (*FileRepository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "agent_state.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFileRepository(path, logger), path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)

	state := repo.Load()
	if state.TotalImagesScraped != 0 {
		t.Fatalf("expected zero total, got %d", state.TotalImagesScraped)
	}
	if state.PendingUploads == nil || len(state.PendingUploads) != 0 {
		t.Fatalf("expected empty pending uploads, got %v", state.PendingUploads)
	}
	if state.DailyStats == nil {
		t.Fatal("expected daily stats map to be initialized")
	}
}

func TestLoadCorruptFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	state := repo.Load()
	if state.TotalImagesScraped != 0 || len(state.PendingUploads) != 0 {
		t.Fatalf("expected default state, got %+v", state)
	}
}

func TestLoadFillsAbsentKeys(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)
	if err := os.WriteFile(path, []byte(`{"total_images_scraped": 7}`), 0o644); err != nil {
		t.Fatalf("write partial file: %v", err)
	}

	state := repo.Load()
	if state.TotalImagesScraped != 7 {
		t.Fatalf("expected total 7, got %d", state.TotalImagesScraped)
	}
	if state.PendingUploads == nil {
		t.Fatal("expected pending uploads to be default-filled")
	}
	if state.DailyStats == nil {
		t.Fatal("expected daily stats to be default-filled")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)

	want := domain.AgentState{
		TotalImagesScraped: 3,
		PendingUploads: []domain.QueueEntry{
			{
				FilePath: "file:///tmp/hard_abc.jpg",
				PublicID: "cheese-collection/hard_abc_12345678",
				Tags:     "cheese,hard",
				Context:  "source=google-images|license=creative-commons|scrape_date=2026-08-23",
			},
		},
		DailyStats: map[string]domain.DailyStat{
			"2026-08-23": {Scraped: 3},
		},
		LastRun: "2026-08-23T06:00:00Z",
	}

	if err := repo.Save(want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got := repo.Load()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	// All four top-level keys must be present on disk.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("parse state file: %v", err)
	}
	for _, key := range []string{"total_images_scraped", "pending_uploads", "daily_stats", "last_run"} {
		if _, ok := keys[key]; !ok {
			t.Fatalf("state file missing key %q", key)
		}
	}
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "agent_state.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewFileRepository(path, logger)

	var state domain.AgentState
	state.Normalize()
	if err := repo.Save(state); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected state file at %s: %v", path, err)
	}
}
