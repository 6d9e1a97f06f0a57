package usecase

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CheeseAgent/internal/domain"
	"CheeseAgent/internal/infrastructure/storage"
	"CheeseAgent/internal/scraper"
)

type fakeSource struct {
	candidates []domain.Candidate
	err        error
}

func (f *fakeSource) Discover(_ context.Context, _ int) ([]domain.Candidate, error) {
	return f.candidates, f.err
}

type fakeNotifier struct {
	summaries []string
}

func (f *fakeNotifier) PublishSummary(_ context.Context, summary string) error {
	f.summaries = append(f.summaries, summary)
	return nil
}

type fakeAssistant struct {
	payloads [][]byte
}

func (f *fakeAssistant) SendQueueDigest(_ context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCandidate(t *testing.T, dir, category string, seed byte) domain.Candidate {
	t.Helper()

	content := []byte{0x89, 'P', 'N', 'G', seed}
	name := fmt.Sprintf("%s_%x.jpg", strings.ReplaceAll(category, " ", "_"), seed)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write candidate file: %v", err)
	}

	scrapedAt := time.Date(2026, time.August, 23, 6, 0, 0, 0, time.UTC)
	return scraper.Assemble(path, category, scrapedAt)
}

func newTestAgent(t *testing.T, source *fakeSource) (*Agent, *storage.FileRepository) {
	t.Helper()

	statePath := filepath.Join(t.TempDir(), "agent_state.json")
	repo := storage.NewFileRepository(statePath, discardLogger())

	deps := AgentDeps{
		States: repo,
		Logger: discardLogger(),
	}
	if source != nil {
		deps.Source = source
	}
	return NewAgent(deps), repo
}

func TestRunQueuesDiscoveredCandidates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := &fakeSource{candidates: []domain.Candidate{
		writeCandidate(t, dir, "hard", 1),
		writeCandidate(t, dir, "blue", 2),
		writeCandidate(t, dir, "fresh", 3),
	}}
	agent, repo := newTestAgent(t, source)

	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	state := repo.Load()
	if len(state.PendingUploads) != 3 {
		t.Fatalf("expected 3 pending uploads, got %d", len(state.PendingUploads))
	}
	if state.TotalImagesScraped != 3 {
		t.Fatalf("expected total 3, got %d", state.TotalImagesScraped)
	}

	today := time.Now().Format("2006-01-02")
	if state.DailyStats[today].Scraped != 3 {
		t.Fatalf("expected daily stat 3, got %d", state.DailyStats[today].Scraped)
	}
	if state.LastRun == "" {
		t.Fatal("expected last_run to be stamped")
	}
}

func TestRunEntryFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cand := writeCandidate(t, dir, "washed rind", 4)
	source := &fakeSource{candidates: []domain.Candidate{cand}}
	agent, repo := newTestAgent(t, source)

	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	state := repo.Load()
	if len(state.PendingUploads) != 1 {
		t.Fatalf("expected 1 pending upload, got %d", len(state.PendingUploads))
	}
	entry := state.PendingUploads[0]

	abs, err := filepath.Abs(cand.FilePath)
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	if entry.FilePath != "file://"+abs {
		t.Fatalf("unexpected file URI: %s", entry.FilePath)
	}

	raw, err := os.ReadFile(cand.FilePath)
	if err != nil {
		t.Fatalf("read candidate: %v", err)
	}
	sum := md5.Sum(raw)
	stem := strings.TrimSuffix(filepath.Base(abs), ".jpg")
	wantID := fmt.Sprintf("cheese-collection/%s_%s", stem, hex.EncodeToString(sum[:])[:8])
	if entry.PublicID != wantID {
		t.Fatalf("expected public id %s, got %s", wantID, entry.PublicID)
	}

	if entry.Tags != "cheese,washed rind" {
		t.Fatalf("unexpected tags: %s", entry.Tags)
	}
	if entry.Context != "source=google-images|license=creative-commons|scrape_date=2026-08-23" {
		t.Fatalf("unexpected context: %s", entry.Context)
	}
}

func TestRunDeduplicatesAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	candidates := []domain.Candidate{
		writeCandidate(t, dir, "hard", 1),
		writeCandidate(t, dir, "blue", 2),
		writeCandidate(t, dir, "fresh", 3),
	}
	source := &fakeSource{candidates: candidates}
	agent, repo := newTestAgent(t, source)

	for i := 0; i < 2; i++ {
		if err := agent.Run(context.Background()); err != nil {
			t.Fatalf("Run %d error: %v", i, err)
		}
	}

	state := repo.Load()
	if len(state.PendingUploads) != 3 {
		t.Fatalf("expected 3 pending uploads after second run, got %d", len(state.PendingUploads))
	}
	if state.TotalImagesScraped != 3 {
		t.Fatalf("expected total to stay 3, got %d", state.TotalImagesScraped)
	}

	seen := map[string]struct{}{}
	for _, entry := range state.PendingUploads {
		if _, dup := seen[entry.FilePath]; dup {
			t.Fatalf("duplicate file URI in queue: %s", entry.FilePath)
		}
		seen[entry.FilePath] = struct{}{}
	}
}

func TestRunTotalIsMonotonic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := &fakeSource{candidates: []domain.Candidate{writeCandidate(t, dir, "hard", 1)}}
	agent, repo := newTestAgent(t, source)

	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := repo.Load().TotalImagesScraped

	// Second run adds one genuinely new candidate alongside the duplicate.
	source.candidates = append(source.candidates, writeCandidate(t, dir, "blue", 9))
	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	after := repo.Load().TotalImagesScraped
	if after < before {
		t.Fatalf("total decreased: %d -> %d", before, after)
	}
	if after != before+1 {
		t.Fatalf("expected total %d, got %d", before+1, after)
	}
}

func TestRunWithoutSourcePersistsUnchangedState(t *testing.T) {
	t.Parallel()

	agent, repo := newTestAgent(t, nil)

	seeded := domain.AgentState{
		TotalImagesScraped: 5,
		PendingUploads:     []domain.QueueEntry{{FilePath: "file:///tmp/x.jpg"}},
		DailyStats:         map[string]domain.DailyStat{"2026-08-22": {Scraped: 5}},
	}
	if err := repo.Save(seeded); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	if err := agent.Run(context.Background()); err == nil {
		t.Fatal("expected error when source is unavailable")
	}

	state := repo.Load()
	if state.TotalImagesScraped != 5 {
		t.Fatalf("expected total unchanged at 5, got %d", state.TotalImagesScraped)
	}
	if len(state.PendingUploads) != 1 {
		t.Fatalf("expected queue unchanged, got %d entries", len(state.PendingUploads))
	}
	if state.LastRun == "" {
		t.Fatal("expected the aborted run to still persist state")
	}
}

func TestRunNotifiesAndHandsOff(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := &fakeSource{candidates: []domain.Candidate{writeCandidate(t, dir, "bloomy", 7)}}

	statePath := filepath.Join(t.TempDir(), "agent_state.json")
	repo := storage.NewFileRepository(statePath, discardLogger())
	notifier := &fakeNotifier{}
	assistant := &fakeAssistant{}

	agent := NewAgent(AgentDeps{
		Source:    source,
		States:    repo,
		Notifier:  notifier,
		Assistant: assistant,
		Logger:    discardLogger(),
	})

	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(notifier.summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(notifier.summaries))
	}
	if !strings.Contains(notifier.summaries[0], "1 newly queued") {
		t.Fatalf("unexpected summary: %s", notifier.summaries[0])
	}

	if len(assistant.payloads) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(assistant.payloads))
	}
	var digest []domain.QueueEntry
	if err := json.Unmarshal(assistant.payloads[0], &digest); err != nil {
		t.Fatalf("parse digest: %v", err)
	}
	if len(digest) != 1 || !strings.HasPrefix(digest[0].PublicID, "cheese-collection/") {
		t.Fatalf("unexpected digest: %v", digest)
	}
}

func TestRunSkipsUnreadableCandidateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeCandidate(t, dir, "hard", 1)
	missing := good
	missing.FilePath = filepath.Join(dir, "gone.jpg")
	missing.ID = "gone.jpg"

	source := &fakeSource{candidates: []domain.Candidate{missing, good}}
	agent, repo := newTestAgent(t, source)

	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	state := repo.Load()
	if len(state.PendingUploads) != 1 {
		t.Fatalf("expected only the readable candidate queued, got %d", len(state.PendingUploads))
	}
	if state.TotalImagesScraped != 1 {
		t.Fatalf("expected total 1, got %d", state.TotalImagesScraped)
	}
}
