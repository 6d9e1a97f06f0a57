package usecase

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"CheeseAgent/internal/domain"
	"CheeseAgent/internal/ports"
)

const defaultDailyTarget = 10

// AgentDeps wires the driven adapters into the run orchestrator.
type AgentDeps struct {
	Source           ports.CandidateSource
	States           ports.StateRepository
	Notifier         ports.Notifier
	Assistant        ports.AssistantClient
	Logger           *slog.Logger
	DailyTarget      int
	CollectionPrefix string
}

// Agent executes one discovery-and-merge pass per Run invocation and owns
// the durable state lifecycle: load once, mutate in memory, persist on
// every exit path.
type Agent struct {
	source           ports.CandidateSource
	states           ports.StateRepository
	notifier         ports.Notifier
	assistant        ports.AssistantClient
	logger           *slog.Logger
	dailyTarget      int
	collectionPrefix string
	now              func() time.Time
}

// NewAgent constructs the orchestrator.
func NewAgent(deps AgentDeps) *Agent {
	target := deps.DailyTarget
	if target <= 0 {
		target = defaultDailyTarget
	}
	prefix := deps.CollectionPrefix
	if prefix == "" {
		prefix = "cheese-collection"
	}

	return &Agent{
		source:           deps.Source,
		states:           deps.States,
		notifier:         deps.Notifier,
		assistant:        deps.Assistant,
		logger:           deps.Logger,
		dailyTarget:      target,
		collectionPrefix: prefix,
		now:              time.Now,
	}
}

// Run loads the agent state, discovers candidates, merges them into the
// deduplicated pending-upload queue, and updates the counters. The state is
// saved in a deferred step so a failed run still records whatever progress
// was made before the error.
func (a *Agent) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := a.logger.With("run_id", runID)

	state := a.states.Load()

	defer func() {
		state.LastRun = a.now().Format(time.RFC3339)
		if err := a.states.Save(state); err != nil {
			log.Error("failed to save agent state", "error", err)
		}
	}()

	if a.source == nil {
		log.Error("discovery source not available, aborting run")
		return fmt.Errorf("discovery source not available")
	}

	log.Info("starting scraping run", "target", a.dailyTarget)

	candidates, err := a.source.Discover(ctx, a.dailyTarget)
	if err != nil {
		return fmt.Errorf("discover candidates: %w", err)
	}
	if len(candidates) == 0 {
		log.Info("no new candidates found in this run")
		return nil
	}

	added := 0
	existing := make(map[string]struct{}, len(state.PendingUploads))
	for _, entry := range state.PendingUploads {
		existing[entry.FilePath] = struct{}{}
	}

	for _, cand := range candidates {
		entry, err := a.buildEntry(cand)
		if err != nil {
			log.Warn("skipping candidate", "id", cand.ID, "error", err)
			continue
		}
		if _, dup := existing[entry.FilePath]; dup {
			continue
		}
		state.PendingUploads = append(state.PendingUploads, entry)
		existing[entry.FilePath] = struct{}{}
		added++
	}

	today := a.now().Format("2006-01-02")
	state.TotalImagesScraped += added
	stat := state.DailyStats[today]
	stat.Scraped += added
	state.DailyStats[today] = stat

	log.Info("run complete",
		"found", len(candidates),
		"added", added,
		"pending", len(state.PendingUploads),
		"total", state.TotalImagesScraped)

	summary := fmt.Sprintf(
		"Cheese agent run %s: %d candidates found, %d newly queued, %d images pending upload.",
		runID, len(candidates), added, len(state.PendingUploads))

	a.notify(ctx, log, summary)
	a.handOff(ctx, log, state.PendingUploads)

	return nil
}

// buildEntry derives the durable queue record from a candidate: a file://
// URI, a collection-prefixed public id carrying a short content hash, and
// the joined tag and context strings the publisher consumes as-is.
func (a *Agent) buildEntry(cand domain.Candidate) (domain.QueueEntry, error) {
	raw, err := os.ReadFile(cand.FilePath)
	if err != nil {
		return domain.QueueEntry{}, fmt.Errorf("read candidate file: %w", err)
	}
	sum := md5.Sum(raw)
	shortHash := hex.EncodeToString(sum[:])[:8]

	abs, err := filepath.Abs(cand.FilePath)
	if err != nil {
		return domain.QueueEntry{}, fmt.Errorf("resolve candidate path: %w", err)
	}

	base := filepath.Base(abs)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	parts := make([]string, 0, len(cand.Context))
	for _, kv := range cand.Context {
		parts = append(parts, kv.Key+"="+kv.Value)
	}

	return domain.QueueEntry{
		FilePath: "file://" + abs,
		PublicID: fmt.Sprintf("%s/%s_%s", a.collectionPrefix, stem, shortHash),
		Tags:     strings.Join(cand.Tags, ","),
		Context:  strings.Join(parts, "|"),
	}, nil
}

func (a *Agent) notify(ctx context.Context, log *slog.Logger, summary string) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.PublishSummary(ctx, summary); err != nil {
		log.Warn("summary notification failed", "error", err)
	}
}

func (a *Agent) handOff(ctx context.Context, log *slog.Logger, pending []domain.QueueEntry) {
	if a.assistant == nil || len(pending) == 0 {
		return
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		log.Warn("failed to build assistant digest", "error", err)
		return
	}
	if err := a.assistant.SendQueueDigest(ctx, payload); err != nil {
		log.Warn("assistant hand-off failed", "error", err)
	}
}
