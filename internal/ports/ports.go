package ports

import (
	"context"
	"time"

	"CheeseAgent/internal/domain"
)

// CandidateSource discovers validated image candidates up to a target count.
type CandidateSource interface {
	Discover(ctx context.Context, target int) ([]domain.Candidate, error)
}

// StateRepository owns the durable agent state. Load absorbs missing or
// unreadable files into a default state; Save overwrites the file wholesale.
type StateRepository interface {
	Load() domain.AgentState
	Save(state domain.AgentState) error
}

// Notifier publishes the human-readable run summary to an outbound channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// AssistantClient ships the pending-upload digest to an external assistant
// that performs the actual publishing.
type AssistantClient interface {
	SendQueueDigest(ctx context.Context, payload []byte) error
}

// Scheduler controls when agent runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
