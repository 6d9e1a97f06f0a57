package usecase

import (
	"context"
	"time"

	"CheeseAgent/internal/ports"
)

// Scheduler wires the daily driver with the agent run.
type Scheduler struct {
	driver ports.Scheduler
	agent  *Agent
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, agent *Agent) *Scheduler {
	return &Scheduler{driver: driver, agent: agent}
}

// Start registers the agent run with the provided scheduler. Run errors are
// absorbed by the agent's own persistence and logging.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.agent == nil {
		return nil
	}

	job := func(time.Time) {
		_ = s.agent.Run(ctx)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
