package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"CheeseAgent/internal/domain"
	"CheeseAgent/internal/ports"
)

// FileRepository persists the agent state as a single JSON document. The
// file is assumed to be owned by one process at a time; concurrent writers
// are the caller's problem.
type FileRepository struct {
	path   string
	logger *slog.Logger
}

var _ ports.StateRepository = (*FileRepository)(nil)

// NewFileRepository binds the repository to a state file path.
func NewFileRepository(path string, log *slog.Logger) *FileRepository {
	return &FileRepository{path: path, logger: log}
}

// Load reads the state file. A missing, unreadable, or corrupt file yields
// the default state; a readable file has any absent key default-filled, so
// every top-level key is always present after load.
func (r *FileRepository) Load() domain.AgentState {
	var state domain.AgentState
	state.Normalize()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.warn("failed to load agent state", "path", r.path, "error", err)
		}
		return state
	}

	var loaded domain.AgentState
	if err := json.Unmarshal(raw, &loaded); err != nil {
		r.warn("failed to parse agent state", "path", r.path, "error", err)
		return state
	}

	loaded.Normalize()
	return loaded
}

// Save overwrites the state file wholesale.
func (r *FileRepository) Save(state domain.AgentState) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal agent state: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return fmt.Errorf("write agent state: %w", err)
	}
	return nil
}

func (r *FileRepository) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
