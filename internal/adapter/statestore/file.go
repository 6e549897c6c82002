package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/hive-corporation/casebridge/internal/core/poll"
)

// FileStore persists poll state as a JSON document on disk. Writes go
// through a temp file and rename so a crashed cycle never leaves a torn
// seen-set behind.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func New(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted state. A missing file is a fresh start, not an
// error.
func (s *FileStore) Load() (poll.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return poll.State{}, nil
	}
	if err != nil {
		return poll.State{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var state poll.State
	if err := json.Unmarshal(data, &state); err != nil {
		return poll.State{}, fmt.Errorf("failed to parse state file: %w", err)
	}
	return state, nil
}

// Save atomically replaces the persisted state.
func (s *FileStore) Save(state poll.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
