package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"addition-drill/internal/domain"
)

// HistoryStore keeps the whole history as one JSON document on disk.
type HistoryStore struct {
	path string
	mu   sync.Mutex
}

func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

func (s *HistoryStore) LoadHistory(_ context.Context) ([]domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.SessionRecord{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var records []domain.SessionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("ignoring malformed history at %s: %v", s.path, err)
		return []domain.SessionRecord{}, nil
	}
	if records == nil {
		records = []domain.SessionRecord{}
	}
	return domain.TrimHistory(records), nil
}

func (s *HistoryStore) SaveHistory(_ context.Context, records []domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(domain.TrimHistory(records), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	// write-then-rename so a crash never leaves a half-written document
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return os.Rename(tmp, s.path)
}
