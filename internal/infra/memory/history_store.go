package memory

import (
	"context"
	"sync"

	"addition-drill/internal/domain"
)

// HistoryStore is an in-memory implementation of app.HistoryRepository.
type HistoryStore struct {
	mu      sync.RWMutex
	records []domain.SessionRecord
	saves   int
}

func NewHistoryStore(seed ...domain.SessionRecord) *HistoryStore {
	return &HistoryStore{records: domain.TrimHistory(append([]domain.SessionRecord(nil), seed...))}
}

func (s *HistoryStore) LoadHistory(_ context.Context) ([]domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SessionRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *HistoryStore) SaveHistory(_ context.Context, records []domain.SessionRecord) error {
	trimmed := domain.TrimHistory(records)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]domain.SessionRecord, len(trimmed))
	copy(s.records, trimmed)
	s.saves++
	return nil
}

// Saves reports how many times the history was written.
func (s *HistoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
