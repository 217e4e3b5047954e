package app

import (
	"context"
	"log"
	"sync"

	"addition-drill/internal/domain"
)

// HistoryRepository abstracts where session records live (memory, file, Redis, Postgres).
// Implementations return an empty history for missing or malformed data and
// truncate to domain.HistoryLimit on save.
type HistoryRepository interface {
	LoadHistory(ctx context.Context) ([]domain.SessionRecord, error)
	SaveHistory(ctx context.Context, records []domain.SessionRecord) error
}

// History is the persistence collaborator handed to controllers. Backend
// failures are logged and treated as an empty history; they never reach callers.
type History struct {
	repo HistoryRepository
	mu   sync.Mutex
}

func NewHistory(repo HistoryRepository) *History {
	return &History{repo: repo}
}

// Load returns the stored history, newest first.
func (h *History) Load(ctx context.Context) []domain.SessionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadLocked(ctx)
}

// Record prepends rec to the stored history and persists the whole collection.
func (h *History) Record(ctx context.Context, rec domain.SessionRecord) []domain.SessionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := domain.PrependRecord(h.loadLocked(ctx), rec)
	if err := h.repo.SaveHistory(ctx, records); err != nil {
		log.Printf("save history: %v", err)
	}
	return records
}

func (h *History) loadLocked(ctx context.Context) []domain.SessionRecord {
	records, err := h.repo.LoadHistory(ctx)
	if err != nil {
		log.Printf("load history: %v", err)
		return []domain.SessionRecord{}
	}
	if records == nil {
		return []domain.SessionRecord{}
	}
	return domain.TrimHistory(records)
}
