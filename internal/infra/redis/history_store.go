package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"addition-drill/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultHistoryKey is the namespaced key the history blob lives under.
const DefaultHistoryKey = "arith-drill:history"

// HistoryStore keeps the history as a single JSON value:
//
//	SET arith-drill:history [{"date":...,"solved":...}, ...]
//
// Concurrent loads are coalesced into one GET.
type HistoryStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	sf     singleflight.Group
}

// NewHistoryStore uses DefaultHistoryKey when key is empty. A ttl of zero keeps the value forever.
func NewHistoryStore(client *redis.Client, key string, ttl time.Duration) *HistoryStore {
	if key == "" {
		key = DefaultHistoryKey
	}
	return &HistoryStore{client: client, key: key, ttl: ttl}
}

func (s *HistoryStore) LoadHistory(ctx context.Context) ([]domain.SessionRecord, error) {
	result, err, _ := s.sf.Do(s.key, func() (interface{}, error) {
		raw, err := s.client.Get(ctx, s.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return []domain.SessionRecord{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
		}
		var records []domain.SessionRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			log.Printf("ignoring malformed history under %s: %v", s.key, err)
			return []domain.SessionRecord{}, nil
		}
		return domain.TrimHistory(records), nil
	})
	if err != nil {
		return nil, err
	}
	shared := result.([]domain.SessionRecord)
	out := make([]domain.SessionRecord, len(shared))
	copy(out, shared)
	return out, nil
}

func (s *HistoryStore) SaveHistory(ctx context.Context, records []domain.SessionRecord) error {
	records = domain.TrimHistory(records)
	if records == nil {
		records = []domain.SessionRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}
	return nil
}
