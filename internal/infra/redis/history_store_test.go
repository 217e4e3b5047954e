package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"addition-drill/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHistoryStoreSavesUnderFixedKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewHistoryStore(newClient(mr), "", time.Minute)
	ctx := context.Background()

	records := make([]domain.SessionRecord, domain.HistoryLimit+3)
	for i := range records {
		records[i] = domain.SessionRecord{
			Date:   time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC),
			Solved: i,
			Total:  10,
			Reason: domain.ReasonFinished,
		}
	}
	if err := store.SaveHistory(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists(DefaultHistoryKey) {
		t.Fatalf("expected key %s to be set", DefaultHistoryKey)
	}
	if ttl := mr.TTL(DefaultHistoryKey); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %v", ttl)
	}

	got, err := store.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != domain.HistoryLimit {
		t.Fatalf("expected %d records, got %d", domain.HistoryLimit, len(got))
	}
	if got[0].Solved != 0 || !got[0].Date.Equal(records[0].Date) {
		t.Fatalf("unexpected first record %+v", got[0])
	}
}

func TestHistoryStoreMissingAndMalformed(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewHistoryStore(newClient(mr), "drill:test:history", 0)
	ctx := context.Background()

	got, err := store.LoadHistory(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty history for missing key, got %v (err %v)", got, err)
	}

	if err := mr.Set("drill:test:history", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err = store.LoadHistory(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty history for malformed value, got %v (err %v)", got, err)
	}
}

func TestHistoryStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	store := NewHistoryStore(client, "", 0)
	if _, err := store.LoadHistory(context.Background()); !errors.Is(err, domain.ErrHistoryUnavailable) {
		t.Fatalf("expected ErrHistoryUnavailable, got %v", err)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
