package postgres

import (
	"context"
	"fmt"

	"addition-drill/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// HistoryStore persists session records in the session_history table.
// position 0 is the newest record.
type HistoryStore struct {
	pool *pgxpool.Pool
}

func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

func (s *HistoryStore) LoadHistory(ctx context.Context) ([]domain.SessionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT completed_at, solved, total, duration_sec, reason
		FROM session_history
		ORDER BY position
		LIMIT $1`, domain.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}
	defer rows.Close()

	records := make([]domain.SessionRecord, 0, domain.HistoryLimit)
	for rows.Next() {
		var rec domain.SessionRecord
		var reason string
		if err := rows.Scan(&rec.Date, &rec.Solved, &rec.Total, &rec.DurationSec, &reason); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Date = rec.Date.UTC()
		rec.Reason = domain.Reason(reason)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return records, nil
}

// SaveHistory replaces the stored collection in one transaction.
func (s *HistoryStore) SaveHistory(ctx context.Context, records []domain.SessionRecord) error {
	records = domain.TrimHistory(records)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM session_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for i, rec := range records {
		if _, err := tx.Exec(ctx, `
			INSERT INTO session_history (position, completed_at, solved, total, duration_sec, reason)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			i, rec.Date.UTC(), rec.Solved, rec.Total, rec.DurationSec, string(rec.Reason)); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}
	return tx.Commit(ctx)
}
