package store

import (
	"context"
	"time"

	"starrail-backend/internal/db"
)

// ErrorEntry is a failure that was persisted for later inspection.
type ErrorEntry struct {
	ID        int64
	Name      string
	Message   string
	Stack     string
	CreatedAt time.Time
}

func (s Store) RecordError(ctx context.Context, entry ErrorEntry) (int64, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return s.qry.CreateErrorLog(ctx, db.CreateErrorLogParams{
		Name:      entry.Name,
		Message:   entry.Message,
		Stack:     entry.Stack,
		CreatedAt: createdAt.UnixMilli(),
	})
}

// ListErrors returns the most recent entries first.
func (s Store) ListErrors(ctx context.Context, limit int64) ([]ErrorEntry, error) {
	rows, err := s.qry.ListErrorLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ErrorEntry, len(rows))
	for i, r := range rows {
		out[i] = ErrorEntry{
			ID:        r.ID,
			Name:      r.Name,
			Message:   r.Message,
			Stack:     r.Stack,
			CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
		}
	}
	return out, nil
}
