// Package store persists codes, news articles and error log entries in sqlite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/db"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("starrail.internal.store")

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:     database,
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
	}
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	out, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeStrings(raw string) ([]string, error) {
	var out []string
	err := json.Unmarshal([]byte(raw), &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func toCodeRecord(row db.Code) (codes.CodeRecord, error) {
	rewards, err := decodeStrings(row.Rewards)
	if err != nil {
		return codes.CodeRecord{}, fmt.Errorf("decode rewards of %s: %w", row.Code, err)
	}
	return codes.CodeRecord{
		Code:    row.Code,
		Rewards: rewards,
		Source:  row.Source,
		Date:    time.UnixMilli(row.DiscoveredAt).UTC(),
		Active:  row.Active,
	}, nil
}

func toCodeRecords(rows []db.Code) ([]codes.CodeRecord, error) {
	out := make([]codes.CodeRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := toCodeRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s Store) CountCodes(ctx context.Context) (int64, error) {
	return s.qry.CountCodes(ctx)
}

func (s Store) ListCodes(ctx context.Context) ([]codes.CodeRecord, error) {
	rows, err := s.qry.ListCodes(ctx)
	if err != nil {
		return nil, err
	}
	return toCodeRecords(rows)
}

func (s Store) ListActiveCodes(ctx context.Context) ([]codes.CodeRecord, error) {
	rows, err := s.qry.ListCodesByActive(ctx, true)
	if err != nil {
		return nil, err
	}
	return toCodeRecords(rows)
}

func (s Store) ListInactiveCodes(ctx context.Context) ([]codes.CodeRecord, error) {
	rows, err := s.qry.ListCodesByActive(ctx, false)
	if err != nil {
		return nil, err
	}
	return toCodeRecords(rows)
}

func (s Store) GetCode(ctx context.Context, code string) (codes.CodeRecord, error) {
	row, err := s.qry.GetCode(ctx, code)
	if err != nil {
		return codes.CodeRecord{}, err
	}
	return toCodeRecord(row)
}

// InsertCodes inserts all records in a single transaction, records whose code
// already exists are left untouched and left out of the result.
func (s Store) InsertCodes(ctx context.Context, records []codes.CodeRecord) ([]codes.CodeRecord, error) {
	ctx, span := tracer.Start(ctx, "InsertCodes")
	defer span.End()

	txqry, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to begin transaction")
		return nil, err
	}
	defer discard()

	var inserted []codes.CodeRecord
	for _, r := range records {
		rewards, err := encodeStrings(r.Rewards)
		if err != nil {
			return nil, err
		}
		affected, err := txqry.CreateCode(ctx, db.CreateCodeParams{
			Code:         r.Code,
			Rewards:      rewards,
			Source:       r.Source,
			DiscoveredAt: r.Date.UnixMilli(),
			Active:       r.Active,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "failed to insert code")
			return nil, fmt.Errorf("insert %s: %w", r.Code, err)
		}
		if affected > 0 {
			inserted = append(inserted, r)
		}
	}

	err = commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to commit transaction")
		return nil, err
	}
	return inserted, nil
}

// SetCodeActive fails with sql.ErrNoRows if the code does not exist.
func (s Store) SetCodeActive(ctx context.Context, code string, active bool) error {
	affected, err := s.qry.SetCodeActive(ctx, db.SetCodeActiveParams{
		Active: active,
		Code:   code,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("set active of %s: %w", code, sql.ErrNoRows)
	}
	return nil
}

var _ codes.StoreAPI = Store{}
