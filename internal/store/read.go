package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/presensi/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const recordColumns = `id, user_id, display_name, date, latitude, longitude, recorded_at`

// RecordsForDate returns every record for the given day, ordered by
// recorded_at ASC with seq ASC as the tie-breaker.
//
// Returns an empty slice (not nil) if no records exist for the date.
func (s *Store) RecordsForDate(ctx context.Context, date model.Date) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance
		WHERE date = ?
		ORDER BY recorded_at ASC, seq ASC
	`, string(date))
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// ReadRecord retrieves a user's record for a day.
// Returns ErrNotFound if the user has not attended that day.
func (s *Store) ReadRecord(ctx context.Context, userID string, date model.Date) (model.Record, error) {
	return s.readRecord(ctx, s.db, userID, date)
}

func (s *Store) readRecord(ctx context.Context, q rowQuerier, userID string, date model.Date) (model.Record, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance
		WHERE user_id = ? AND date = ?
	`, userID, string(date))

	rec, err := s.scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, ErrNotFound
	}
	return rec, err
}

// CountForDate returns the number of records for the given day.
func (s *Store) CountForDate(ctx context.Context, date model.Date) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE date = ?`, string(date),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
