package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/presensi/internal/model"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row selected with recordColumns.
// sql.ErrNoRows is returned unwrapped so callers can map it.
func (s *Store) scanRecord(row scanner) (model.Record, error) {
	var (
		rec        model.Record
		date       string
		recordedAt int64
	)

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.DisplayName,
		&date,
		&rec.Latitude,
		&rec.Longitude,
		&recordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, err
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("scan record: %w", err)
	}

	rec.Date = model.Date(date)
	rec.RecordedAt = decodeTime(recordedAt, s.loc)
	return rec, nil
}

// encodeTime stores an instant as UTC Unix nanoseconds so integer ordering
// matches chronological ordering regardless of zone.
func encodeTime(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func decodeTime(n int64, loc *time.Location) time.Time {
	return time.Unix(0, n).In(loc)
}
