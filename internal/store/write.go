package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/presensi/internal/model"
)

// RecordStatus tells whether RecordAttendance stored a new row.
type RecordStatus int

const (
	// StatusAccepted means a new record was stored.
	StatusAccepted RecordStatus = iota + 1
	// StatusDuplicate means the user already has a record for the day.
	StatusDuplicate
)

// String implements fmt.Stringer.
func (s RecordStatus) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusDuplicate:
		return "duplicate"
	default:
		return fmt.Sprintf("RecordStatus(%d)", int(s))
	}
}

// NewRecord is the input to RecordAttendance.
type NewRecord struct {
	UserID      string
	DisplayName string
	Latitude    float64
	Longitude   float64

	// RecordedAt is the caller's "now". Its calendar day in the store's
	// location is the uniqueness key. Zero means the store's clock.
	RecordedAt time.Time
}

// RecordResult is the outcome of RecordAttendance.
// For StatusDuplicate, Record is the row that already exists.
type RecordResult struct {
	Status RecordStatus
	Record model.Record
}

// ErrInvalidRecord is returned for input that can never be stored.
var ErrInvalidRecord = errors.New("invalid record")

// RecordAttendance stores one attendance record for the user's current day.
//
// Uses ON CONFLICT(user_id, date) DO NOTHING so the duplicate check and the
// insert are a single statement. If no row was inserted, the existing record
// is read back in the same transaction and StatusDuplicate is returned.
//
// Any other failure is returned as an error and is never reported as a
// duplicate.
func (s *Store) RecordAttendance(ctx context.Context, nr NewRecord) (RecordResult, error) {
	if strings.TrimSpace(nr.UserID) == "" {
		return RecordResult{}, fmt.Errorf("record attendance: %w: user id is required", ErrInvalidRecord)
	}

	at := nr.RecordedAt
	if at.IsZero() {
		at = s.clock.Now()
	}
	at = at.In(s.loc)

	rec := model.Record{
		ID:          s.ids.Generate(),
		UserID:      nr.UserID,
		DisplayName: model.NormalizeName(nr.DisplayName),
		Date:        model.DateOf(at),
		Latitude:    nr.Latitude,
		Longitude:   nr.Longitude,
		RecordedAt:  at,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RecordResult{}, fmt.Errorf("record attendance: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO attendance
		(id, user_id, display_name, date, latitude, longitude, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO NOTHING
	`,
		rec.ID,
		rec.UserID,
		rec.DisplayName,
		string(rec.Date),
		rec.Latitude,
		rec.Longitude,
		encodeTime(rec.RecordedAt),
	)
	if err != nil {
		return RecordResult{}, fmt.Errorf("record attendance: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return RecordResult{}, fmt.Errorf("record attendance: rows affected: %w", err)
	}

	out := RecordResult{Status: StatusAccepted, Record: rec}
	if rowsAffected == 0 {
		existing, err := s.readRecord(ctx, tx, rec.UserID, rec.Date)
		if err != nil {
			return RecordResult{}, fmt.Errorf("record attendance: select existing: %w", err)
		}
		out = RecordResult{Status: StatusDuplicate, Record: existing}
	}

	if err := tx.Commit(); err != nil {
		return RecordResult{}, fmt.Errorf("record attendance: commit: %w", err)
	}

	return out, nil
}
