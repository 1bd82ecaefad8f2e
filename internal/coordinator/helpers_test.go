package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/presensi/internal/model"
	"github.com/roach88/presensi/internal/pending"
	"github.com/roach88/presensi/internal/store"
	"github.com/roach88/presensi/internal/testutil"
)

var jakarta = time.FixedZone("WIB", 7*3600)

var day0 = time.Date(2024, 5, 1, 8, 0, 0, 0, jakarta)

const admin = "admin-1"

// spyStore counts calls into a real store.
type spyStore struct {
	inner   AttendanceStore
	records atomic.Int32
	reads   atomic.Int32
}

func (s *spyStore) RecordAttendance(ctx context.Context, nr store.NewRecord) (store.RecordResult, error) {
	s.records.Add(1)
	return s.inner.RecordAttendance(ctx, nr)
}

func (s *spyStore) RecordsForDate(ctx context.Context, date model.Date) ([]model.Record, error) {
	s.reads.Add(1)
	return s.inner.RecordsForDate(ctx, date)
}

// brokenStore fails every call.
type brokenStore struct{}

var errStoreDown = errors.New("disk I/O error")

func (brokenStore) RecordAttendance(context.Context, store.NewRecord) (store.RecordResult, error) {
	return store.RecordResult{}, errStoreDown
}

func (brokenStore) RecordsForDate(context.Context, model.Date) ([]model.Record, error) {
	return nil, errStoreDown
}

// brokenPending fails every call.
type brokenPending struct{}

func (brokenPending) Add(context.Context, string) error { return errors.New("redis down") }
func (brokenPending) Take(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenPending) Contains(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

type fixture struct {
	coord   *Coordinator
	spy     *spyStore
	store   *store.Store
	pending *pending.MemoryStore
	clock   *testutil.ManualClock
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture wires a coordinator over a temp SQLite store and a memory
// pending store, both on the same manual clock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := testutil.NewManualClock(day0)

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"),
		store.WithLocation(jakarta),
		store.WithClock(clk),
		store.WithIDGenerator(testutil.NewSequentialIDs("rec")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	spy := &spyStore{inner: st}
	pend := pending.NewMemoryStore(0, clk)
	coord := New(spy, pend, Config{
		AdminID:  admin,
		Location: jakarta,
		Clock:    clk,
		Logger:   quietLogger(),
	})

	return &fixture{coord: coord, spy: spy, store: st, pending: pend, clock: clk}
}

func command(user, name string) model.Event {
	return model.Event{UserID: user, DisplayName: user, Kind: model.EventCommand, Command: "/" + name}
}

func location(user string, lat, lon float64) model.Event {
	return model.Event{
		UserID:      user,
		DisplayName: "User " + user,
		Kind:        model.EventLocation,
		Location:    &model.Location{Latitude: lat, Longitude: lon},
	}
}

func text(user, body string) model.Event {
	return model.Event{UserID: user, Kind: model.EventText, Text: body}
}
