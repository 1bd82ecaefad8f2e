package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/presensi/internal/model"
	"github.com/roach88/presensi/internal/pending"
)

func TestHandle_FullAttendanceFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out := f.coord.Handle(ctx, command("u1", "presensi"))
	assert.Equal(t, model.OutcomePrompted, out.Kind)
	awaiting, _ := f.pending.Contains(ctx, "u1")
	assert.True(t, awaiting, "command moves user to AwaitingLocation")

	out = f.coord.Handle(ctx, location("u1", 1.0, 2.0))
	require.Equal(t, model.OutcomeAccepted, out.Kind)
	require.NotNil(t, out.Record)
	assert.Equal(t, "u1", out.Record.UserID)
	assert.Equal(t, "User u1", out.Record.DisplayName)
	assert.Equal(t, model.Date("2024-05-01"), out.Record.Date)
	assert.Equal(t, 1.0, out.Record.Latitude)
	assert.Equal(t, 2.0, out.Record.Longitude)

	awaiting, _ = f.pending.Contains(ctx, "u1")
	assert.False(t, awaiting, "location returns user to Idle")

	// Sharing again without a command is protocol misuse, not a duplicate.
	out = f.coord.Handle(ctx, location("u1", 1.0, 2.0))
	assert.Equal(t, model.OutcomeNeedCommandFirst, out.Kind)

	out = f.coord.Handle(ctx, command("u1", "presensi"))
	assert.Equal(t, model.OutcomePrompted, out.Kind)
	out = f.coord.Handle(ctx, location("u1", 5.0, 6.0))
	require.Equal(t, model.OutcomeDuplicate, out.Kind)
	require.NotNil(t, out.Record)
	assert.Equal(t, 1.0, out.Record.Latitude, "duplicate reports the original record")

	awaiting, _ = f.pending.Contains(ctx, "u1")
	assert.False(t, awaiting, "duplicate still consumes the pending request")

	n, err := f.store.CountForDate(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHandle_IdleLocationNeedsCommand(t *testing.T) {
	f := newFixture(t)

	out := f.coord.Handle(context.Background(), location("u1", 1, 2))

	assert.Equal(t, model.OutcomeNeedCommandFirst, out.Kind)
	assert.Zero(t, f.spy.records.Load(), "no store interaction while idle")
}

func TestHandle_TextWhileAwaitingReminds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.coord.Handle(ctx, command("u1", "presensi"))

	for i := 0; i < 2; i++ {
		out := f.coord.Handle(ctx, text("u1", "here I am"))
		assert.Equal(t, model.OutcomeReminder, out.Kind)
	}

	awaiting, _ := f.pending.Contains(ctx, "u1")
	assert.True(t, awaiting, "text leaves user AwaitingLocation")

	out := f.coord.Handle(ctx, location("u1", 1, 2))
	assert.Equal(t, model.OutcomeAccepted, out.Kind)
}

func TestHandle_TextWhileIdleIgnored(t *testing.T) {
	f := newFixture(t)

	out := f.coord.Handle(context.Background(), text("u1", "hello"))

	assert.Equal(t, model.OutcomeIgnored, out.Kind)
	assert.Zero(t, f.spy.records.Load())
	assert.Zero(t, f.pending.Len())
}

func TestHandle_RepeatedCommandStaysAwaiting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.coord.Handle(ctx, command("u1", "presensi"))
	out := f.coord.Handle(ctx, command("u1", "presensi"))

	assert.Equal(t, model.OutcomePrompted, out.Kind)
	assert.Equal(t, 1, f.pending.Len())
}

func TestHandle_UsersAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.coord.Handle(ctx, command("u1", "presensi"))

	out := f.coord.Handle(ctx, location("u2", 1, 2))
	assert.Equal(t, model.OutcomeNeedCommandFirst, out.Kind, "u1's request does not cover u2")

	out = f.coord.Handle(ctx, location("u1", 1, 2))
	assert.Equal(t, model.OutcomeAccepted, out.Kind)
}

func TestHandle_NextDayAcceptedAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.coord.Handle(ctx, command("u1", "presensi"))
	require.Equal(t, model.OutcomeAccepted, f.coord.Handle(ctx, location("u1", 1, 2)).Kind)

	f.clock.Advance(24 * time.Hour)

	f.coord.Handle(ctx, command("u1", "presensi"))
	out := f.coord.Handle(ctx, location("u1", 1, 2))
	require.Equal(t, model.OutcomeAccepted, out.Kind)
	assert.Equal(t, model.Date("2024-05-02"), out.Record.Date)
}

func TestHandle_CommandNormalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out := f.coord.Handle(ctx, model.Event{UserID: "u1", Kind: model.EventCommand, Command: "/Presensi@attendance_bot"})
	assert.Equal(t, model.OutcomePrompted, out.Kind)
}

func TestHandle_UnknownCommandIgnored(t *testing.T) {
	f := newFixture(t)

	out := f.coord.Handle(context.Background(), command("u1", "dance"))

	assert.Equal(t, model.OutcomeIgnored, out.Kind)
	assert.Equal(t, "unknown command", out.Reason)
}

func TestHandle_UnknownKindIgnored(t *testing.T) {
	f := newFixture(t)

	out := f.coord.Handle(context.Background(), model.Event{UserID: "u1", Kind: "sticker"})
	assert.Equal(t, model.OutcomeIgnored, out.Kind)
}

func TestHandle_LocationWithoutPayloadKeepsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.coord.Handle(ctx, command("u1", "presensi"))
	out := f.coord.Handle(ctx, model.Event{UserID: "u1", Kind: model.EventLocation})

	assert.Equal(t, model.OutcomeIgnored, out.Kind)
	awaiting, _ := f.pending.Contains(ctx, "u1")
	assert.True(t, awaiting)
}

func TestHandle_Welcome(t *testing.T) {
	f := newFixture(t)

	out := f.coord.Handle(context.Background(), command("u1", "start"))

	assert.Equal(t, model.OutcomeWelcome, out.Kind)
	assert.Equal(t, []string{"presensi", "report"}, out.Commands)
}

func TestHandle_CustomCommands(t *testing.T) {
	coord := New(brokenStore{}, pending.NewMemoryStore(0, nil), Config{
		Commands: Commands{Attend: "/Hadir", Report: "laporan"},
		Location: jakarta,
		Clock:    fixedClock(day0),
		Logger:   quietLogger(),
	})

	assert.Equal(t, Commands{Attend: "hadir", Report: "laporan", Start: "start"}, coord.Commands())
	out := coord.Handle(context.Background(), command("u1", "hadir"))
	assert.Equal(t, model.OutcomePrompted, out.Kind)
	out = coord.Handle(context.Background(), command("u1", "presensi"))
	assert.Equal(t, model.OutcomeIgnored, out.Kind)
}

func TestHandle_StoreFailureIsNotDuplicate(t *testing.T) {
	pend := pending.NewMemoryStore(0, nil)
	coord := New(brokenStore{}, pend, Config{Location: jakarta, Clock: fixedClock(day0), Logger: quietLogger()})
	ctx := context.Background()

	coord.Handle(ctx, command("u1", "presensi"))
	out := coord.Handle(ctx, location("u1", 1, 2))

	assert.Equal(t, model.OutcomeFailure, out.Kind)
	assert.Equal(t, ReasonStoreUnavailable, out.Reason)
	assert.True(t, out.IsError())
	assert.Zero(t, pend.Len(), "failure still consumes the pending request")
}

func TestHandle_PendingFailure(t *testing.T) {
	f := newFixture(t)
	coord := New(f.spy, brokenPending{}, Config{Location: jakarta, Clock: f.clock, Logger: quietLogger()})
	ctx := context.Background()

	for _, ev := range []model.Event{command("u1", "presensi"), location("u1", 1, 2), text("u1", "hi")} {
		out := coord.Handle(ctx, ev)
		assert.Equal(t, model.OutcomeFailure, out.Kind, "event %s", ev.Kind)
		assert.Equal(t, ReasonPendingUnavailable, out.Reason)
	}
	assert.Zero(t, f.spy.records.Load())
}

func TestHandle_PendingExpiry(t *testing.T) {
	f := newFixture(t)
	coord := New(f.spy, pending.NewMemoryStore(10*time.Minute, f.clock), Config{
		Location: jakarta, Clock: f.clock, Logger: quietLogger(),
	})
	ctx := context.Background()

	coord.Handle(ctx, command("u1", "presensi"))
	f.clock.Advance(11 * time.Minute)

	assert.Equal(t, model.OutcomeIgnored, coord.Handle(ctx, text("u1", "hi")).Kind)
	assert.Equal(t, model.OutcomeNeedCommandFirst, coord.Handle(ctx, location("u1", 1, 2)).Kind)
}

func TestHandle_ConcurrentLocationsSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.coord.Handle(ctx, command("u1", "presensi"))

	const senders = 16
	var wg sync.WaitGroup
	kinds := make([]model.OutcomeKind, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kinds[i] = f.coord.Handle(ctx, location("u1", float64(i), 0)).Kind
		}(i)
	}
	wg.Wait()

	counts := map[model.OutcomeKind]int{}
	for _, k := range kinds {
		counts[k]++
	}
	assert.Equal(t, 1, counts[model.OutcomeAccepted])
	assert.Equal(t, senders-1, counts[model.OutcomeNeedCommandFirst])
	assert.Equal(t, int32(1), f.spy.records.Load())
}

func TestHandle_ConcurrentUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	results := make([]model.OutcomeKind, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			f.coord.Handle(ctx, command(u, "presensi"))
			results[i] = f.coord.Handle(ctx, location(u, 1, 1)).Kind
		}(i, u)
	}
	wg.Wait()

	for i, k := range results {
		assert.Equal(t, model.OutcomeAccepted, k, "user %s", users[i])
	}
	n, err := f.store.CountForDate(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, len(users), n)
}

func TestToday_UsesLocation(t *testing.T) {
	// 20:00 UTC on April 30 is already May 1 in +07:00.
	late := time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC)
	coord := New(brokenStore{}, pending.NewMemoryStore(0, nil), Config{Location: jakarta, Clock: fixedClock(late)})

	assert.Equal(t, model.Date("2024-05-01"), coord.Today())
}
