package coordinator

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/presensi/internal/clock"
	"github.com/roach88/presensi/internal/model"
	"github.com/roach88/presensi/internal/pending"
	"github.com/roach88/presensi/internal/store"
)

// Failure reasons surfaced to the transport.
const (
	ReasonPendingUnavailable = "pending state unavailable"
	ReasonStoreUnavailable   = "attendance store unavailable"
)

// AttendanceStore is the persistence the coordinator drives.
// *store.Store satisfies it.
type AttendanceStore interface {
	RecordAttendance(ctx context.Context, nr store.NewRecord) (store.RecordResult, error)
	RecordsForDate(ctx context.Context, date model.Date) ([]model.Record, error)
}

// Config holds coordinator settings. Zero values are usable.
type Config struct {
	// AdminID is the only user allowed to read reports.
	AdminID string
	// Commands overrides command names; empty fields use the defaults.
	Commands Commands
	// Location defines the calendar day. Defaults to time.Local.
	Location *time.Location
	// Clock supplies "now". Defaults to the system clock.
	Clock clock.Clock
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Coordinator handles inbound events. It is safe for concurrent use.
type Coordinator struct {
	store    AttendanceStore
	pending  pending.Store
	gate     ReportGate
	commands Commands
	clock    clock.Clock
	loc      *time.Location
	logger   *slog.Logger
}

// New creates a coordinator over an attendance store and a pending store.
func New(st AttendanceStore, pend pending.Store, cfg Config) *Coordinator {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:    st,
		pending:  pend,
		gate:     NewReportGate(cfg.AdminID),
		commands: cfg.Commands.normalized(),
		clock:    clock.Or(cfg.Clock),
		loc:      loc,
		logger:   logger,
	}
}

// Commands returns the effective command names.
func (c *Coordinator) Commands() Commands {
	return c.commands
}

// Today returns the current calendar day in the coordinator's location.
func (c *Coordinator) Today() model.Date {
	return model.DateOf(c.clock.Now().In(c.loc))
}

// Handle runs one event through the attendance flow. It never panics on
// user input and never returns an error: infrastructure problems become a
// failure outcome.
func (c *Coordinator) Handle(ctx context.Context, ev model.Event) model.Outcome {
	var out model.Outcome
	switch ev.Kind {
	case model.EventCommand:
		out = c.handleCommand(ctx, ev)
	case model.EventLocation:
		out = c.handleLocation(ctx, ev)
	case model.EventText:
		out = c.handleText(ctx, ev)
	default:
		out = model.Outcome{Kind: model.OutcomeIgnored, Reason: "unknown event kind"}
	}

	c.logger.Debug("event handled",
		"user_id", ev.UserID,
		"kind", string(ev.Kind),
		"outcome", string(out.Kind),
	)
	return out
}

func (c *Coordinator) handleCommand(ctx context.Context, ev model.Event) model.Outcome {
	switch model.CommandName(ev.Command) {
	case c.commands.Attend:
		return c.prompt(ctx, ev.UserID)
	case c.commands.Report:
		return c.Report(ctx, ev.UserID, c.Today())
	case c.commands.Start:
		return model.Outcome{
			Kind:     model.OutcomeWelcome,
			Commands: []string{c.commands.Attend, c.commands.Report},
		}
	default:
		return model.Outcome{Kind: model.OutcomeIgnored, Reason: "unknown command"}
	}
}

// prompt moves the user to AwaitingLocation.
func (c *Coordinator) prompt(ctx context.Context, userID string) model.Outcome {
	if err := c.pending.Add(ctx, userID); err != nil {
		c.logger.Error("mark user pending", "user_id", userID, "error", err)
		return model.Outcome{Kind: model.OutcomeFailure, Reason: ReasonPendingUnavailable}
	}
	return model.Outcome{Kind: model.OutcomePrompted}
}

func (c *Coordinator) handleLocation(ctx context.Context, ev model.Event) model.Outcome {
	if ev.Location == nil {
		return model.Outcome{Kind: model.OutcomeIgnored, Reason: "missing location"}
	}

	awaiting, err := c.pending.Take(ctx, ev.UserID)
	if err != nil {
		c.logger.Error("take pending request", "user_id", ev.UserID, "error", err)
		return model.Outcome{Kind: model.OutcomeFailure, Reason: ReasonPendingUnavailable}
	}
	if !awaiting {
		return model.Outcome{Kind: model.OutcomeNeedCommandFirst}
	}

	res, err := c.store.RecordAttendance(ctx, store.NewRecord{
		UserID:      ev.UserID,
		DisplayName: ev.DisplayName,
		Latitude:    ev.Location.Latitude,
		Longitude:   ev.Location.Longitude,
		RecordedAt:  c.clock.Now().In(c.loc),
	})
	if err != nil {
		c.logger.Error("record attendance", "user_id", ev.UserID, "error", err)
		return model.Outcome{Kind: model.OutcomeFailure, Reason: ReasonStoreUnavailable}
	}

	rec := res.Record
	switch res.Status {
	case store.StatusAccepted:
		c.logger.Info("attendance recorded",
			"user_id", rec.UserID,
			"date", string(rec.Date),
			"record_id", rec.ID,
		)
		return model.Outcome{Kind: model.OutcomeAccepted, Record: &rec}
	default:
		return model.Outcome{Kind: model.OutcomeDuplicate, Record: &rec}
	}
}

func (c *Coordinator) handleText(ctx context.Context, ev model.Event) model.Outcome {
	awaiting, err := c.pending.Contains(ctx, ev.UserID)
	if err != nil {
		c.logger.Error("check pending request", "user_id", ev.UserID, "error", err)
		return model.Outcome{Kind: model.OutcomeFailure, Reason: ReasonPendingUnavailable}
	}
	if awaiting {
		return model.Outcome{Kind: model.OutcomeReminder}
	}
	return model.Outcome{Kind: model.OutcomeIgnored}
}

// Report returns the records for date if userID passes the gate.
// Unauthorized callers never reach the store.
func (c *Coordinator) Report(ctx context.Context, userID string, date model.Date) model.Outcome {
	if !c.gate.Allow(userID) {
		c.logger.Warn("report denied", "user_id", userID)
		return model.Outcome{Kind: model.OutcomeAccessDenied}
	}

	records, err := c.store.RecordsForDate(ctx, date)
	if err != nil {
		c.logger.Error("read report", "date", string(date), "error", err)
		return model.Outcome{Kind: model.OutcomeFailure, Reason: ReasonStoreUnavailable}
	}
	if records == nil {
		records = []model.Record{}
	}
	return model.Outcome{Kind: model.OutcomeReport, Date: date, Records: records}
}
