package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
	_ "time/tzdata" // scenarios name IANA zones; do not depend on the host database

	"github.com/roach88/presensi/internal/coordinator"
	"github.com/roach88/presensi/internal/pending"
	"github.com/roach88/presensi/internal/store"
	"github.com/roach88/presensi/internal/testutil"
)

// Harness holds the system under test for one scenario run.
type Harness struct {
	store   *store.Store
	pending *pending.MemoryStore
	coord   *coordinator.Coordinator
	clock   *testutil.ManualClock
	logger  *slog.Logger
}

// Run executes a scenario against a fresh in-memory store and returns the
// result. An error means the scenario could not be executed at all; failed
// expectations are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}
	defer h.store.Close()

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, msg := range h.evaluateAssertions(ctx, scenario.Assertions, result) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(scenario *Scenario) (*Harness, error) {
	loc := time.UTC
	if scenario.Timezone != "" {
		l, err := time.LoadLocation(scenario.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone: %w", err)
		}
		loc = l
	}

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)
	if scenario.Start != "" {
		t, err := time.Parse(time.RFC3339, scenario.Start)
		if err != nil {
			return nil, fmt.Errorf("parse start: %w", err)
		}
		start = t.In(loc)
	}

	var ttl time.Duration
	if scenario.PendingTTL != "" {
		d, err := time.ParseDuration(scenario.PendingTTL)
		if err != nil {
			return nil, fmt.Errorf("parse pending_ttl: %w", err)
		}
		ttl = d
	}

	clk := testutil.NewManualClock(start)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(":memory:",
		store.WithLocation(loc),
		store.WithClock(clk),
		store.WithIDGenerator(testutil.NewSequentialIDs("rec")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	pend := pending.NewMemoryStore(ttl, clk)
	coord := coordinator.New(st, pend, coordinator.Config{
		AdminID: scenario.Admin,
		Commands: coordinator.Commands{
			Attend: scenario.Commands.Attend,
			Report: scenario.Commands.Report,
			Start:  scenario.Commands.Start,
		},
		Location: loc,
		Clock:    clk,
		Logger:   logger,
	})

	return &Harness{store: st, pending: pend, coord: coord, clock: clk, logger: logger}, nil
}

// executeSteps runs every step in order and checks per-step expectations.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		if step.IsAdvance() {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			h.clock.Advance(d)
			continue
		}

		ev := step.Event()
		out := h.coord.Handle(ctx, ev)
		result.AddTrace(i, ev, out)

		if step.Expect != "" && string(out.Kind) != step.Expect {
			msg := fmt.Sprintf("step %d (%s %s): expected %s, got %s", i, ev.UserID, ev.Kind, step.Expect, out.Kind)
			if out.Reason != "" {
				msg += " (" + out.Reason + ")"
			}
			result.AddError(msg)
		}

		h.logger.Debug("step completed",
			"step", i,
			"user_id", ev.UserID,
			"event", string(ev.Kind),
			"outcome", string(out.Kind),
		)
	}
	return nil
}
