package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/presensi/internal/model"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, te := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", te.Step, te.User, te.Event, te.Outcome)
		}
	}

	return buf.String()
}

// evaluateAssertions checks every assertion and returns failure messages.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion, result *Result) []string {
	var errs []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertRecordCount:
			err = h.assertRecordCount(ctx, a)
		case AssertOutcomeCount:
			err = assertOutcomeCount(result, a)
		case AssertPending:
			err = h.assertPending(ctx, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func (h *Harness) assertRecordCount(ctx context.Context, a Assertion) error {
	n, err := h.store.CountForDate(ctx, model.Date(a.Date))
	if err != nil {
		return fmt.Errorf("record_count: %w", err)
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertRecordCount,
			Expected: fmt.Sprintf("%d records on %s", a.Count, a.Date),
			Actual:   fmt.Sprintf("%d records", n),
		}
	}
	return nil
}

func assertOutcomeCount(result *Result, a Assertion) error {
	n := result.CountOutcomes(model.OutcomeKind(a.Outcome))
	if n != a.Count {
		return &AssertionError{
			Type:     AssertOutcomeCount,
			Expected: fmt.Sprintf("%d %s outcomes", a.Count, a.Outcome),
			Actual:   fmt.Sprintf("%d", n),
			Trace:    result.Trace,
		}
	}
	return nil
}

func (h *Harness) assertPending(ctx context.Context, a Assertion) error {
	awaiting, err := h.pending.Contains(ctx, a.User)
	if err != nil {
		return fmt.Errorf("pending: %w", err)
	}
	if awaiting != a.Expect {
		return &AssertionError{
			Type:     AssertPending,
			Expected: fmt.Sprintf("user %s awaiting location = %t", a.User, a.Expect),
			Actual:   fmt.Sprintf("%t", awaiting),
		}
	}
	return nil
}
