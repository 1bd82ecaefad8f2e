// Package transport holds what every event transport shares: the handler
// contract and a plain-text rendering of outcomes.
//
// Transports decode events, call a Handler, and present the outcome. They
// never inspect pending state or the store directly.
package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/presensi/internal/model"
)

// Handler runs one event through the attendance flow.
// *coordinator.Coordinator satisfies it.
type Handler interface {
	Handle(ctx context.Context, ev model.Event) model.Outcome
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev model.Event) model.Outcome

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, ev model.Event) model.Outcome {
	return f(ctx, ev)
}

const timeLayout = "15:04:05"

// RenderText returns a plain, unlocalized summary of an outcome.
// Ignored outcomes render as the empty string: there is nothing to say.
func RenderText(out model.Outcome) string {
	switch out.Kind {
	case model.OutcomePrompted:
		return "Share your location to record attendance."
	case model.OutcomeAccepted:
		if out.Record == nil {
			return "Attendance recorded."
		}
		r := out.Record
		return fmt.Sprintf("Attendance recorded: %s on %s at %s (%s).",
			r.DisplayName, r.Date, r.RecordedAt.Format(timeLayout), formatLocation(r.Location()))
	case model.OutcomeDuplicate:
		if out.Record == nil {
			return "Attendance already recorded today."
		}
		return fmt.Sprintf("Attendance already recorded today at %s.", out.Record.RecordedAt.Format(timeLayout))
	case model.OutcomeFailure:
		return fmt.Sprintf("Could not process the request: %s.", out.Reason)
	case model.OutcomeReminder:
		return "Please share your location instead of sending text."
	case model.OutcomeNeedCommandFirst:
		return "Use the attendance command before sharing your location."
	case model.OutcomeAccessDenied:
		return "You are not allowed to view reports."
	case model.OutcomeWelcome:
		cmds := make([]string, len(out.Commands))
		for i, c := range out.Commands {
			cmds[i] = "/" + c
		}
		return "Commands: " + strings.Join(cmds, ", ")
	case model.OutcomeReport:
		return renderReport(out.Date, out.Records)
	default:
		return ""
	}
}

func renderReport(date model.Date, records []model.Record) string {
	if len(records) == 0 {
		return fmt.Sprintf("Attendance %s: nobody has attended yet.", date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Attendance %s:\n", date)
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s %s (%s)\n", i+1, r.DisplayName, r.RecordedAt.Format(timeLayout), formatLocation(r.Location()))
	}
	fmt.Fprintf(&b, "Total: %d", len(records))
	return b.String()
}

func formatLocation(l model.Location) string {
	return fmt.Sprintf("%.6f, %.6f", l.Latitude, l.Longitude)
}
