package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/presensi/internal/model"
)

var at = time.Date(2024, 5, 1, 8, 5, 9, 0, time.UTC)

func rec(name string, lat, lon float64) model.Record {
	return model.Record{
		ID: "rec-1", UserID: "u1", DisplayName: name, Date: "2024-05-01",
		Latitude: lat, Longitude: lon, RecordedAt: at,
	}
}

func TestRenderText(t *testing.T) {
	r := rec("Ana", -6.2, 106.816666)

	tests := []struct {
		name string
		out  model.Outcome
		want string
	}{
		{"prompted", model.Outcome{Kind: model.OutcomePrompted}, "Share your location to record attendance."},
		{"accepted", model.Outcome{Kind: model.OutcomeAccepted, Record: &r},
			"Attendance recorded: Ana on 2024-05-01 at 08:05:09 (-6.200000, 106.816666)."},
		{"duplicate", model.Outcome{Kind: model.OutcomeDuplicate, Record: &r}, "Attendance already recorded today at 08:05:09."},
		{"duplicate without record", model.Outcome{Kind: model.OutcomeDuplicate}, "Attendance already recorded today."},
		{"failure", model.Outcome{Kind: model.OutcomeFailure, Reason: "attendance store unavailable"},
			"Could not process the request: attendance store unavailable."},
		{"reminder", model.Outcome{Kind: model.OutcomeReminder}, "Please share your location instead of sending text."},
		{"need command", model.Outcome{Kind: model.OutcomeNeedCommandFirst}, "Use the attendance command before sharing your location."},
		{"denied", model.Outcome{Kind: model.OutcomeAccessDenied}, "You are not allowed to view reports."},
		{"welcome", model.Outcome{Kind: model.OutcomeWelcome, Commands: []string{"presensi", "report"}}, "Commands: /presensi, /report"},
		{"ignored", model.Outcome{Kind: model.OutcomeIgnored}, ""},
		{"empty report", model.Outcome{Kind: model.OutcomeReport, Date: "2024-05-01", Records: []model.Record{}},
			"Attendance 2024-05-01: nobody has attended yet."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderText(tt.out))
		})
	}
}

func TestRenderText_Report(t *testing.T) {
	out := model.Outcome{
		Kind: model.OutcomeReport,
		Date: "2024-05-01",
		Records: []model.Record{
			rec("Ana", 1, 2),
			rec("Budi", 3, 4),
		},
	}

	want := "Attendance 2024-05-01:\n" +
		"1. Ana 08:05:09 (1.000000, 2.000000)\n" +
		"2. Budi 08:05:09 (3.000000, 4.000000)\n" +
		"Total: 2"
	assert.Equal(t, want, RenderText(out))
}

func TestHandlerFunc(t *testing.T) {
	h := HandlerFunc(func(_ context.Context, ev model.Event) model.Outcome {
		return model.Outcome{Kind: model.OutcomeIgnored, Reason: ev.UserID}
	})

	out := h.Handle(context.Background(), model.Event{UserID: "u9"})
	assert.Equal(t, "u9", out.Reason)
}
