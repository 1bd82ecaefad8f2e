package harness

import "github.com/roach88/presensi/internal/model"

// TraceEvent records one handled event and its outcome.
type TraceEvent struct {
	Step    int    `json:"step"`
	User    string `json:"user"`
	Event   string `json:"event"`
	Outcome string `json:"outcome"`
	// Records is the number of report rows, set for report outcomes only.
	Records int `json:"records,omitempty"`
	// Date is the calendar day of the record, set for accepted and duplicate.
	Date string `json:"date,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace lists handled events in step order. Clock advances are not traced.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends the trace entry for one handled event.
func (r *Result) AddTrace(step int, ev model.Event, out model.Outcome) {
	te := TraceEvent{
		Step:    step,
		User:    ev.UserID,
		Event:   string(ev.Kind),
		Outcome: string(out.Kind),
	}
	switch out.Kind {
	case model.OutcomeReport:
		te.Records = len(out.Records)
	case model.OutcomeAccepted, model.OutcomeDuplicate:
		if out.Record != nil {
			te.Date = string(out.Record.Date)
		}
	}
	r.Trace = append(r.Trace, te)
}

// CountOutcomes returns how many traced events ended with kind.
func (r *Result) CountOutcomes(kind model.OutcomeKind) int {
	n := 0
	for _, te := range r.Trace {
		if te.Outcome == string(kind) {
			n++
		}
	}
	return n
}
