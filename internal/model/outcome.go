package model

// OutcomeKind identifies the result of handling one event.
type OutcomeKind string

const (
	OutcomePrompted         OutcomeKind = "prompted"
	OutcomeAccepted         OutcomeKind = "accepted"
	OutcomeDuplicate        OutcomeKind = "duplicate"
	OutcomeFailure          OutcomeKind = "failure"
	OutcomeReminder         OutcomeKind = "reminder_to_share_location"
	OutcomeNeedCommandFirst OutcomeKind = "need_command_first"
	OutcomeIgnored          OutcomeKind = "ignored"
	OutcomeAccessDenied     OutcomeKind = "access_denied"
	OutcomeReport           OutcomeKind = "report"
	OutcomeWelcome          OutcomeKind = "welcome"
)

// Outcome is returned to the transport for presentation.
//
// Record is set for accepted and duplicate (the already-stored record when
// known). Records and Date are set for report. Reason is set for failure and,
// occasionally, ignored. Commands is set for welcome.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	Record   *Record     `json:"record,omitempty"`
	Records  []Record    `json:"records,omitempty"`
	Date     Date        `json:"date,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Commands []string    `json:"commands,omitempty"`
}

// IsError reports whether the outcome represents an infrastructure failure
// rather than an expected negative result.
func (o Outcome) IsError() bool {
	return o.Kind == OutcomeFailure
}
