// Package coordinator routes inbound chat events through the per-user
// attendance flow.
//
// Each user is in one of two states. A user is Idle unless the injected
// pending.Store says they are AwaitingLocation.
//
//	Idle             --attend command-->  AwaitingLocation  (prompted)
//	AwaitingLocation --location------->   Idle              (accepted | duplicate | failure)
//	AwaitingLocation --text----------->   AwaitingLocation  (reminder_to_share_location)
//	Idle             --location------->   Idle              (need_command_first)
//	Idle             --text----------->   Idle              (ignored)
//
// A location event always consumes the pending request before the store is
// called, so a repeat attendee can never get stuck awaiting a location.
//
// The report command is gated by ReportGate: only the configured
// administrator reaches the store; everyone else gets access_denied.
package coordinator
