// Package harness runs scripted conversations against a real coordinator
// and checks the outcomes.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: daily_attendance
//	description: "One user records attendance, a second attempt is rejected"
//	start: "2024-05-01T08:00:00+07:00"
//	timezone: Asia/Jakarta
//	admin: admin
//	steps:
//	  - {user: u1, name: Ana, command: /presensi, expect: prompted}
//	  - {user: u1, name: Ana, location: {latitude: -6.2, longitude: 106.8}, expect: accepted}
//	  - {advance: 24h}
//	assertions:
//	  - {type: record_count, date: "2024-05-01", count: 1}
//	  - {type: outcome_count, outcome: duplicate, count: 0}
//	  - {type: pending, user: u1, expect: false}
//
// # Assertion Types
//
//   - record_count: number of stored records for a date
//   - outcome_count: number of traced events with an outcome kind
//   - pending: whether a user is still awaiting a location
//
// # Deterministic Testing
//
// Each run uses a fresh in-memory SQLite store, sequential record IDs and
// a manual clock that only moves on advance steps, so traces are
// reproducible and suitable for golden comparison.
package harness
