// Package model provides the shared types for presensi.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Records are immutable once created; nothing here mutates a stored Record
//   - Date is the uniqueness granularity: one Record per (UserID, Date)
//   - All JSON tags use snake_case
package model
