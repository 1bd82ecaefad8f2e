// Package store provides SQLite-backed durable storage for attendance records.
//
// The store is an append-only table with one row per user per calendar day:
//
//   - UNIQUE(user_id, date) is the only duplicate check; inserts use
//     ON CONFLICT(user_id, date) DO NOTHING and inspect RowsAffected, so
//     concurrent recordings for the same key cannot both be accepted
//   - Rows are never updated or deleted
//   - Day queries are ordered by recorded_at ASC, seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Timestamps are stored as UTC Unix nanoseconds and returned in the store's
// configured location. Dates are stored as YYYY-MM-DD text computed in that
// same location.
package store
