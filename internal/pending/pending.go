// Package pending tracks which users have been asked to share a location.
//
// A user is "awaiting location" while their ID is present in a Store. The
// attendance command adds the user; the next location event takes (removes)
// the user whatever the recording outcome. Absence means idle.
//
// Take is a single atomic remove-and-report operation, so two concurrent
// location events for the same user cannot both observe a pending request.
//
// Both implementations accept an expiry. A zero TTL keeps a pending request
// until it is taken or the backing state is lost.
package pending

import "context"

// Store holds the set of users awaiting a location share.
//
// Thread-safety: implementations must be safe for concurrent use.
type Store interface {
	// Add marks the user as awaiting location, refreshing any expiry.
	Add(ctx context.Context, userID string) error

	// Take removes the user and reports whether they were awaiting location.
	Take(ctx context.Context, userID string) (bool, error)

	// Contains reports whether the user is awaiting location.
	Contains(ctx context.Context, userID string) (bool, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
