package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/presensi/internal/testutil"
)

// jakarta is a fixed +07:00 zone so date boundaries do not depend on the host.
var jakarta = time.FixedZone("WIB", 7*3600)

// day0 is 2024-05-01 08:00 in jakarta.
var day0 = time.Date(2024, 5, 1, 8, 0, 0, 0, jakarta)

// createTestStore creates a new temp-dir store for testing with a
// deterministic clock and sequential record IDs.
func createTestStore(t *testing.T) (*Store, *testutil.ManualClock) {
	t.Helper()
	clk := testutil.NewSteppingClock(day0, time.Second)
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithLocation(jakarta),
		WithClock(clk),
		WithIDGenerator(testutil.NewSequentialIDs("rec")),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clk
}

// newRecord creates a NewRecord with the clock-supplied timestamp.
func newRecord(userID, name string, lat, lon float64) NewRecord {
	return NewRecord{
		UserID:      userID,
		DisplayName: name,
		Latitude:    lat,
		Longitude:   lon,
	}
}
