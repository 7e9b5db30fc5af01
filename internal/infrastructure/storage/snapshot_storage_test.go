package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotKey(t *testing.T) {
	ts := time.Date(2026, 7, 14, 13, 5, 9, 250_000_000, time.FixedZone("WEST", 3600))

	key := snapshotKey(ts)
	assert.Equal(t, "snapshots/2026/07/14/120509.250.json", key)
	assert.True(t, strings.HasPrefix(key, DayPrefix(ts)))
}

func TestDayPrefix(t *testing.T) {
	assert.Equal(t, "snapshots/2026/12/31/", DayPrefix(time.Date(2027, 1, 1, 0, 30, 0, 0, time.FixedZone("X", 3600))))
}

func TestSnapshotKeysSortChronologically(t *testing.T) {
	earlier := snapshotKey(time.Date(2026, 7, 14, 9, 59, 59, 999_000_000, time.UTC))
	later := snapshotKey(time.Date(2026, 7, 14, 10, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}
