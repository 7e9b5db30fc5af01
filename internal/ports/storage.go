package ports

import (
	"context"

	"wildfire-monitoring-system/internal/domain"
)

// SnapshotStorage exports status snapshots to object storage
type SnapshotStorage interface {
	// Stores the snapshot and returns its object key
	SaveSnapshot(ctx context.Context, update domain.StatusUpdate) (string, error)

	// Lists stored snapshot keys under a prefix, e.g. "snapshots/2026/10/17/"
	ListSnapshotKeys(ctx context.Context, prefix string) ([]string, error)
}
