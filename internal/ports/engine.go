package ports

import (
	"time"

	"wildfire-monitoring-system/internal/domain"
)

// Clock is injected wherever the engine reads the current time.
type Clock interface {
	Now() time.Time
}

// SignalProvider returns the raw grids for an area. Implementations must
// not block on network I/O; a real ingestion pipeline should cache upstream.
type SignalProvider interface {
	Signals(area domain.MonitoredArea) domain.SignalGrids
}

// Broadcaster fans a status update out to connected clients.
type Broadcaster interface {
	Broadcast(update domain.StatusUpdate)
}

// CycleObserver receives the outcome of every periodic scan.
type CycleObserver interface {
	ObserveCycle(report domain.CycleReport)
	ObserveSinkError(sink string)
}
