package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"wildfire-monitoring-system/internal/domain"
	"wildfire-monitoring-system/internal/ports"
)

// PublisherConfig controls the periodic scan.
type PublisherConfig struct {
	Interval     time.Duration
	AutoDispatch bool
	SinkTimeout  time.Duration
}

// StatusPublisher drives the periodic re-evaluation: it analyses every
// area, dispatches missions for areas that need inspection, retries
// pending missions and hands the resulting snapshot to the transports and
// optional archive sinks.
//
// Sinks and broadcasters must be registered before Run is called.
type StatusPublisher struct {
	risk      *RiskEngine
	scheduler *MissionScheduler
	fleet     *FleetRegistry
	clock     ports.Clock
	cfg       PublisherConfig
	logger    *zap.Logger

	broadcasters   []ports.Broadcaster
	assessmentRepo ports.AssessmentRepository
	missionRepo    ports.MissionRepository
	snapshots      ports.SnapshotStorage
	observer       ports.CycleObserver

	cycleMu sync.Mutex

	lastMu sync.RWMutex
	last   *domain.StatusUpdate
}

// NewStatusPublisher creates a StatusPublisher
func NewStatusPublisher(
	risk *RiskEngine,
	scheduler *MissionScheduler,
	fleet *FleetRegistry,
	clock ports.Clock,
	cfg PublisherConfig,
	logger *zap.Logger,
) *StatusPublisher {
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = 10 * time.Second
	}
	return &StatusPublisher{
		risk:      risk,
		scheduler: scheduler,
		fleet:     fleet,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// AddBroadcaster registers a transport that receives every update
func (p *StatusPublisher) AddBroadcaster(b ports.Broadcaster) {
	p.broadcasters = append(p.broadcasters, b)
}

// SetArchive enables the assessment and mission archive
func (p *StatusPublisher) SetArchive(assessments ports.AssessmentRepository, missions ports.MissionRepository) {
	p.assessmentRepo = assessments
	p.missionRepo = missions
}

// SetSnapshotStorage enables snapshot export
func (p *StatusPublisher) SetSnapshotStorage(s ports.SnapshotStorage) {
	p.snapshots = s
}

// SetObserver registers a CycleObserver, e.g. the metrics collector
func (p *StatusPublisher) SetObserver(o ports.CycleObserver) {
	p.observer = o
}

// Run performs a cycle immediately and then once per interval until ctx
// is cancelled.
func (p *StatusPublisher) Run(ctx context.Context) error {
	if p.cfg.Interval <= 0 {
		return errors.New("scan interval must be positive")
	}

	p.logger.Info("Status publisher started", zap.Duration("interval", p.cfg.Interval))

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		p.Cycle(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("Status publisher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cycle runs one scan. Risk is computed before any fleet lock is taken.
func (p *StatusPublisher) Cycle(ctx context.Context) domain.CycleReport {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	start := p.clock.Now()
	assessments := p.risk.AnalyzeAll()

	created := 0
	if p.cfg.AutoDispatch {
		for _, a := range assessments {
			if !a.RequiresInspection || p.scheduler.HasOpenMission(a.AreaKey) {
				continue
			}
			if _, err := p.scheduler.CreateMission(a); err != nil {
				p.logger.Error("Failed to create mission", zap.String("area", a.AreaKey), zap.Error(err))
				continue
			}
			created++
		}
	}

	assigned := p.scheduler.AssignPending()

	update := domain.StatusUpdate{
		Timestamp:     start,
		FleetStatus:   p.fleet.GetFleetStatus(),
		HighRiskAreas: p.risk.HighRiskFrom(assessments),
	}

	p.lastMu.Lock()
	p.last = &update
	p.lastMu.Unlock()

	for _, b := range p.broadcasters {
		b.Broadcast(update)
	}

	p.export(ctx, assessments, update)

	report := domain.CycleReport{
		Started:          start,
		Duration:         p.clock.Now().Sub(start),
		Assessments:      assessments,
		MissionsCreated:  created,
		MissionsAssigned: assigned,
		Update:           update,
	}

	if p.observer != nil {
		p.observer.ObserveCycle(report)
	}

	p.logger.Debug("Scan cycle finished",
		zap.Int("areas", len(assessments)),
		zap.Int("high_risk", len(update.HighRiskAreas)),
		zap.Int("missions_created", created),
		zap.Int("missions_assigned", assigned))

	return report
}

// Snapshot builds a status update from current fleet state and the latest
// stored assessments. Unlike Cycle it does not grow risk history.
func (p *StatusPublisher) Snapshot() domain.StatusUpdate {
	return domain.StatusUpdate{
		Timestamp:     p.clock.Now(),
		FleetStatus:   p.fleet.GetFleetStatus(),
		HighRiskAreas: p.risk.PeekHighRiskAreas(),
	}
}

// Last returns the update produced by the most recent cycle.
func (p *StatusPublisher) Last() (domain.StatusUpdate, bool) {
	p.lastMu.RLock()
	defer p.lastMu.RUnlock()

	if p.last == nil {
		return domain.StatusUpdate{}, false
	}
	return *p.last, true
}

// export writes to the optional sinks. Failures are logged, never fatal.
func (p *StatusPublisher) export(ctx context.Context, assessments []domain.RiskAssessment, update domain.StatusUpdate) {
	if p.assessmentRepo != nil && len(assessments) > 0 {
		sinkCtx, cancel := context.WithTimeout(ctx, p.cfg.SinkTimeout)
		err := p.assessmentRepo.SaveBatch(sinkCtx, assessments)
		cancel()
		if err != nil {
			p.sinkFailed("assessments", err)
		}
	}

	if p.missionRepo != nil {
		sinkCtx, cancel := context.WithTimeout(ctx, p.cfg.SinkTimeout)
		for _, m := range p.scheduler.Missions() {
			if err := p.missionRepo.Upsert(sinkCtx, &m); err != nil {
				p.sinkFailed("missions", err)
				break
			}
		}
		cancel()
	}

	if p.snapshots != nil {
		sinkCtx, cancel := context.WithTimeout(ctx, p.cfg.SinkTimeout)
		key, err := p.snapshots.SaveSnapshot(sinkCtx, update)
		cancel()
		if err != nil {
			p.sinkFailed("snapshots", err)
		} else {
			p.logger.Debug("Snapshot exported", zap.String("object_key", key))
		}
	}
}

func (p *StatusPublisher) sinkFailed(sink string, err error) {
	p.logger.Warn("Sink write failed", zap.String("sink", sink), zap.Error(err))
	if p.observer != nil {
		p.observer.ObserveSinkError(sink)
	}
}
