package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wildfire-monitoring-system/internal/domain"
)

type recordingBroadcaster struct {
	mu      sync.Mutex
	updates []domain.StatusUpdate
}

func (b *recordingBroadcaster) Broadcast(update domain.StatusUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, update)
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.updates)
}

type fakeAssessmentRepo struct {
	err   error
	saved []domain.RiskAssessment
}

func (r *fakeAssessmentRepo) Save(_ context.Context, a *domain.RiskAssessment) error {
	return r.SaveBatch(context.Background(), []domain.RiskAssessment{*a})
}

func (r *fakeAssessmentRepo) SaveBatch(ctx context.Context, as []domain.RiskAssessment) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("sink called without deadline")
	}
	r.saved = append(r.saved, as...)
	return nil
}

type fakeMissionRepo struct {
	upserts map[string]domain.Mission
}

func (r *fakeMissionRepo) Upsert(_ context.Context, m *domain.Mission) error {
	if r.upserts == nil {
		r.upserts = make(map[string]domain.Mission)
	}
	r.upserts[m.ID] = *m
	return nil
}

type fakeSnapshots struct {
	saved []domain.StatusUpdate
}

func (s *fakeSnapshots) SaveSnapshot(_ context.Context, update domain.StatusUpdate) (string, error) {
	s.saved = append(s.saved, update)
	return update.Timestamp.Format(time.RFC3339), nil
}

func (s *fakeSnapshots) ListSnapshotKeys(context.Context, string) ([]string, error) {
	return nil, nil
}

type fakeObserver struct {
	cycles     []domain.CycleReport
	sinkErrors []string
}

func (o *fakeObserver) ObserveCycle(r domain.CycleReport) { o.cycles = append(o.cycles, r) }
func (o *fakeObserver) ObserveSinkError(sink string)      { o.sinkErrors = append(o.sinkErrors, sink) }

func newTestPublisher(e *testEngine, autoDispatch bool) *StatusPublisher {
	return NewStatusPublisher(e.risk, e.scheduler, e.fleet, e.clock, PublisherConfig{
		Interval:     30 * time.Second,
		AutoDispatch: autoDispatch,
	}, zap.NewNop())
}

func TestStatusPublisher_Cycle(t *testing.T) {
	e := newTestEngine(t)
	e.signals.Set("fundao", extremeGrids())
	e.signals.Set("castelo_novo", mildGrids())

	publisher := newTestPublisher(e, true)
	broadcaster := &recordingBroadcaster{}
	observer := &fakeObserver{}
	assessments := &fakeAssessmentRepo{}
	missions := &fakeMissionRepo{}
	snapshots := &fakeSnapshots{}

	publisher.AddBroadcaster(broadcaster)
	publisher.SetObserver(observer)
	publisher.SetArchive(assessments, missions)
	publisher.SetSnapshotStorage(snapshots)

	_, ok := publisher.Last()
	assert.False(t, ok)

	// 0.7 is not above the 0.7 area threshold
	first := publisher.Cycle(context.Background())
	assert.Len(t, first.Assessments, 2)
	assert.Zero(t, first.MissionsCreated)
	assert.Empty(t, first.Update.HighRiskAreas)
	assert.Empty(t, first.Update.FleetStatus.ActiveMissions)

	e.clock.Advance(30 * time.Second)
	second := publisher.Cycle(context.Background())
	assert.Equal(t, 1, second.MissionsCreated)
	assert.Zero(t, second.MissionsAssigned)
	require.Len(t, second.Update.HighRiskAreas, 1)
	assert.Equal(t, "fundao", second.Update.HighRiskAreas[0].Area)
	assert.InDelta(t, 0.91, second.Update.HighRiskAreas[0].Risk, 1e-9)

	require.Len(t, second.Update.FleetStatus.ActiveMissions, 1)
	mission := second.Update.FleetStatus.ActiveMissions[0]
	assert.Equal(t, domain.PriorityCritical, mission.Priority)
	assert.Equal(t, domain.MissionStatusLaunching, mission.Status)

	// open mission suppresses a duplicate
	e.clock.Advance(30 * time.Second)
	third := publisher.Cycle(context.Background())
	assert.Zero(t, third.MissionsCreated)
	assert.Len(t, e.scheduler.Missions(), 1)

	assert.Equal(t, 3, broadcaster.count())
	assert.Len(t, observer.cycles, 3)
	assert.Empty(t, observer.sinkErrors)
	assert.Len(t, assessments.saved, 6)
	assert.Len(t, missions.upserts, 1)
	assert.Len(t, snapshots.saved, 3)

	last, ok := publisher.Last()
	require.True(t, ok)
	assert.Equal(t, third.Update, last)
}

func TestStatusPublisher_AutoDispatchDisabled(t *testing.T) {
	e := newTestEngine(t)
	e.signals.Set("fundao", extremeGrids())

	publisher := newTestPublisher(e, false)
	publisher.Cycle(context.Background())
	report := publisher.Cycle(context.Background())

	assert.Zero(t, report.MissionsCreated)
	assert.Empty(t, e.scheduler.Missions())
	assert.Len(t, report.Update.HighRiskAreas, 1)
}

func TestStatusPublisher_RetriesPendingMissions(t *testing.T) {
	e := newTestEngine(t)
	exhaustFleet(t, e)

	_, err := e.scheduler.CreateMission(assessmentAt("fundao", domain.AlertHigh, fundaoCenter))
	require.NoError(t, err)

	publisher := newTestPublisher(e, true)
	assert.Zero(t, publisher.Cycle(context.Background()).MissionsAssigned)

	require.NoError(t, e.fleet.UpdateDroneStatus("scout_fundao_nest", domain.DroneStatusIdle, 100, fundaoCenter))
	assert.Equal(t, 1, publisher.Cycle(context.Background()).MissionsAssigned)
}

func TestStatusPublisher_SinkErrors(t *testing.T) {
	e := newTestEngine(t)

	publisher := newTestPublisher(e, true)
	observer := &fakeObserver{}
	broadcaster := &recordingBroadcaster{}
	publisher.SetObserver(observer)
	publisher.AddBroadcaster(broadcaster)
	publisher.SetArchive(&fakeAssessmentRepo{err: errors.New("connection refused")}, &fakeMissionRepo{})

	publisher.Cycle(context.Background())

	assert.Equal(t, []string{"assessments"}, observer.sinkErrors)
	assert.Equal(t, 1, broadcaster.count(), "sink failures do not block broadcasting")
}

func TestStatusPublisher_Snapshot(t *testing.T) {
	e := newTestEngine(t)
	e.signals.Set("fundao", extremeGrids())

	publisher := newTestPublisher(e, true)
	publisher.Cycle(context.Background())
	publisher.Cycle(context.Background())

	snapshot := publisher.Snapshot()
	require.Len(t, snapshot.HighRiskAreas, 1)
	assert.InDelta(t, 0.91, snapshot.HighRiskAreas[0].Risk, 1e-9)
	assert.Len(t, snapshot.FleetStatus.Drones, 4)

	history, err := e.risk.History("fundao")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestStatusPublisher_Run(t *testing.T) {
	t.Run("rejects non-positive interval", func(t *testing.T) {
		e := newTestEngine(t)
		publisher := NewStatusPublisher(e.risk, e.scheduler, e.fleet, e.clock, PublisherConfig{}, zap.NewNop())
		assert.Error(t, publisher.Run(context.Background()))
	})

	t.Run("cycles until cancelled", func(t *testing.T) {
		e := newTestEngine(t)
		publisher := NewStatusPublisher(e.risk, e.scheduler, e.fleet, e.clock, PublisherConfig{
			Interval: 5 * time.Millisecond,
		}, zap.NewNop())
		broadcaster := &recordingBroadcaster{}
		publisher.AddBroadcaster(broadcaster)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- publisher.Run(ctx) }()

		assert.Eventually(t, func() bool { return broadcaster.count() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("publisher did not stop")
		}
	})
}
