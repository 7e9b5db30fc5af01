package ports

import (
	"context"

	"wildfire-monitoring-system/internal/domain"
)

// AssessmentRepository archives risk assessments for offline analysis.
// The engine never reads them back.
type AssessmentRepository interface {
	Save(ctx context.Context, assessment *domain.RiskAssessment) error
	SaveBatch(ctx context.Context, assessments []domain.RiskAssessment) error
}

// MissionRepository archives mission records keyed by mission id.
type MissionRepository interface {
	Upsert(ctx context.Context, mission *domain.Mission) error
}
