package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"wildfire-monitoring-system/internal/domain"
)

const insertAssessmentQuery = `
	INSERT INTO risk_assessments (area_key, area_name, total_risk, alert_level, requires_inspection,
		factor_names, factors, latitude, longitude, assessed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// PostgresAssessmentRepository archives risk assessments in PostgreSQL
type PostgresAssessmentRepository struct {
	db *sql.DB
}

// NewPostgresAssessmentRepository creates a new PostgresAssessmentRepository
func NewPostgresAssessmentRepository(db *sql.DB) *PostgresAssessmentRepository {
	return &PostgresAssessmentRepository{
		db: db,
	}
}

// Save archives a single assessment
func (r *PostgresAssessmentRepository) Save(ctx context.Context, assessment *domain.RiskAssessment) error {
	args, err := assessmentArgs(assessment)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, insertAssessmentQuery, args...); err != nil {
		return fmt.Errorf("failed to save risk assessment: %w", err)
	}
	return nil
}

// SaveBatch archives one scan cycle's assessments in a single transaction
func (r *PostgresAssessmentRepository) SaveBatch(ctx context.Context, assessments []domain.RiskAssessment) error {
	if len(assessments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertAssessmentQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range assessments {
		args, err := assessmentArgs(&assessments[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to save risk assessment for %s: %w", assessments[i].AreaKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func assessmentArgs(a *domain.RiskAssessment) ([]interface{}, error) {
	factorsJSON, err := json.Marshal(a.RiskFactors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal risk factors: %w", err)
	}

	names := make([]string, len(a.RiskFactors))
	for i, f := range a.RiskFactors {
		names[i] = string(f.Name)
	}

	return []interface{}{
		a.AreaKey,
		a.AreaName,
		a.TotalRisk,
		string(a.AlertLevel),
		a.RequiresInspection,
		pq.Array(names),
		factorsJSON,
		a.Coordinates.Lat,
		a.Coordinates.Lon,
		a.Timestamp,
	}, nil
}
