package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"wildfire-monitoring-system/internal/domain"
)

// PostgresMissionRepository archives missions in PostgreSQL
type PostgresMissionRepository struct {
	db *sql.DB
}

// NewPostgresMissionRepository creates a new PostgresMissionRepository
func NewPostgresMissionRepository(db *sql.DB) *PostgresMissionRepository {
	return &PostgresMissionRepository{
		db: db,
	}
}

// Upsert inserts a mission or refreshes its mutable columns
func (r *PostgresMissionRepository) Upsert(ctx context.Context, mission *domain.Mission) error {
	query := `
		INSERT INTO missions (id, target_area, area_name, priority, status, drone_id, start_time,
			completion_time, estimated_duration_minutes, target_latitude, target_longitude, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
			drone_id = EXCLUDED.drone_id,
			completion_time = EXCLUDED.completion_time,
			updated_at = now()
	`

	var droneID sql.NullString
	if mission.DroneID != nil {
		droneID = sql.NullString{String: *mission.DroneID, Valid: true}
	}

	var completionTime sql.NullTime
	if mission.CompletionTime != nil {
		completionTime = sql.NullTime{Time: *mission.CompletionTime, Valid: true}
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		mission.ID,
		mission.TargetArea,
		mission.AreaName,
		string(mission.Priority),
		string(mission.Status),
		droneID,
		mission.StartTime,
		completionTime,
		mission.EstimatedDurationMinutes,
		mission.TargetCoords.Lat,
		mission.TargetCoords.Lon,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mission %s: %w", mission.ID, err)
	}

	return nil
}
