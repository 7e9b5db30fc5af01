package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []struct {
	name string
	stmt string
}{
	{"risk_assessments table", `
		CREATE TABLE IF NOT EXISTS risk_assessments (
			id BIGSERIAL PRIMARY KEY,
			area_key TEXT NOT NULL,
			area_name TEXT NOT NULL,
			total_risk DOUBLE PRECISION NOT NULL,
			alert_level TEXT NOT NULL,
			requires_inspection BOOLEAN NOT NULL,
			factor_names TEXT[] NOT NULL,
			factors JSONB NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			assessed_at TIMESTAMPTZ NOT NULL
		)
	`},
	{"risk_assessments index", `
		CREATE INDEX IF NOT EXISTS risk_assessments_area_time_idx
		ON risk_assessments (area_key, assessed_at)
	`},
	{"missions table", `
		CREATE TABLE IF NOT EXISTS missions (
			id TEXT PRIMARY KEY,
			target_area TEXT NOT NULL,
			area_name TEXT NOT NULL,
			priority TEXT NOT NULL,
			status TEXT NOT NULL,
			drone_id TEXT,
			start_time TIMESTAMPTZ NOT NULL,
			completion_time TIMESTAMPTZ,
			estimated_duration_minutes INTEGER NOT NULL,
			target_latitude DOUBLE PRECISION NOT NULL,
			target_longitude DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`},
	{"missions status index", `
		CREATE INDEX IF NOT EXISTS missions_status_idx
		ON missions (status)
	`},
}

// InitializeSchema creates the archive tables if they do not exist
func InitializeSchema(ctx context.Context, db *sql.DB) error {
	for _, s := range schema {
		if _, err := db.ExecContext(ctx, s.stmt); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.name, err)
		}
	}
	return nil
}
