package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sowing_calendar_bot/internal/domain/sowing"
)

type PostgresRecordRepository struct {
	db *sql.DB
}

func NewPostgresRecordRepository(db *sql.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db}
}

func (r *PostgresRecordRepository) Create(ctx context.Context, rec *sowing.Record) error {
	query := `INSERT INTO sowing_records (ref, farmer_id, window_id, crop_name, sowed_on, state, summary)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		rec.Ref, rec.FarmerID, rec.WindowID, rec.CropName, rec.SowedOn, rec.State, rec.Summary,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "sowing_records_ref_key") {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("error creating sowing record: %w", err)
	}
	return nil
}

func (r *PostgresRecordRepository) ListByFarmer(ctx context.Context, farmerID int64, limit int) ([]*sowing.Record, error) {
	query := `SELECT id, ref, farmer_id, COALESCE(window_id, 0), crop_name, sowed_on, state, summary, created_at
               FROM sowing_records
               WHERE farmer_id = $1
               ORDER BY sowed_on DESC, id DESC
               LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, farmerID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing sowing records: %w", err)
	}
	defer rows.Close()

	records := make([]*sowing.Record, 0)
	for rows.Next() {
		rec := &sowing.Record{}
		if err := rows.Scan(&rec.ID, &rec.Ref, &rec.FarmerID, &rec.WindowID, &rec.CropName, &rec.SowedOn, &rec.State, &rec.Summary, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning sowing record: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sowing records: %w", err)
	}
	return records, nil
}

func (r *PostgresRecordRepository) HasRecordSince(ctx context.Context, farmerID, windowID int64, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
                   SELECT 1 FROM sowing_records
                   WHERE farmer_id = $1 AND window_id = $2 AND sowed_on >= $3
               )`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, farmerID, windowID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking sowing records: %w", err)
	}
	return exists, nil
}
