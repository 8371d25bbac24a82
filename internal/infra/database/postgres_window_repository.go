package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sowing_calendar_bot/internal/domain/sowing"

	"github.com/lib/pq" // For pq.Array
)

const windowColumns = `id, crop_name, start_month, end_month, season, region, agro_zone, varieties, notes, source, created_at, updated_at`

const windowUniqueIndex = "sowing_windows_crop_season_region_key"

type PostgresWindowRepository struct {
	db *sql.DB
}

func NewPostgresWindowRepository(db *sql.DB) *PostgresWindowRepository {
	return &PostgresWindowRepository{db: db}
}

func scanWindow(row rowScanner) (*sowing.Window, error) {
	w := &sowing.Window{}
	err := row.Scan(
		&w.ID, &w.CropName, &w.StartMonth, &w.EndMonth, &w.Season, &w.Region,
		&w.AgroZone, pq.Array(&w.Varieties), &w.Notes, &w.Source, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

func scanWindows(rows *sql.Rows) ([]*sowing.Window, error) {
	windows := make([]*sowing.Window, 0)
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning sowing window row: %w", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sowing window rows: %w", err)
	}
	return windows, nil
}

func varietiesOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func (r *PostgresWindowRepository) Create(ctx context.Context, w *sowing.Window) error {
	query := `INSERT INTO sowing_windows (crop_name, start_month, end_month, season, region, agro_zone, varieties, notes, source)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		w.CropName, w.StartMonth, w.EndMonth, w.Season, w.Region, w.AgroZone,
		pq.Array(varietiesOrEmpty(w.Varieties)), w.Notes, w.Source,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, windowUniqueIndex) {
			return ErrDuplicateWindow
		}
		return fmt.Errorf("error creating sowing window: %w", err)
	}
	return nil
}

func (r *PostgresWindowRepository) Update(ctx context.Context, w *sowing.Window) error {
	query := `UPDATE sowing_windows
               SET crop_name = $1, start_month = $2, end_month = $3, season = $4, region = $5,
                   agro_zone = $6, varieties = $7, notes = $8, source = $9, updated_at = NOW()
               WHERE id = $10
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		w.CropName, w.StartMonth, w.EndMonth, w.Season, w.Region, w.AgroZone,
		pq.Array(varietiesOrEmpty(w.Varieties)), w.Notes, w.Source, w.ID,
	).Scan(&w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWindowNotFound
		}
		if isUniqueViolation(err, windowUniqueIndex) {
			return ErrDuplicateWindow
		}
		return fmt.Errorf("error updating sowing window: %w", err)
	}
	return nil
}

func (r *PostgresWindowRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sowing_windows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting sowing window: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for sowing window delete: %w", err)
	}
	if n == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func (r *PostgresWindowRepository) GetByID(ctx context.Context, id int64) (*sowing.Window, error) {
	query := `SELECT ` + windowColumns + ` FROM sowing_windows WHERE id = $1`
	w, err := scanWindow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, fmt.Errorf("error getting sowing window by ID: %w", err)
	}
	return w, nil
}

// Search matches crop as a case-insensitive substring and region/season as
// case-insensitive equality. Empty query fields are ignored.
func (r *PostgresWindowRepository) Search(ctx context.Context, q sowing.Query) ([]*sowing.Window, error) {
	query := `SELECT ` + windowColumns + `
               FROM sowing_windows
               WHERE ($1 = '' OR crop_name ILIKE '%' || $1 || '%')
                 AND ($2 = '' OR LOWER(region) = LOWER($2))
                 AND ($3 = '' OR LOWER(season) = LOWER($3))
               ORDER BY crop_name, season NULLS LAST, region NULLS LAST`
	rows, err := r.db.QueryContext(ctx, query,
		escapeLike(strings.TrimSpace(q.Crop)), strings.TrimSpace(q.Region), strings.TrimSpace(q.Season))
	if err != nil {
		return nil, fmt.Errorf("error searching sowing windows: %w", err)
	}
	defer rows.Close()
	return scanWindows(rows)
}

func (r *PostgresWindowRepository) ListAll(ctx context.Context) ([]*sowing.Window, error) {
	query := `SELECT ` + windowColumns + ` FROM sowing_windows ORDER BY crop_name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing sowing windows: %w", err)
	}
	defer rows.Close()
	return scanWindows(rows)
}

func (r *PostgresWindowRepository) ListByIDs(ctx context.Context, ids []int64) ([]*sowing.Window, error) {
	if len(ids) == 0 {
		return []*sowing.Window{}, nil
	}
	query := `SELECT ` + windowColumns + ` FROM sowing_windows WHERE id = ANY($1) ORDER BY crop_name, id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error listing sowing windows by IDs: %w", err)
	}
	defer rows.Close()
	return scanWindows(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
