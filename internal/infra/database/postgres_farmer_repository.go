package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sowing_calendar_bot/internal/domain/farmer"
)

const farmerColumns = `id, telegram_id, first_name, last_name, region, locale, is_active, created_at, updated_at`

type PostgresFarmerRepository struct {
	db *sql.DB
}

func NewPostgresFarmerRepository(db *sql.DB) *PostgresFarmerRepository {
	return &PostgresFarmerRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFarmer(row rowScanner) (*farmer.Farmer, error) {
	f := &farmer.Farmer{}
	err := row.Scan(&f.ID, &f.TelegramID, &f.FirstName, &f.LastName, &f.Region, &f.Locale, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r *PostgresFarmerRepository) Create(ctx context.Context, f *farmer.Farmer) error {
	query := `INSERT INTO farmers (telegram_id, first_name, last_name, region, locale, is_active)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, f.TelegramID, f.FirstName, f.LastName, f.Region, f.Locale, f.IsActive).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "farmers_telegram_id_key") {
			return ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating farmer: %w", err)
	}
	return nil
}

func (r *PostgresFarmerRepository) GetByID(ctx context.Context, id int64) (*farmer.Farmer, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers WHERE id = $1`
	f, err := scanFarmer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFarmerNotFound
		}
		return nil, fmt.Errorf("error getting farmer by ID: %w", err)
	}
	return f, nil
}

func (r *PostgresFarmerRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*farmer.Farmer, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers WHERE telegram_id = $1`
	f, err := scanFarmer(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFarmerNotFound
		}
		return nil, fmt.Errorf("error getting farmer by Telegram ID: %w", err)
	}
	return f, nil
}

func (r *PostgresFarmerRepository) Update(ctx context.Context, f *farmer.Farmer) error {
	query := `UPDATE farmers
               SET first_name = $1, last_name = $2, region = $3, locale = $4, is_active = $5, updated_at = NOW()
               WHERE id = $6
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, f.FirstName, f.LastName, f.Region, f.Locale, f.IsActive, f.ID).Scan(&f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFarmerNotFound
		}
		return fmt.Errorf("error updating farmer: %w", err)
	}
	return nil
}

func (r *PostgresFarmerRepository) ListActive(ctx context.Context) ([]*farmer.Farmer, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers WHERE is_active = TRUE ORDER BY first_name, last_name`
	return r.list(ctx, "active", query)
}

func (r *PostgresFarmerRepository) ListAll(ctx context.Context) ([]*farmer.Farmer, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers ORDER BY id`
	return r.list(ctx, "all", query)
}

func (r *PostgresFarmerRepository) list(ctx context.Context, what, query string) ([]*farmer.Farmer, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing %s farmers: %w", what, err)
	}
	defer rows.Close()

	farmers := make([]*farmer.Farmer, 0)
	for rows.Next() {
		f, err := scanFarmer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s farmer: %w", what, err)
		}
		farmers = append(farmers, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s farmers: %w", what, err)
	}
	return farmers, nil
}

func (r *PostgresFarmerRepository) Subscribe(ctx context.Context, farmerID, windowID int64) error {
	query := `INSERT INTO farmer_subscriptions (farmer_id, window_id)
               VALUES ($1, $2)
               ON CONFLICT ON CONSTRAINT farmer_window_unique DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, farmerID, windowID); err != nil {
		return fmt.Errorf("error subscribing farmer %d to window %d: %w", farmerID, windowID, err)
	}
	return nil
}

func (r *PostgresFarmerRepository) Unsubscribe(ctx context.Context, farmerID, windowID int64) error {
	query := `DELETE FROM farmer_subscriptions WHERE farmer_id = $1 AND window_id = $2`
	if _, err := r.db.ExecContext(ctx, query, farmerID, windowID); err != nil {
		return fmt.Errorf("error unsubscribing farmer %d from window %d: %w", farmerID, windowID, err)
	}
	return nil
}

func (r *PostgresFarmerRepository) ListSubscriptions(ctx context.Context, farmerID int64) ([]*farmer.Subscription, error) {
	query := `SELECT id, farmer_id, window_id, created_at
               FROM farmer_subscriptions WHERE farmer_id = $1 ORDER BY window_id`
	rows, err := r.db.QueryContext(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*farmer.Subscription, 0)
	for rows.Next() {
		s := &farmer.Subscription{}
		if err := rows.Scan(&s.ID, &s.FarmerID, &s.WindowID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}
	return subs, nil
}
