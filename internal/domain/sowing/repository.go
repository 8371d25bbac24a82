package sowing

import (
	"context"
	"time"
)

// Repository stores sowing windows and resolves calendar searches.
type Repository interface {
	Create(ctx context.Context, w *Window) error
	Update(ctx context.Context, w *Window) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Window, error)
	Search(ctx context.Context, q Query) ([]*Window, error) // crop matches case-insensitively and partially
	ListAll(ctx context.Context) ([]*Window, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*Window, error)
}

// RecordRepository is the sowing logbook.
type RecordRepository interface {
	Create(ctx context.Context, r *Record) error
	ListByFarmer(ctx context.Context, farmerID int64, limit int) ([]*Record, error)
	HasRecordSince(ctx context.Context, farmerID, windowID int64, since time.Time) (bool, error)
}
