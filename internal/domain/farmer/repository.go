package farmer

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Farmer entities.
type Repository interface {
	Create(ctx context.Context, farmer *Farmer) error
	GetByID(ctx context.Context, id int64) (*Farmer, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*Farmer, error)
	Update(ctx context.Context, farmer *Farmer) error // FirstName, LastName, Region, Locale, IsActive
	ListActive(ctx context.Context) ([]*Farmer, error)
	ListAll(ctx context.Context) ([]*Farmer, error) // For admin purposes

	Subscribe(ctx context.Context, farmerID, windowID int64) error // no-op if already subscribed
	Unsubscribe(ctx context.Context, farmerID, windowID int64) error
	ListSubscriptions(ctx context.Context, farmerID int64) ([]*Subscription, error)
}
