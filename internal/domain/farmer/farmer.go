package farmer

import (
	"database/sql"
	"time"
)

// Farmer is a bot user who looks up sowing windows and receives reminders.
type Farmer struct {
	ID         int64
	TelegramID int64
	FirstName  string
	LastName   sql.NullString // Telegram users may have no last name
	Region     sql.NullString // default region for calendar lookups
	Locale     string         // "en" or "hi"
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName joins first and last name.
func (f *Farmer) DisplayName() string {
	if f.LastName.Valid && f.LastName.String != "" {
		return f.FirstName + " " + f.LastName.String
	}
	return f.FirstName
}

// Subscription links a farmer to a sowing window they want monthly reminders for.
type Subscription struct {
	ID        int64
	FarmerID  int64
	WindowID  int64
	CreatedAt time.Time
}
