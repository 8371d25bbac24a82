package sowing

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Window is the recommended sowing range for a crop in a season and region.
// Only StartMonth and EndMonth take part in classification; StartMonth > EndMonth
// means the window wraps across December into January.
type Window struct {
	ID         int64
	CropName   string
	StartMonth Month
	EndMonth   Month
	Season     sql.NullString // e.g. Kharif, Rabi, Zaid
	Region     sql.NullString
	AgroZone   sql.NullString
	Varieties  []string
	Notes      sql.NullString
	Source     sql.NullString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Wraps reports whether the window crosses the year boundary.
func (w Window) Wraps() bool {
	return w.StartMonth > w.EndMonth
}

// Contains is the ideal-span test for month m.
func (w Window) Contains(m Month) bool {
	if w.StartMonth <= w.EndMonth {
		return w.StartMonth <= m && m <= w.EndMonth
	}
	return m >= w.StartMonth || m <= w.EndMonth
}

// Status classifies the window and derives its status for the reference month.
func (w Window) Status(ref Month) (CurrentStatus, error) {
	tl, err := ClassifyTimeline(w)
	if err != nil {
		return CurrentStatus{}, err
	}
	return CurrentStatusOf(tl, ref)
}

// Query narrows a window search. Empty fields match everything.
type Query struct {
	Crop   string
	Region string
	Season string
}

// Record is a sowing logbook entry written when a farmer reports a sowing.
type Record struct {
	ID        int64
	Ref       uuid.UUID // shown to the farmer as a receipt
	FarmerID  int64
	WindowID  int64
	CropName  string
	SowedOn   time.Time
	State     State
	Summary   string
	CreatedAt time.Time
}
