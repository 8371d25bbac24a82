package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"sowing_calendar_bot/internal/domain/farmer"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ns(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func wheatRabi() *sowing.Window {
	return &sowing.Window{CropName: "Wheat", StartMonth: sowing.November, EndMonth: sowing.February, Season: ns("Rabi"), Region: ns("Punjab")}
}

func riceKharif() *sowing.Window {
	return &sowing.Window{CropName: "Rice", StartMonth: sowing.June, EndMonth: sowing.July, Season: ns("Kharif"), Region: ns("Punjab")}
}

var october2026 = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

func newCalendarService(windows *fakeWindowRepo, farmers *fakeFarmerRepo, records *fakeRecordRepo, now time.Time) *CalendarService {
	return NewCalendarService(windows, records, farmers, fixedClock(now), quietLogger())
}

func TestCalendarService_Lookup(t *testing.T) {
	svc := newCalendarService(newFakeWindowRepo(wheatRabi(), riceKharif()), newFakeFarmerRepo(), &fakeRecordRepo{}, october2026)

	entries, err := svc.Lookup(context.Background(), sowing.Query{Crop: "whe"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Wheat", e.Window.CropName)
	assert.Len(t, e.Timeline, sowing.MonthsInYear)
	assert.Equal(t, sowing.StateEarly, e.Status.State)
	assert.Equal(t, sowing.October, e.Status.ReferenceMonth)

	entries, err = svc.Lookup(context.Background(), sowing.Query{Crop: "rice"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sowing.StateLate, entries[0].Status.State)
}

func TestCalendarService_LookupNoMatchesIsEmpty(t *testing.T) {
	svc := newCalendarService(newFakeWindowRepo(wheatRabi()), newFakeFarmerRepo(), &fakeRecordRepo{}, october2026)

	entries, err := svc.StatusForCrop(context.Background(), "mustard", "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCalendarService_LookupSkipsCorruptWindows(t *testing.T) {
	windows := newFakeWindowRepo(wheatRabi())
	windows.windows[99] = &sowing.Window{ID: 99, CropName: "Wheat broken", StartMonth: 0, EndMonth: 14}
	svc := newCalendarService(windows, newFakeFarmerRepo(), &fakeRecordRepo{}, october2026)

	entries, err := svc.Lookup(context.Background(), sowing.Query{Crop: "wheat"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Wheat", entries[0].Window.CropName)
}

func TestCalendarService_RegisterFarmer(t *testing.T) {
	farmers := newFakeFarmerRepo()
	svc := newCalendarService(newFakeWindowRepo(), farmers, &fakeRecordRepo{}, october2026)
	ctx := context.Background()

	f, created, err := svc.RegisterFarmer(ctx, 501, "Ravi", "", "hi-IN")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "hi", f.Locale)
	assert.False(t, f.LastName.Valid)

	again, created, err := svc.RegisterFarmer(ctx, 501, "Ravi", "", "en")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, f.ID, again.ID)

	again.IsActive = false
	_, _, err = svc.RegisterFarmer(ctx, 501, "Ravi", "", "en")
	assert.ErrorIs(t, err, ErrFarmerInactive)

	svc.WithDefaultLocale(sowing.LocaleHindi)
	f, created, err = svc.RegisterFarmer(ctx, 502, "Olga", "", "ru")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "hi", f.Locale)
}

func TestCalendarService_LogSowing(t *testing.T) {
	windows := newFakeWindowRepo(wheatRabi())
	farmers := newFakeFarmerRepo(&farmer.Farmer{TelegramID: 501, FirstName: "Ravi", Locale: "en", IsActive: true})
	records := &fakeRecordRepo{}
	now := time.Date(2026, time.December, 20, 10, 0, 0, 0, time.UTC)
	svc := newCalendarService(windows, farmers, records, now)

	sowed := time.Date(2026, time.November, 12, 0, 0, 0, 0, time.UTC)
	rec, err := svc.LogSowing(context.Background(), 501, 1, sowed)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.Ref)
	assert.Equal(t, sowing.StateOnTime, rec.State)
	assert.Equal(t, "Wheat (Rabi, Punjab) sown 2026-11-12: on time (ideal Nov – Feb)", rec.Summary)
	require.Len(t, records.records, 1)

	book, err := svc.Logbook(context.Background(), 501, 10)
	require.NoError(t, err)
	require.Len(t, book, 1)
	assert.Equal(t, rec.Ref, book[0].Ref)
}

func TestCalendarService_LogSowingErrors(t *testing.T) {
	windows := newFakeWindowRepo(wheatRabi())
	farmers := newFakeFarmerRepo(&farmer.Farmer{TelegramID: 501, FirstName: "Ravi", Locale: "en", IsActive: true})
	svc := newCalendarService(windows, farmers, &fakeRecordRepo{}, october2026)
	ctx := context.Background()

	_, err := svc.LogSowing(ctx, 777, 1, october2026)
	assert.ErrorIs(t, err, ErrFarmerNotFound)

	_, err = svc.LogSowing(ctx, 501, 42, october2026)
	assert.ErrorIs(t, err, idb.ErrWindowNotFound)

	_, err = svc.LogSowing(ctx, 501, 1, october2026.AddDate(0, 0, 3))
	assert.ErrorIs(t, err, ErrSowingDateInFuture)
}

func TestCalendarService_SubscribeAndList(t *testing.T) {
	windows := newFakeWindowRepo(wheatRabi(), riceKharif())
	farmers := newFakeFarmerRepo(&farmer.Farmer{TelegramID: 501, FirstName: "Ravi", Locale: "en", IsActive: true})
	svc := newCalendarService(windows, farmers, &fakeRecordRepo{}, october2026)
	ctx := context.Background()

	w, err := svc.Subscribe(ctx, 501, 2)
	require.NoError(t, err)
	assert.Equal(t, "Rice", w.CropName)

	entries, err := svc.Subscriptions(ctx, 501)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].Window.ID)

	_, err = svc.Unsubscribe(ctx, 501, 2)
	require.NoError(t, err)
	entries, err = svc.Subscriptions(ctx, 501)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = svc.Subscribe(ctx, 501, 9)
	assert.ErrorIs(t, err, idb.ErrWindowNotFound)
}

func TestCalendarService_SetLocaleAndRegion(t *testing.T) {
	farmers := newFakeFarmerRepo(&farmer.Farmer{TelegramID: 501, FirstName: "Ravi", Locale: "en", IsActive: true})
	svc := newCalendarService(newFakeWindowRepo(), farmers, &fakeRecordRepo{}, october2026)
	ctx := context.Background()

	f, err := svc.SetLocale(ctx, 501, "HI")
	require.NoError(t, err)
	assert.Equal(t, "hi", f.Locale)

	_, err = svc.SetLocale(ctx, 501, "fr")
	assert.ErrorIs(t, err, sowing.ErrUnsupportedLocale)

	f, err = svc.SetRegion(ctx, 501, "  Haryana ")
	require.NoError(t, err)
	assert.Equal(t, ns("Haryana"), f.Region)
}

func TestCalendarService_ReferenceMonthAndToday(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, time.October, 31, 23, 0, 0, 0, time.UTC).In(ist)
	svc := newCalendarService(newFakeWindowRepo(), newFakeFarmerRepo(), &fakeRecordRepo{}, now)

	assert.Equal(t, sowing.November, svc.ReferenceMonth())
	assert.Equal(t, time.Date(2026, time.November, 1, 0, 0, 0, 0, ist), svc.Today())
}
