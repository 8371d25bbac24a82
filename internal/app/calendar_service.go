package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sowing_calendar_bot/internal/domain/farmer"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"
	"sowing_calendar_bot/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Application-level errors for farmer-facing operations
var (
	ErrFarmerInactive     = fmt.Errorf("farmer account is inactive")
	ErrFarmerNotFound     = fmt.Errorf("farmer is not registered")
	ErrSowingDateInFuture = fmt.Errorf("sowing date is in the future")
)

// Clock returns the current time in the application's operating time zone.
type Clock func() time.Time

// CalendarEntry is one sowing window with its classification for the reference month.
type CalendarEntry struct {
	Window   *sowing.Window
	Timeline sowing.Timeline
	Status   sowing.CurrentStatus
}

// CalendarService backs the farmer-facing Sowing Calendar: lookups, status
// badges, the sowing logbook and reminder subscriptions.
type CalendarService struct {
	windowRepo sowing.Repository
	recordRepo sowing.RecordRepository
	farmerRepo farmer.Repository
	now        Clock
	logger     *logrus.Entry

	defaultLocale sowing.Locale
}

func NewCalendarService(
	wr sowing.Repository,
	rr sowing.RecordRepository,
	fr farmer.Repository,
	now Clock,
	logger *logrus.Entry,
) *CalendarService {
	return &CalendarService{
		windowRepo: wr,
		recordRepo: rr,
		farmerRepo: fr,
		now:        now,
		logger:     logger,

		defaultLocale: sowing.LocaleEnglish,
	}
}

// WithDefaultLocale sets the locale given to new farmers whose Telegram
// language is not supported.
func (s *CalendarService) WithDefaultLocale(loc sowing.Locale) *CalendarService {
	s.defaultLocale = loc
	return s
}

// ReferenceMonth is the current month according to the service clock.
func (s *CalendarService) ReferenceMonth() sowing.Month {
	return sowing.Month(s.now().Month())
}

// Today is midnight of the current day in the service clock's time zone.
func (s *CalendarService) Today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Lookup resolves q and classifies every matching window against the current
// month. No matches yields an empty slice, not an error.
func (s *CalendarService) Lookup(ctx context.Context, q sowing.Query) ([]CalendarEntry, error) {
	windows, err := s.windowRepo.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search sowing windows: %w", err)
	}
	return s.classifyAll(windows, s.ReferenceMonth()), nil
}

// StatusForCrop is Lookup without a season filter.
func (s *CalendarService) StatusForCrop(ctx context.Context, crop, region string) ([]CalendarEntry, error) {
	return s.Lookup(ctx, sowing.Query{Crop: crop, Region: region})
}

func (s *CalendarService) classifyAll(windows []*sowing.Window, ref sowing.Month) []CalendarEntry {
	entries := make([]CalendarEntry, 0, len(windows))
	for _, w := range windows {
		entry, err := classifyEntry(w, ref)
		if err != nil {
			s.logger.WithError(err).WithField("window_id", w.ID).Warn("Skipping sowing window with invalid months")
			continue
		}
		metrics.RecordClassification(string(entry.Status.State))
		entries = append(entries, entry)
	}
	return entries
}

func classifyEntry(w *sowing.Window, ref sowing.Month) (CalendarEntry, error) {
	tl, err := sowing.ClassifyTimeline(*w)
	if err != nil {
		return CalendarEntry{}, err
	}
	st, err := sowing.CurrentStatusOf(tl, ref)
	if err != nil {
		return CalendarEntry{}, err
	}
	return CalendarEntry{Window: w, Timeline: tl, Status: st}, nil
}

// RegisterFarmer handles /start. It returns created=true for new farmers and
// ErrFarmerInactive (with the farmer) for deactivated accounts.
func (s *CalendarService) RegisterFarmer(ctx context.Context, telegramID int64, firstName, lastName, languageCode string) (*farmer.Farmer, bool, error) {
	existing, err := s.farmerRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		if !existing.IsActive {
			return existing, false, ErrFarmerInactive
		}
		return existing, false, nil
	}
	if !errors.Is(err, idb.ErrFarmerNotFound) {
		return nil, false, fmt.Errorf("failed to check existing farmer: %w", err)
	}

	loc, ok := sowing.MatchLocale(languageCode)
	if !ok {
		loc = s.defaultLocale
	}
	f := &farmer.Farmer{
		TelegramID: telegramID,
		FirstName:  firstName,
		LastName:   sql.NullString{String: lastName, Valid: lastName != ""},
		Locale:     string(loc),
		IsActive:   true,
	}
	if err := s.farmerRepo.Create(ctx, f); err != nil {
		if errors.Is(err, idb.ErrDuplicateTelegramID) {
			// Lost a race with a concurrent /start from the same user.
			again, getErr := s.farmerRepo.GetByTelegramID(ctx, telegramID)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to reload farmer after duplicate create: %w", getErr)
			}
			return again, false, nil
		}
		return nil, false, fmt.Errorf("failed to create farmer: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"farmer_id": f.ID, "telegram_id": telegramID, "locale": f.Locale}).Info("Farmer registered")
	return f, true, nil
}

// ActiveFarmer loads the farmer behind a Telegram user, rejecting unknown and
// inactive accounts.
func (s *CalendarService) ActiveFarmer(ctx context.Context, telegramID int64) (*farmer.Farmer, error) {
	f, err := s.farmerRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, idb.ErrFarmerNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}
	if !f.IsActive {
		return f, ErrFarmerInactive
	}
	return f, nil
}

func (s *CalendarService) SetLocale(ctx context.Context, telegramID int64, code string) (*farmer.Farmer, error) {
	loc, err := sowing.ParseLocale(code)
	if err != nil {
		return nil, err
	}
	f, err := s.ActiveFarmer(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	f.Locale = string(loc)
	if err := s.farmerRepo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to update farmer locale: %w", err)
	}
	return f, nil
}

func (s *CalendarService) SetRegion(ctx context.Context, telegramID int64, region string) (*farmer.Farmer, error) {
	f, err := s.ActiveFarmer(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	region = strings.TrimSpace(region)
	f.Region = sql.NullString{String: region, Valid: region != ""}
	if err := s.farmerRepo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to update farmer region: %w", err)
	}
	return f, nil
}

// Subscribe turns on monthly reminders for a window.
func (s *CalendarService) Subscribe(ctx context.Context, telegramID, windowID int64) (*sowing.Window, error) {
	f, err := s.ActiveFarmer(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	w, err := s.windowRepo.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if err := s.farmerRepo.Subscribe(ctx, f.ID, w.ID); err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return w, nil
}

func (s *CalendarService) Unsubscribe(ctx context.Context, telegramID, windowID int64) (*sowing.Window, error) {
	f, err := s.ActiveFarmer(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	w, err := s.windowRepo.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if err := s.farmerRepo.Unsubscribe(ctx, f.ID, w.ID); err != nil {
		return nil, fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return w, nil
}

// Subscriptions lists the farmer's reminder windows, classified for the current month.
func (s *CalendarService) Subscriptions(ctx context.Context, telegramID int64) ([]CalendarEntry, error) {
	f, err := s.ActiveFarmer(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	windows, err := subscribedWindows(ctx, s.farmerRepo, s.windowRepo, f.ID)
	if err != nil {
		return nil, err
	}
	return s.classifyAll(windows, s.ReferenceMonth()), nil
}

func subscribedWindows(ctx context.Context, fr farmer.Repository, wr sowing.Repository, farmerID int64) ([]*sowing.Window, error) {
	subs, err := fr.ListSubscriptions(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.WindowID)
	}
	windows, err := wr.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribed windows: %w", err)
	}
	return windows, nil
}

// LogSowing records that the farmer sowed the window's crop on sowedOn. The
// window is classified against the sowing month and the verdict is stored with
// a readable summary.
func (s *CalendarService) LogSowing(ctx context.Context, telegramID, windowID int64, sowedOn time.Time) (*sowing.Record, error) {
	f, err := s.ActiveFarmer(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if sowedOn.After(s.now()) {
		return nil, ErrSowingDateInFuture
	}
	w, err := s.windowRepo.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	st, err := w.Status(sowing.Month(sowedOn.Month()))
	if err != nil {
		return nil, fmt.Errorf("failed to classify window %d: %w", w.ID, err)
	}

	rec := &sowing.Record{
		Ref:      uuid.New(),
		FarmerID: f.ID,
		WindowID: w.ID,
		CropName: w.CropName,
		SowedOn:  sowedOn,
		State:    st.State,
		Summary:  SowingSummary(w, st, sowedOn),
	}
	if err := s.recordRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store sowing record: %w", err)
	}
	metrics.RecordClassification(string(st.State))
	s.logger.WithFields(logrus.Fields{
		"farmer_id": f.ID,
		"window_id": w.ID,
		"state":     st.State,
		"ref":       rec.Ref,
	}).Info("Sowing logged")
	return rec, nil
}

// SowingSummary is the logbook line, e.g.
// "Wheat (Rabi, Punjab) sown 2026-11-12: on time (ideal Nov – Feb)".
func SowingSummary(w *sowing.Window, st sowing.CurrentStatus, sowedOn time.Time) string {
	var verdict string
	switch st.State {
	case sowing.StateOnTime:
		verdict = "on time"
	case sowing.StateEarly:
		verdict = "early"
	default:
		verdict = "late"
	}
	return fmt.Sprintf("%s sown %s: %s (ideal %s)",
		WindowTitle(w), sowedOn.Format("2006-01-02"), verdict, SpanText(w, sowing.LocaleEnglish))
}

func (s *CalendarService) Logbook(ctx context.Context, telegramID int64, limit int) ([]*sowing.Record, error) {
	f, err := s.ActiveFarmer(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListByFarmer(ctx, f.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list logbook: %w", err)
	}
	return records, nil
}
