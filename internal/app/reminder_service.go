package app

import (
	"context"
	"fmt"
	"time"

	"sowing_calendar_bot/internal/domain/farmer"
	"sowing_calendar_bot/internal/domain/sowing"
	domainTelegram "sowing_calendar_bot/internal/domain/telegram"
	"sowing_calendar_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// ReminderReport summarizes one monthly reminder run.
type ReminderReport struct {
	Farmers int
	Sent    int
	Skipped int
	Failed  int
}

// ReminderService sends the monthly "your sowing window opens/is open" messages
// for the windows farmers subscribed to.
type ReminderService struct {
	farmerRepo farmer.Repository
	windowRepo sowing.Repository
	recordRepo sowing.RecordRepository
	notifier   domainTelegram.Notifier
	logger     *logrus.Entry
}

func NewReminderService(
	fr farmer.Repository,
	wr sowing.Repository,
	rr sowing.RecordRepository,
	n domainTelegram.Notifier,
	logger *logrus.Entry,
) *ReminderService {
	return &ReminderService{
		farmerRepo: fr,
		windowRepo: wr,
		recordRepo: rr,
		notifier:   n,
		logger:     logger,
	}
}

// SendMonthlyReminders classifies every subscribed window against ref's month.
// Early windows get an "opens next month" message; open windows get an "open
// now" message unless the farmer already logged a sowing since the span opened;
// late windows are skipped. A failure for one farmer never stops the run.
func (s *ReminderService) SendMonthlyReminders(ctx context.Context, ref time.Time) (ReminderReport, error) {
	var report ReminderReport
	refMonth := sowing.Month(ref.Month())
	runLogger := s.logger.WithField("reference_month", refMonth)
	runLogger.Info("Starting monthly reminder run")

	farmers, err := s.farmerRepo.ListActive(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list active farmers: %w", err)
	}
	report.Farmers = len(farmers)

	for _, f := range farmers {
		if err := ctx.Err(); err != nil {
			runLogger.WithError(err).Warn("Reminder run interrupted")
			return report, err
		}
		farmerLogger := runLogger.WithFields(logrus.Fields{"farmer_id": f.ID, "telegram_id": f.TelegramID})

		windows, err := subscribedWindows(ctx, s.farmerRepo, s.windowRepo, f.ID)
		if err != nil {
			farmerLogger.WithError(err).Error("Failed to load subscriptions")
			report.Failed++
			continue
		}

		loc := sowing.LocaleFromLanguageCode(f.Locale)
		for _, w := range windows {
			text, kind, err := s.reminderFor(ctx, f, w, ref, loc)
			if err != nil {
				farmerLogger.WithError(err).WithField("window_id", w.ID).Error("Failed to evaluate reminder")
				report.Failed++
				continue
			}
			if text == "" {
				report.Skipped++
				continue
			}
			if err := s.notifier.SendMessage(f.TelegramID, text, nil); err != nil {
				farmerLogger.WithError(err).WithField("window_id", w.ID).Error("Failed to send reminder")
				metrics.RecordReminder(kind, "failed")
				report.Failed++
				continue
			}
			metrics.RecordReminder(kind, "sent")
			report.Sent++
		}
	}

	return report, nil
}

// reminderFor returns the message for one window, or "" when nothing should be sent.
func (s *ReminderService) reminderFor(ctx context.Context, f *farmer.Farmer, w *sowing.Window, ref time.Time, loc sowing.Locale) (string, string, error) {
	st, err := w.Status(sowing.Month(ref.Month()))
	if err != nil {
		return "", "", err
	}

	switch st.State {
	case sowing.StateEarly:
		return Text(loc, MsgReminderEarly, WindowTitle(w), SpanText(w, loc)), "early", nil
	case sowing.StateOnTime:
		sown, err := s.recordRepo.HasRecordSince(ctx, f.ID, w.ID, SpanOpenedAt(w, ref))
		if err != nil {
			return "", "", err
		}
		if sown {
			return "", "", nil
		}
		return Text(loc, MsgReminderOpen, WindowTitle(w), SpanText(w, loc), w.ID), "open", nil
	default:
		return "", "", nil
	}
}

// SpanOpenedAt is the first day of the ideal span that contains ref. For a
// wrapping window seen in January, that is the start month of the previous year.
func SpanOpenedAt(w *sowing.Window, ref time.Time) time.Time {
	year := ref.Year()
	if w.StartMonth > sowing.Month(ref.Month()) {
		year--
	}
	return time.Date(year, time.Month(w.StartMonth), 1, 0, 0, 0, 0, ref.Location())
}
