package scheduler

import (
	"context"
	"time"

	"sowing_calendar_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderSender is the part of app.ReminderService the scheduler drives.
type ReminderSender interface {
	SendMonthlyReminders(ctx context.Context, ref time.Time) (app.ReminderReport, error)
}

const monthlyRunTimeout = 10 * time.Minute

type ReminderScheduler struct {
	cronEngine      *cron.Cron
	reminders       ReminderSender
	now             app.Clock
	logger          *logrus.Entry
	cronSpecMonthly string
}

func NewReminderScheduler(
	reminders ReminderSender,
	now app.Clock,
	loc *time.Location,
	logger *logrus.Entry,
	cronSpecMonthly string, // e.g. "0 8 1 * *" (08:00 on the 1st)
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:      cron.New(cron.WithLocation(loc)),
		reminders:       reminders,
		now:             now,
		logger:          logger,
		cronSpecMonthly: cronSpecMonthly,
	}
}

// Start registers the monthly reminder job and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecMonthly, s.RunMonthly); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecMonthly).Info("Reminder scheduler started")
	return nil
}

// RunMonthly performs one reminder run for the current month.
func (s *ReminderScheduler) RunMonthly() {
	ref := s.now()
	log := s.logger.WithField("reference_month", ref.Month().String())
	log.Info("Cron job triggered for monthly sowing reminders")

	ctx, cancel := context.WithTimeout(context.Background(), monthlyRunTimeout)
	defer cancel()

	report, err := s.reminders.SendMonthlyReminders(ctx, ref)
	if err != nil {
		log.WithError(err).Error("Monthly reminder run failed")
		return
	}
	log.WithFields(logrus.Fields{
		"farmers": report.Farmers,
		"sent":    report.Sent,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("Monthly reminder run finished")
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // waits for a running job
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}
