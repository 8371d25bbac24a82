package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"sowing_calendar_bot/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	refs   []time.Time
	report app.ReminderReport
	err    error
}

func (s *stubSender) SendMonthlyReminders(ctx context.Context, ref time.Time) (app.ReminderReport, error) {
	if _, ok := ctx.Deadline(); !ok {
		return app.ReminderReport{}, errors.New("expected a deadline")
	}
	s.refs = append(s.refs, ref)
	return s.report, s.err
}

func newTestScheduler(sender *stubSender, now time.Time) (*ReminderScheduler, *test.Hook) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	hook := test.NewLocal(l)
	s := NewReminderScheduler(sender, func() time.Time { return now }, time.UTC, logrus.NewEntry(l), "0 8 1 * *")
	return s, hook
}

func TestRunMonthly(t *testing.T) {
	now := time.Date(2026, time.November, 1, 8, 0, 0, 0, time.UTC)
	sender := &stubSender{report: app.ReminderReport{Farmers: 3, Sent: 2, Skipped: 1}}
	s, hook := newTestScheduler(sender, now)

	s.RunMonthly()

	require.Len(t, sender.refs, 1)
	assert.Equal(t, now, sender.refs[0])
	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "Monthly reminder run finished", last.Message)
	assert.Equal(t, 2, last.Data["sent"])
	assert.Equal(t, "November", last.Data["reference_month"])
}

func TestRunMonthly_LogsFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("db down")}
	s, hook := newTestScheduler(sender, time.Now())

	s.RunMonthly()

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.ErrorLevel, last.Level)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := NewReminderScheduler(&stubSender{}, time.Now, time.UTC, logrus.NewEntry(l), "every month please")
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(&stubSender{}, time.Now())
	require.NoError(t, s.Start())
	s.Stop()
}
