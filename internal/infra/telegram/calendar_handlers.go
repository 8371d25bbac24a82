package telegram

import (
	"context"
	"errors"

	"sowing_calendar_bot/internal/app"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"
	"sowing_calendar_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const logbookLimit = 10

// RegisterCalendarHandlers registers the farmer-facing calendar commands.
func RegisterCalendarHandlers(ctx context.Context, b *telebot.Bot, calendarService *app.CalendarService, baseLogger *logrus.Entry) {
	b.Handle("/calendar", func(c telebot.Context) error {
		senderID := c.Sender().ID
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/calendar", "sender_id": senderID})
		handlerLogger.Info("Command received")

		f, err := calendarService.ActiveFarmer(ctx, senderID)
		if err != nil {
			metrics.RecordCommand("/calendar", outcomeFor(err))
			return replyFarmerError(c, senderLocale(ctx, calendarService, senderID), err, handlerLogger)
		}
		loc := farmerLocale(f.Locale)

		q, ok := calendarQuery(c.Args(), f)
		if !ok {
			metrics.RecordCommand("/calendar", "rejected")
			return c.Send(app.Text(loc, app.MsgCalendarUsage))
		}
		handlerLogger = handlerLogger.WithFields(logrus.Fields{"crop": q.Crop, "region": q.Region, "season": q.Season})

		entries, err := calendarService.Lookup(ctx, q)
		if err != nil {
			metrics.RecordCommand("/calendar", "error")
			return replyFarmerError(c, loc, err, handlerLogger)
		}
		metrics.RecordCommand("/calendar", "ok")
		if len(entries) == 0 {
			handlerLogger.Info("No windows matched")
			return c.Send(app.Text(loc, app.MsgNoData, q.Crop))
		}

		subscribed := subscribedSet(ctx, calendarService, senderID, handlerLogger)
		return sendEntries(c, entries, loc, subscribed)
	})

	b.Handle("/status", func(c telebot.Context) error {
		senderID := c.Sender().ID
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/status", "sender_id": senderID})

		f, err := calendarService.ActiveFarmer(ctx, senderID)
		if err != nil {
			metrics.RecordCommand("/status", outcomeFor(err))
			return replyFarmerError(c, senderLocale(ctx, calendarService, senderID), err, handlerLogger)
		}
		loc := farmerLocale(f.Locale)

		crop := argText(c.Message().Payload)
		if crop == "" {
			metrics.RecordCommand("/status", "rejected")
			return c.Send(app.Text(loc, app.MsgStatusUsage))
		}

		entries, err := calendarService.StatusForCrop(ctx, crop, f.Region.String)
		if err != nil {
			metrics.RecordCommand("/status", "error")
			return replyFarmerError(c, loc, err, handlerLogger)
		}
		metrics.RecordCommand("/status", "ok")
		if len(entries) == 0 {
			return c.Send(app.Text(loc, app.MsgNoData, crop))
		}
		return c.Send(formatStatusLines(entries, loc))
	})

	b.Handle("/sowed", func(c telebot.Context) error {
		senderID := c.Sender().ID
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/sowed", "sender_id": senderID})
		handlerLogger.Info("Command received")
		loc := senderLocale(ctx, calendarService, senderID)

		windowID, sowedOn, err := parseSowedArgs(c.Args(), calendarService.Today())
		if err != nil {
			metrics.RecordCommand("/sowed", "rejected")
			if errors.Is(err, errBadDate) {
				return c.Send(app.Text(loc, app.MsgSowedBadDate))
			}
			return c.Send(app.Text(loc, app.MsgSowedUsage))
		}
		handlerLogger = handlerLogger.WithField("window_id", windowID)

		rec, err := calendarService.LogSowing(ctx, senderID, windowID, sowedOn)
		if err != nil {
			metrics.RecordCommand("/sowed", outcomeFor(err))
			switch {
			case errors.Is(err, idb.ErrWindowNotFound):
				return c.Send(app.Text(loc, app.MsgWindowNotFound, windowID))
			case errors.Is(err, app.ErrSowingDateInFuture):
				return c.Send(app.Text(loc, app.MsgSowedBadDate))
			default:
				return replyFarmerError(c, loc, err, handlerLogger)
			}
		}

		metrics.RecordCommand("/sowed", "ok")
		return c.Send(app.Text(loc, app.MsgSowedLogged, shortRef(rec.Ref.String()), rec.Summary))
	})

	b.Handle("/logbook", func(c telebot.Context) error {
		senderID := c.Sender().ID
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/logbook", "sender_id": senderID})
		loc := senderLocale(ctx, calendarService, senderID)

		records, err := calendarService.Logbook(ctx, senderID, logbookLimit)
		if err != nil {
			metrics.RecordCommand("/logbook", outcomeFor(err))
			return replyFarmerError(c, loc, err, handlerLogger)
		}
		metrics.RecordCommand("/logbook", "ok")
		if len(records) == 0 {
			return c.Send(app.Text(loc, app.MsgLogbookEmpty))
		}
		return c.Send(formatLogbook(records, loc))
	})

	b.Handle("/reminders", func(c telebot.Context) error {
		senderID := c.Sender().ID
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/reminders", "sender_id": senderID})
		loc := senderLocale(ctx, calendarService, senderID)

		entries, err := calendarService.Subscriptions(ctx, senderID)
		if err != nil {
			metrics.RecordCommand("/reminders", outcomeFor(err))
			return replyFarmerError(c, loc, err, handlerLogger)
		}
		metrics.RecordCommand("/reminders", "ok")
		if len(entries) == 0 {
			return c.Send(app.Text(loc, app.MsgSubscriptionsNone))
		}
		subscribed := make(map[int64]bool, len(entries))
		for _, e := range entries {
			subscribed[e.Window.ID] = true
		}
		return sendEntries(c, entries, loc, subscribed)
	})
}

// sendEntries sends one card per entry with its reminder button. The legend
// goes under the first card.
func sendEntries(c telebot.Context, entries []app.CalendarEntry, loc sowing.Locale, subscribed map[int64]bool) error {
	if len(entries) > maxEntriesPerReply {
		entries = entries[:maxEntriesPerReply]
	}
	for i, e := range entries {
		text := app.RenderEntry(e, loc)
		if i == 0 {
			text += "\n\n" + app.Text(loc, app.MsgLegend)
		}
		if err := c.Send(text, reminderMarkup(loc, e.Window.ID, subscribed[e.Window.ID])); err != nil {
			return err
		}
	}
	return nil
}

func subscribedSet(ctx context.Context, calendarService *app.CalendarService, telegramID int64, logCtx *logrus.Entry) map[int64]bool {
	set := make(map[int64]bool)
	entries, err := calendarService.Subscriptions(ctx, telegramID)
	if err != nil {
		logCtx.WithError(err).Warn("Could not load subscriptions")
		return set
	}
	for _, e := range entries {
		set[e.Window.ID] = true
	}
	return set
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
