package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sowing_calendar_bot/internal/app"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"
	"sowing_calendar_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	actionSubscribe   = "sub"
	actionUnsubscribe = "unsub"
)

var errBadCallback = errors.New("invalid callback data")

// parseCallback decodes the data of a reminder button. telebot prefixes
// Data() buttons with '\f' and separates the payload with '|', so both
// "\fsub|12" and the bare "sub_12" form are accepted.
func parseCallback(data string) (string, int64, error) {
	data = strings.TrimPrefix(strings.TrimSpace(data), "\f")
	action, payload, ok := strings.Cut(data, "|")
	if !ok {
		action, payload, ok = strings.Cut(data, "_")
	}
	if !ok || (action != actionSubscribe && action != actionUnsubscribe) {
		return "", 0, fmt.Errorf("%w: %q", errBadCallback, data)
	}
	windowID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || windowID <= 0 {
		return "", 0, fmt.Errorf("%w: window id %q", errBadCallback, payload)
	}
	return action, windowID, nil
}

// reminderMarkup is the inline button shown under a calendar entry.
func reminderMarkup(loc sowing.Locale, windowID int64, subscribed bool) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	id := strconv.FormatInt(windowID, 10)
	var btn telebot.Btn
	if subscribed {
		btn = markup.Data(app.Text(loc, app.MsgBtnUnsubscribe), actionUnsubscribe, id)
	} else {
		btn = markup.Data(app.Text(loc, app.MsgBtnSubscribe), actionSubscribe, id)
	}
	markup.Inline(markup.Row(btn))
	return markup
}

// RegisterCallbackHandlers handles the reminder buttons under calendar entries.
func RegisterCallbackHandlers(ctx context.Context, b *telebot.Bot, calendarService *app.CalendarService, baseLogger *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "callback",
			"sender_id": c.Sender().ID,
			"data":      data,
		})

		action, windowID, err := parseCallback(data)
		if err != nil {
			handlerLogger.WithError(err).Warn("Unhandled callback")
			metrics.RecordCommand("callback", "rejected")
			return c.Respond(&telebot.CallbackResponse{Text: app.Text(sowing.LocaleEnglish, app.MsgUnknownAction)})
		}
		handlerLogger = handlerLogger.WithFields(logrus.Fields{"action": action, "window_id": windowID})

		var w *sowing.Window
		if action == actionSubscribe {
			w, err = calendarService.Subscribe(ctx, c.Sender().ID, windowID)
		} else {
			w, err = calendarService.Unsubscribe(ctx, c.Sender().ID, windowID)
		}

		loc := senderLocale(ctx, calendarService, c.Sender().ID)
		if err != nil {
			metrics.RecordCommand("callback", outcomeFor(err))
			var text string
			switch {
			case errors.Is(err, app.ErrFarmerNotFound):
				text = app.Text(loc, app.MsgNotRegistered)
			case errors.Is(err, app.ErrFarmerInactive):
				text = app.Text(loc, app.MsgAccountInactive)
			case errors.Is(err, idb.ErrWindowNotFound):
				text = app.Text(loc, app.MsgWindowNotFound, windowID)
			default:
				handlerLogger.WithError(err).Error("Failed to update subscription")
				text = app.Text(loc, app.MsgGenericError)
			}
			return c.Respond(&telebot.CallbackResponse{Text: text})
		}

		metrics.RecordCommand("callback", "ok")
		handlerLogger.Info("Subscription updated")

		var text string
		if action == actionSubscribe {
			text = app.Text(loc, app.MsgSubscribed, app.WindowTitle(w))
		} else {
			text = app.Text(loc, app.MsgUnsubscribed, app.WindowTitle(w))
		}
		// Flip the button so the next tap does the opposite.
		if err := c.Edit(reminderMarkup(loc, windowID, action == actionSubscribe)); err != nil {
			handlerLogger.WithError(err).Debug("Could not update button")
		}
		return c.Respond(&telebot.CallbackResponse{Text: text})
	})
}
