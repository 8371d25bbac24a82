package telegram

import (
	"context"
	"errors"
	"strings"

	"sowing_calendar_bot/internal/app"
	"sowing_calendar_bot/internal/domain/sowing"
	"sowing_calendar_bot/internal/infra/config"
	"sowing_calendar_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig, // For AdminTelegramID
	calendarService *app.CalendarService,
	baseLogger *logrus.Entry,
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		sender := c.Sender()
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", sender.ID)
		logCtx.Info("Processing /start command")

		if sender.ID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin")
			metrics.RecordCommand("/start", "ok")
			return c.Send("Hello, admin " + sender.FirstName + "! Use /help for the list of commands.")
		}

		f, created, err := calendarService.RegisterFarmer(ctx, sender.ID, sender.FirstName, sender.LastName, sender.LanguageCode)
		if err != nil {
			metrics.RecordCommand("/start", outcomeFor(err))
			if errors.Is(err, app.ErrFarmerInactive) {
				logCtx.WithField("farmer_id", f.ID).Info("User identified as inactive farmer")
				return c.Send(app.Text(farmerLocale(f.Locale), app.MsgAccountInactive))
			}
			logCtx.WithError(err).Error("Error registering farmer for /start command")
			return c.Send(app.Text(sowing.LocaleFromLanguageCode(sender.LanguageCode), app.MsgGenericError))
		}

		metrics.RecordCommand("/start", "ok")
		loc := farmerLocale(f.Locale)
		logCtx.WithFields(logrus.Fields{"farmer_id": f.ID, "created": created}).Info("Farmer greeted")
		if created {
			return c.Send(app.Text(loc, app.MsgWelcomeNew, f.FirstName))
		}
		return c.Send(app.Text(loc, app.MsgWelcomeBack, f.FirstName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")
		metrics.RecordCommand("/help", "ok")

		if senderID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin, sending admin help.")
			return c.Send(adminHelp(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}

		loc := senderLocale(ctx, calendarService, senderID)
		return c.Send(app.Text(loc, app.MsgHelp) + "\n\n" + app.Text(loc, app.MsgLegend))
	})

	b.Handle("/lang", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/lang", "sender_id": senderID})

		args := c.Args()
		if len(args) != 1 {
			metrics.RecordCommand("/lang", "rejected")
			return c.Send(app.Text(senderLocale(ctx, calendarService, senderID), app.MsgLangUsage))
		}

		f, err := calendarService.SetLocale(ctx, senderID, args[0])
		if err != nil {
			metrics.RecordCommand("/lang", outcomeFor(err))
			loc := senderLocale(ctx, calendarService, senderID)
			if errors.Is(err, sowing.ErrUnsupportedLocale) {
				return c.Send(app.Text(loc, app.MsgLangUsage))
			}
			return replyFarmerError(c, loc, err, logCtx)
		}

		metrics.RecordCommand("/lang", "ok")
		logCtx.WithField("locale", f.Locale).Info("Farmer locale changed")
		return c.Send(app.Text(farmerLocale(f.Locale), app.MsgLangSet))
	})

	b.Handle("/region", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/region", "sender_id": senderID})

		region := strings.TrimSpace(c.Message().Payload)
		if region == "" {
			metrics.RecordCommand("/region", "rejected")
			return c.Send(app.Text(senderLocale(ctx, calendarService, senderID), app.MsgRegionUsage))
		}

		f, err := calendarService.SetRegion(ctx, senderID, region)
		if err != nil {
			metrics.RecordCommand("/region", outcomeFor(err))
			return replyFarmerError(c, senderLocale(ctx, calendarService, senderID), err, logCtx)
		}

		metrics.RecordCommand("/region", "ok")
		logCtx.WithField("region", f.Region.String).Info("Farmer region changed")
		return c.Send(app.Text(farmerLocale(f.Locale), app.MsgRegionSet, f.Region.String))
	})
}

func adminHelp() string {
	var helpText strings.Builder
	helpText.WriteString("Admin commands:\n\n")
	helpText.WriteString("`/add_window <crop> <start> <end> [season] [region]`\n - Add a sowing window. Months are names (en/hi) or numbers 1-12.\n\n")
	helpText.WriteString("`/set_window <id> <start> <end>`\n - Change the ideal months of a window.\n\n")
	helpText.WriteString("`/set_window_info <id> <notes|source|zone|varieties> <text>`\n - Set window details. Varieties are comma-separated, `-` clears.\n\n")
	helpText.WriteString("`/remove_window <id>`\n - Delete a sowing window.\n\n")
	helpText.WriteString("`/list_windows`\n - Show all sowing windows.\n\n")
	helpText.WriteString("`/board [month]`\n - Group all windows by status for a month (default: current).\n\n")
	helpText.WriteString("`/list_farmers [active|all]`\n - Show farmers. Active by default.\n\n")
	helpText.WriteString("`/remove_farmer <TelegramID>`\n - Deactivate a farmer (no more reminders).\n\n")
	helpText.WriteString("`/activate_farmer <TelegramID>`\n - Re-activate a farmer.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return helpText.String()
}

// farmerLocale resolves a stored locale code.
func farmerLocale(code string) sowing.Locale {
	return sowing.LocaleFromLanguageCode(code)
}

// senderLocale is the sender's stored locale, English for unknown users.
func senderLocale(ctx context.Context, calendarService *app.CalendarService, telegramID int64) sowing.Locale {
	f, err := calendarService.ActiveFarmer(ctx, telegramID)
	if f == nil || (err != nil && !errors.Is(err, app.ErrFarmerInactive)) {
		return sowing.LocaleEnglish
	}
	return farmerLocale(f.Locale)
}

// outcomeFor maps a handler error to the commands_total outcome label.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isUserError(err):
		return "rejected"
	default:
		return "error"
	}
}

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// replyFarmerError answers the farmer-facing errors shared by every command.
func replyFarmerError(c telebot.Context, loc sowing.Locale, err error, logCtx *logrus.Entry) error {
	switch {
	case errors.Is(err, app.ErrFarmerNotFound):
		return c.Send(app.Text(loc, app.MsgNotRegistered))
	case errors.Is(err, app.ErrFarmerInactive):
		return c.Send(app.Text(loc, app.MsgAccountInactive))
	default:
		logCtx.WithError(err).Error("Command failed")
		return c.Send(app.Text(loc, app.MsgGenericError))
	}
}
