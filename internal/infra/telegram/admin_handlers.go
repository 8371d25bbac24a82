package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sowing_calendar_bot/internal/app"
	"sowing_calendar_bot/internal/domain/farmer"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"
	"sowing_calendar_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgUnauthorized = "Error: you are not allowed to run this command."

// RegisterAdminHandlers registers handlers for admin commands. currentMonth
// supplies the default reference month for /board and timeline previews.
func RegisterAdminHandlers(
	ctx context.Context,
	b *telebot.Bot,
	adminService *app.AdminService,
	adminTelegramID int64,
	currentMonth func() sowing.Month,
	baseLogger *logrus.Entry,
) {
	// adminOnly wraps a handler with the sender check and the per-command logger.
	adminOnly := func(command string, h func(c telebot.Context, log *logrus.Entry) error) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			handlerLogger := baseLogger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			handlerLogger.Info("Command received")
			if c.Sender().ID != adminTelegramID {
				handlerLogger.Warn("Unauthorized access attempt")
				metrics.RecordCommand(command, "rejected")
				return c.Send(msgUnauthorized)
			}
			return h(c, handlerLogger)
		}
	}

	b.Handle("/add_window", adminOnly("/add_window", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		args := c.Args()
		// Expected format: /add_window <crop> <start> <end> [season] [region]
		if len(args) < 3 || len(args) > 5 {
			metrics.RecordCommand("/add_window", "rejected")
			return c.Send("Invalid format. Use: /add_window <crop> <start> <end> [season] [region]\nExample: /add_window wheat nov feb rabi punjab")
		}
		in := app.NewWindowInput{Crop: argText(args[0]), Start: args[1], End: args[2]}
		if len(args) > 3 {
			in.Season = argText(args[3])
		}
		if len(args) > 4 {
			in.Region = argText(args[4])
		}
		handlerLogger = handlerLogger.WithFields(logrus.Fields{"crop": in.Crop, "start": in.Start, "end": in.End})

		w, tl, err := adminService.AddWindow(ctx, c.Sender().ID, in)
		if err != nil {
			metrics.RecordCommand("/add_window", outcomeFor(err))
			return c.Send(adminErrorText(err, handlerLogger, "Failed to add sowing window"))
		}

		metrics.RecordCommand("/add_window", "ok")
		handlerLogger.WithField("window_id", w.ID).Info("Sowing window added successfully")
		return c.Send(fmt.Sprintf("Added %s #%d.\n%s", app.WindowTitle(w), w.ID, app.RenderTimeline(tl, sowing.LocaleEnglish, currentMonth())))
	}))

	b.Handle("/set_window", adminOnly("/set_window", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		args := c.Args()
		if len(args) != 3 {
			metrics.RecordCommand("/set_window", "rejected")
			return c.Send("Invalid format. Use: /set_window <id> <start> <end>")
		}
		windowID, err := parseID(args[0])
		if err != nil {
			metrics.RecordCommand("/set_window", "rejected")
			return c.Send("Error: window id must be a number.")
		}
		handlerLogger = handlerLogger.WithField("window_id", windowID)

		w, tl, err := adminService.SetWindowMonths(ctx, c.Sender().ID, windowID, args[1], args[2])
		if err != nil {
			metrics.RecordCommand("/set_window", outcomeFor(err))
			return c.Send(adminErrorText(err, handlerLogger, "Failed to update sowing window"))
		}

		metrics.RecordCommand("/set_window", "ok")
		handlerLogger.Info("Sowing window updated")
		return c.Send(fmt.Sprintf("Updated %s #%d.\n%s", app.WindowTitle(w), w.ID, app.RenderTimeline(tl, sowing.LocaleEnglish, currentMonth())))
	}))

	b.Handle("/set_window_info", adminOnly("/set_window_info", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		// Expected format: /set_window_info <id> <notes|source|zone|varieties> <text>
		windowID, detail, value, ok := parseWindowInfo(c.Message().Payload)
		if !ok {
			metrics.RecordCommand("/set_window_info", "rejected")
			return c.Send("Invalid format. Use: /set_window_info <id> <notes|source|zone|varieties> <text>\n" +
				"Varieties are comma-separated. Use - as text to clear.\nExample: /set_window_info 3 varieties HD-2967, PBW-343")
		}
		handlerLogger = handlerLogger.WithFields(logrus.Fields{"window_id": windowID, "detail": detail})

		w, err := adminService.SetWindowDetail(ctx, c.Sender().ID, windowID, detail, value)
		if err != nil {
			metrics.RecordCommand("/set_window_info", outcomeFor(err))
			return c.Send(adminErrorText(err, handlerLogger, "Failed to update sowing window"))
		}
		metrics.RecordCommand("/set_window_info", "ok")
		handlerLogger.Info("Sowing window detail updated")
		tl, err := sowing.ClassifyTimeline(*w)
		if err != nil {
			return c.Send(fmt.Sprintf("Updated %s #%d.", app.WindowTitle(w), w.ID))
		}
		st, _ := sowing.CurrentStatusOf(tl, currentMonth())
		return c.Send(app.RenderEntry(app.CalendarEntry{Window: w, Timeline: tl, Status: st}, sowing.LocaleEnglish))
	}))

	b.Handle("/remove_window", adminOnly("/remove_window", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			metrics.RecordCommand("/remove_window", "rejected")
			return c.Send("Invalid format. Use: /remove_window <id>")
		}
		windowID, err := parseID(args[0])
		if err != nil {
			metrics.RecordCommand("/remove_window", "rejected")
			return c.Send("Error: window id must be a number.")
		}
		handlerLogger = handlerLogger.WithField("window_id", windowID)

		if err := adminService.RemoveWindow(ctx, c.Sender().ID, windowID); err != nil {
			metrics.RecordCommand("/remove_window", outcomeFor(err))
			return c.Send(adminErrorText(err, handlerLogger, "Failed to remove sowing window"))
		}
		metrics.RecordCommand("/remove_window", "ok")
		handlerLogger.Info("Sowing window removed")
		return c.Send(fmt.Sprintf("Sowing window #%d removed.", windowID))
	}))

	b.Handle("/list_windows", adminOnly("/list_windows", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		windows, err := adminService.ListWindows(ctx, c.Sender().ID)
		if err != nil {
			metrics.RecordCommand("/list_windows", outcomeFor(err))
			return c.Send(adminErrorText(err, handlerLogger, "Failed to list sowing windows"))
		}
		metrics.RecordCommand("/list_windows", "ok")
		handlerLogger.WithField("windows_count", len(windows)).Info("Successfully retrieved window list")
		return c.Send(formatWindowList(windows))
	}))

	b.Handle("/board", adminOnly("/board", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		ref := currentMonth()
		if args := c.Args(); len(args) > 0 {
			m, err := sowing.ParseMonth(args[0])
			if err != nil {
				metrics.RecordCommand("/board", "rejected")
				return c.Send(fmt.Sprintf("Unknown month %q. Use a name or a number 1-12.", args[0]))
			}
			ref = m
		}
		handlerLogger = handlerLogger.WithField("reference_month", ref.String())

		board, err := adminService.StatusBoard(ctx, c.Sender().ID, ref)
		if err != nil {
			metrics.RecordCommand("/board", outcomeFor(err))
			return c.Send(adminErrorText(err, handlerLogger, "Failed to build status board"))
		}
		metrics.RecordCommand("/board", "ok")
		return c.Send(formatBoard(board))
	}))

	b.Handle("/remove_farmer", adminOnly("/remove_farmer", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		farmerTelegramID, ok := singleTelegramID(c)
		if !ok {
			metrics.RecordCommand("/remove_farmer", "rejected")
			return c.Send("Invalid format. Use: /remove_farmer <TelegramID>")
		}
		handlerLogger = handlerLogger.WithField("farmer_telegram_id", farmerTelegramID)

		removed, err := adminService.DeactivateFarmer(ctx, c.Sender().ID, farmerTelegramID)
		if err != nil {
			metrics.RecordCommand("/remove_farmer", outcomeFor(err))
			if errors.Is(err, app.ErrFarmerAlreadyInactive) && removed != nil {
				return c.Send(fmt.Sprintf("Farmer %s (ID: %d) was already deactivated.", removed.DisplayName(), removed.TelegramID))
			}
			return c.Send(adminErrorText(err, handlerLogger, "Failed to deactivate farmer"))
		}

		metrics.RecordCommand("/remove_farmer", "ok")
		handlerLogger.WithField("removed_farmer_id", removed.ID).Info("Farmer deactivated successfully")
		return c.Send(fmt.Sprintf("Farmer %s (ID: %d) deactivated.", removed.DisplayName(), removed.TelegramID))
	}))

	b.Handle("/activate_farmer", adminOnly("/activate_farmer", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		farmerTelegramID, ok := singleTelegramID(c)
		if !ok {
			metrics.RecordCommand("/activate_farmer", "rejected")
			return c.Send("Invalid format. Use: /activate_farmer <TelegramID>")
		}
		handlerLogger = handlerLogger.WithField("farmer_telegram_id", farmerTelegramID)

		f, err := adminService.ActivateFarmer(ctx, c.Sender().ID, farmerTelegramID)
		if err != nil {
			metrics.RecordCommand("/activate_farmer", outcomeFor(err))
			return c.Send(adminErrorText(err, handlerLogger, "Failed to activate farmer"))
		}
		metrics.RecordCommand("/activate_farmer", "ok")
		handlerLogger.Info("Farmer activated")
		return c.Send(fmt.Sprintf("Farmer %s (ID: %d) is active.", f.DisplayName(), f.TelegramID))
	}))

	b.Handle("/list_farmers", adminOnly("/list_farmers", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		listType := "active"
		if args := c.Args(); len(args) > 0 {
			listType = strings.ToLower(args[0])
		}
		handlerLogger = handlerLogger.WithField("list_type", listType)

		var farmers []*farmer.Farmer
		var err error
		var title string
		switch listType {
		case "active":
			title = "Active farmers"
			farmers, err = adminService.ListActiveFarmers(ctx, c.Sender().ID)
		case "all":
			title = "All farmers"
			farmers, err = adminService.ListAllFarmers(ctx, c.Sender().ID)
		default:
			metrics.RecordCommand("/list_farmers", "rejected")
			return c.Send("Invalid argument. Use 'active' or 'all', or leave it empty for active farmers.")
		}
		if err != nil {
			metrics.RecordCommand("/list_farmers", outcomeFor(err))
			return c.Send(adminErrorText(err, handlerLogger, "Failed to get list of farmers"))
		}

		metrics.RecordCommand("/list_farmers", "ok")
		if len(farmers) == 0 {
			if listType == "active" {
				return c.Send("No active farmers found.")
			}
			return c.Send("The farmer list is empty.")
		}
		handlerLogger.WithField("farmers_count", len(farmers)).Info("Successfully retrieved farmer list")
		return c.Send(formatFarmerList(title, farmers))
	}))
}

// adminErrorText maps service errors to replies, logging unexpected ones.
func adminErrorText(err error, handlerLogger *logrus.Entry, failure string) string {
	logWithError := handlerLogger.WithError(err)
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized):
		logWithError.Warn("Admin not authorized (service level)")
		return msgUnauthorized
	case errors.Is(err, app.ErrUnknownWindowDetail):
		return "Error: detail must be one of notes, source, zone, varieties."
	case errors.Is(err, app.ErrEmptyCropName):
		return "Error: crop name must not be empty."
	case errors.Is(err, sowing.ErrMonthNotFound), errors.Is(err, sowing.ErrInvalidMonthIndex):
		logWithError.Warn("Invalid month argument")
		return fmt.Sprintf("Error: %v. Use a month name (en/hi) or a number 1-12.", err)
	case errors.Is(err, idb.ErrDuplicateWindow):
		return "Error: a window for this crop, season and region already exists."
	case errors.Is(err, idb.ErrWindowNotFound):
		return "Error: sowing window not found."
	case errors.Is(err, idb.ErrFarmerNotFound):
		return "Error: no farmer with this Telegram ID."
	default:
		logWithError.Error(failure)
		return fmt.Sprintf("%s: %s", failure, err.Error())
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

// parseWindowInfo splits "<id> <detail> <free text>"; the text keeps its spaces.
func parseWindowInfo(payload string) (int64, string, string, bool) {
	fields := strings.Fields(payload)
	if len(fields) < 3 {
		return 0, "", "", false
	}
	windowID, err := parseID(fields[0])
	if err != nil {
		return 0, "", "", false
	}
	rest := strings.TrimSpace(payload)
	for _, f := range fields[:2] {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, f))
	}
	return windowID, strings.ToLower(fields[1]), rest, true
}

func singleTelegramID(c telebot.Context) (int64, bool) {
	args := c.Args()
	if len(args) != 1 {
		return 0, false
	}
	id, err := parseID(args[0])
	return id, err == nil
}

// argText turns "pearl_millet" into "pearl millet" for multi-word arguments.
func argText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
}
