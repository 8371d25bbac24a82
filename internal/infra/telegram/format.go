package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sowing_calendar_bot/internal/app"
	"sowing_calendar_bot/internal/domain/farmer"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"
)

// maxEntriesPerReply caps how many calendar cards one command sends.
const maxEntriesPerReply = 5

// userErrors are caused by bad input rather than by the bot.
var userErrors = []error{
	app.ErrFarmerNotFound,
	app.ErrFarmerInactive,
	app.ErrSowingDateInFuture,
	app.ErrAdminNotAuthorized,
	app.ErrFarmerAlreadyInactive,
	app.ErrEmptyCropName,
	app.ErrUnknownWindowDetail,
	sowing.ErrInvalidMonthIndex,
	sowing.ErrMonthNotFound,
	sowing.ErrUnsupportedLocale,
	idb.ErrWindowNotFound,
	idb.ErrDuplicateWindow,
	idb.ErrFarmerNotFound,
	errBadCallback,
	errBadDate,
}

var errBadDate = errors.New("invalid date")

var stateBadge = map[sowing.State]string{
	sowing.StateOnTime: "✅",
	sowing.StateEarly:  "⏳",
	sowing.StateLate:   "⛔",
}

// parseSowedArgs reads "/sowed <window_id> [YYYY-MM-DD]". The date defaults
// to today and is interpreted in today's location.
func parseSowedArgs(args []string, today time.Time) (int64, time.Time, error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, time.Time{}, fmt.Errorf("expected 1 or 2 arguments, got %d", len(args))
	}
	windowID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || windowID <= 0 {
		return 0, time.Time{}, fmt.Errorf("invalid window id %q", args[0])
	}
	if len(args) == 1 {
		return windowID, today, nil
	}
	sowedOn, err := time.ParseInLocation("2006-01-02", args[1], today.Location())
	if err != nil {
		return windowID, time.Time{}, fmt.Errorf("%w: %v", errBadDate, err)
	}
	return windowID, sowedOn, nil
}

// calendarQuery builds a lookup from "/calendar <crop> [region] [season]",
// defaulting the region to the farmer's own. Multi-word names use
// underscores, as in /add_window.
func calendarQuery(args []string, f *farmer.Farmer) (sowing.Query, bool) {
	if len(args) < 1 || len(args) > 3 {
		return sowing.Query{}, false
	}
	q := sowing.Query{Crop: argText(args[0])}
	if len(args) > 1 {
		q.Region = argText(args[1])
	} else if f != nil && f.Region.Valid {
		q.Region = f.Region.String
	}
	if len(args) > 2 {
		q.Season = argText(args[2])
	}
	return q, true
}

func formatStatusLines(entries []app.CalendarEntry, loc sowing.Locale) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s #%d (%s): %s", stateBadge[e.Status.State], app.WindowTitle(e.Window), e.Window.ID,
			app.SpanText(e.Window, loc), app.StateText(loc, e.Status.State))
	}
	return b.String()
}

func formatLogbook(records []*sowing.Record, loc sowing.Locale) string {
	var b strings.Builder
	b.WriteString(app.Text(loc, app.MsgLogbookTitle))
	for _, r := range records {
		fmt.Fprintf(&b, "\n%s %s", stateBadge[r.State], r.Summary)
	}
	return b.String()
}

func formatWindowList(windows []*sowing.Window) string {
	if len(windows) == 0 {
		return "No sowing windows yet. Add one with /add_window."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- Sowing windows (%d) ---", len(windows))
	for _, w := range windows {
		fmt.Fprintf(&b, "\n#%d %s: %s", w.ID, app.WindowTitle(w), app.SpanText(w, sowing.LocaleEnglish))
	}
	return b.String()
}

func formatBoard(board *app.StatusBoard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Status board for %s ---", board.ReferenceMonth)
	for _, st := range []sowing.State{sowing.StateOnTime, sowing.StateEarly, sowing.StateLate} {
		entries := board.Entries[st]
		fmt.Fprintf(&b, "\n\n%s %s (%d)", stateBadge[st], app.StateText(sowing.LocaleEnglish, st), len(entries))
		for _, e := range entries {
			fmt.Fprintf(&b, "\n#%d %s: %s", e.Window.ID, app.WindowTitle(e.Window), app.SpanText(e.Window, sowing.LocaleEnglish))
		}
	}
	return b.String()
}

func formatFarmerList(title string, farmers []*farmer.Farmer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s ---", title)
	for _, f := range farmers {
		status := "inactive"
		if f.IsActive {
			status = "active"
		}
		region := f.Region.String
		if region == "" {
			region = "-"
		}
		fmt.Fprintf(&b, "\nID: %d, Telegram ID: %d, Name: %s, Region: %s, Lang: %s, Status: %s",
			f.ID, f.TelegramID, f.DisplayName(), region, f.Locale, status)
	}
	return b.String()
}
