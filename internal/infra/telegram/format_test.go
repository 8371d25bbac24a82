package telegram

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"sowing_calendar_bot/internal/app"
	"sowing_calendar_bot/internal/domain/farmer"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data     string
		action   string
		windowID int64
		wantErr  bool
	}{
		{data: "\fsub|12", action: actionSubscribe, windowID: 12},
		{data: "\funsub|3", action: actionUnsubscribe, windowID: 3},
		{data: "sub_7", action: actionSubscribe, windowID: 7},
		{data: "unsub_7", action: actionUnsubscribe, windowID: 7},
		{data: "\fans_yes|1", wantErr: true},
		{data: "sub|abc", wantErr: true},
		{data: "sub|0", wantErr: true},
		{data: "sub", wantErr: true},
		{data: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.data), func(t *testing.T) {
			action, id, err := parseCallback(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadCallback)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.windowID, id)
		})
	}
}

func TestReminderMarkup(t *testing.T) {
	m := reminderMarkup(sowing.LocaleEnglish, 12, false)
	require.Len(t, m.InlineKeyboard, 1)
	require.Len(t, m.InlineKeyboard[0], 1)
	btn := m.InlineKeyboard[0][0]
	assert.Equal(t, "🔔 Remind me", btn.Text)
	assert.Equal(t, actionSubscribe, btn.Unique)
	assert.Equal(t, "12", btn.Data)

	m = reminderMarkup(sowing.LocaleHindi, 12, true)
	assert.Equal(t, actionUnsubscribe, m.InlineKeyboard[0][0].Unique)
}

func TestParseSowedArgs(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	today := time.Date(2026, time.November, 20, 0, 0, 0, 0, ist)

	id, on, err := parseSowedArgs([]string{"4"}, today)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.Equal(t, today, on)

	id, on, err = parseSowedArgs([]string{"4", "2026-11-12"}, today)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.Equal(t, time.Date(2026, time.November, 12, 0, 0, 0, 0, ist), on)

	_, _, err = parseSowedArgs([]string{"4", "12/11/2026"}, today)
	assert.ErrorIs(t, err, errBadDate)

	_, _, err = parseSowedArgs([]string{"wheat"}, today)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errBadDate)

	_, _, err = parseSowedArgs(nil, today)
	assert.Error(t, err)
}

func TestCalendarQuery(t *testing.T) {
	f := &farmer.Farmer{Region: sql.NullString{String: "Punjab", Valid: true}}

	q, ok := calendarQuery([]string{"wheat"}, f)
	require.True(t, ok)
	assert.Equal(t, sowing.Query{Crop: "wheat", Region: "Punjab"}, q)

	q, ok = calendarQuery([]string{"wheat", "Haryana", "rabi"}, f)
	require.True(t, ok)
	assert.Equal(t, sowing.Query{Crop: "wheat", Region: "Haryana", Season: "rabi"}, q)

	q, ok = calendarQuery([]string{"pearl_millet", "uttar_pradesh"}, f)
	require.True(t, ok)
	assert.Equal(t, sowing.Query{Crop: "pearl millet", Region: "uttar pradesh"}, q)

	q, ok = calendarQuery([]string{"black_gram", "Punjab", "kharif"}, nil)
	require.True(t, ok)
	assert.Equal(t, sowing.Query{Crop: "black gram", Region: "Punjab", Season: "kharif"}, q)

	q, ok = calendarQuery([]string{"rice"}, &farmer.Farmer{})
	require.True(t, ok)
	assert.Empty(t, q.Region)

	_, ok = calendarQuery(nil, f)
	assert.False(t, ok)
}

func boardEntry(t *testing.T, id int64, crop string, start, end, ref sowing.Month) app.CalendarEntry {
	t.Helper()
	w := &sowing.Window{ID: id, CropName: crop, StartMonth: start, EndMonth: end}
	tl, err := sowing.ClassifyTimeline(*w)
	require.NoError(t, err)
	st, err := sowing.CurrentStatusOf(tl, ref)
	require.NoError(t, err)
	return app.CalendarEntry{Window: w, Timeline: tl, Status: st}
}

func TestFormatStatusLines(t *testing.T) {
	entries := []app.CalendarEntry{
		boardEntry(t, 1, "Wheat", sowing.November, sowing.February, sowing.January),
		boardEntry(t, 2, "Rice", sowing.June, sowing.July, sowing.January),
	}
	got := formatStatusLines(entries, sowing.LocaleEnglish)
	assert.Equal(t, "✅ Wheat #1 (Nov – Feb): On time, sow now\n⛔ Rice #2 (Jun – Jul): Late, the window has passed", got)
}

func TestFormatBoard(t *testing.T) {
	board := &app.StatusBoard{
		ReferenceMonth: sowing.May,
		Entries: map[sowing.State][]app.CalendarEntry{
			sowing.StateEarly: {boardEntry(t, 2, "Rice", sowing.June, sowing.July, sowing.May)},
		},
	}
	got := formatBoard(board)
	assert.Contains(t, got, "--- Status board for May ---")
	assert.Contains(t, got, "On time, sow now (0)")
	assert.Contains(t, got, "Early, the window opens next month (1)\n#2 Rice: Jun – Jul")
}

func TestFormatLogbook(t *testing.T) {
	got := formatLogbook([]*sowing.Record{
		{State: sowing.StateLate, Summary: "Rice sown 2026-09-01: late (ideal Jun – Jul)"},
	}, sowing.LocaleEnglish)
	assert.Equal(t, "Your last sowings:\n⛔ Rice sown 2026-09-01: late (ideal Jun – Jul)", got)
}

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, "ok", outcomeFor(nil))
	assert.Equal(t, "rejected", outcomeFor(fmt.Errorf("start month: %w", sowing.ErrMonthNotFound)))
	assert.Equal(t, "rejected", outcomeFor(idb.ErrWindowNotFound))
	assert.Equal(t, "error", outcomeFor(errors.New("connection reset")))
}

func TestArgText(t *testing.T) {
	assert.Equal(t, "pearl millet", argText("pearl_millet"))
	assert.Equal(t, "Rabi", argText("Rabi"))
}

func TestParseWindowInfo(t *testing.T) {
	id, detail, value, ok := parseWindowInfo("3 Notes  Sow after the first rain")
	require.True(t, ok)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, "notes", detail)
	assert.Equal(t, "Sow after the first rain", value)

	_, detail, value, ok = parseWindowInfo("5 varieties HD-2967, PBW-343")
	require.True(t, ok)
	assert.Equal(t, "varieties", detail)
	assert.Equal(t, "HD-2967, PBW-343", value)

	_, _, _, ok = parseWindowInfo("x notes text")
	assert.False(t, ok)
	_, _, _, ok = parseWindowInfo("3 notes")
	assert.False(t, ok)
}
