package app

import (
	"strings"
	"testing"

	"sowing_calendar_bot/internal/domain/sowing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTimeline(t *testing.T) {
	tl, err := sowing.ClassifyTimeline(*riceKharif())
	require.NoError(t, err)

	got := RenderTimeline(tl, sowing.LocaleEnglish, sowing.May)
	want := "Jan⬜ Feb⬜ Mar⬜ Apr⬜ [May🟨] Jun🟩\nJul🟩 Aug🟨 Sep⬜ Oct⬜ Nov⬜ Dec⬜"
	assert.Equal(t, want, got)
}

func TestRenderEntry(t *testing.T) {
	w := wheatRabi()
	w.ID = 3
	w.Varieties = []string{"HD-2967", "PBW-343"}
	tl, err := sowing.ClassifyTimeline(*w)
	require.NoError(t, err)
	st, err := sowing.CurrentStatusOf(tl, sowing.October)
	require.NoError(t, err)

	got := RenderEntry(CalendarEntry{Window: w, Timeline: tl, Status: st}, sowing.LocaleEnglish)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Wheat (Rabi, Punjab) #3", lines[0])
	assert.Equal(t, "Ideal: Nov – Feb", lines[3])
	assert.Equal(t, "Now (Oct): Early, the window opens next month", lines[4])
	assert.Equal(t, "Varieties: HD-2967, PBW-343", lines[5])
}

func TestWindowTitleAndSpanText(t *testing.T) {
	w := &sowing.Window{CropName: "Mustard", StartMonth: sowing.October, EndMonth: sowing.October}
	assert.Equal(t, "Mustard", WindowTitle(w))
	assert.Equal(t, "Oct", SpanText(w, sowing.LocaleEnglish))
}

func TestText_FallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "Usage: /status <crop>", Text(sowing.Locale("ta"), MsgStatusUsage))
	assert.Equal(t, "Sowing window #7 not found.", Text(sowing.LocaleEnglish, MsgWindowNotFound, 7))
	assert.Equal(t, "सही समय, अभी बुवाई करें", StateText(sowing.LocaleHindi, sowing.StateOnTime))
}

func TestRenderEntry_Details(t *testing.T) {
	w := riceKharif()
	w.ID = 4
	w.AgroZone = ns("Trans-Gangetic Plains")
	w.Notes = ns("Transplant 25-30 day old seedlings.")
	w.Source = ns("ICAR")
	tl, err := sowing.ClassifyTimeline(*w)
	require.NoError(t, err)
	st, err := sowing.CurrentStatusOf(tl, sowing.June)
	require.NoError(t, err)

	got := RenderEntry(CalendarEntry{Window: w, Timeline: tl, Status: st}, sowing.LocaleEnglish)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Agro-climatic zone: Trans-Gangetic Plains", lines[5])
	assert.Equal(t, "Transplant 25-30 day old seedlings.", lines[6])
	assert.Equal(t, "Source: ICAR", lines[7])
}

func TestHelpMentionsRemindersAndMultiWordNames(t *testing.T) {
	for _, loc := range sowing.SupportedLocales {
		help := Text(loc, MsgHelp)
		assert.Contains(t, help, "/reminders", loc)
		assert.Contains(t, help, "🔔", loc)
		assert.Contains(t, help, "pearl_millet", loc)
		assert.Contains(t, Text(loc, MsgCalendarUsage), "pearl_millet", loc)
	}
}
