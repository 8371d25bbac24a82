package app

import (
	"fmt"
	"strings"

	"sowing_calendar_bot/internal/domain/sowing"
)

var tierCell = map[sowing.Tier]string{
	sowing.TierIdeal:          "🟩",
	sowing.TierPossible:       "🟨",
	sowing.TierNotRecommended: "⬜",
}

func shortMonth(m sowing.Month, loc sowing.Locale) string {
	name, err := sowing.ShortMonthNameOf(m, loc)
	if err != nil {
		return m.String()
	}
	return name
}

// RenderTimeline draws the 12-month strip in two rows of six. The reference
// month is bracketed.
func RenderTimeline(tl sowing.Timeline, loc sowing.Locale, ref sowing.Month) string {
	var b strings.Builder
	for i, mc := range tl {
		cell := shortMonth(mc.Month, loc) + tierCell[mc.Tier]
		if mc.Month == ref {
			cell = "[" + cell + "]"
		}
		b.WriteString(cell)
		switch {
		case i == len(tl)-1:
		case (i+1)%6 == 0:
			b.WriteString("\n")
		default:
			b.WriteString(" ")
		}
	}
	return b.String()
}

// SpanText formats a window's ideal span, e.g. "Nov – Feb".
func SpanText(w *sowing.Window, loc sowing.Locale) string {
	if w.StartMonth == w.EndMonth {
		return shortMonth(w.StartMonth, loc)
	}
	return shortMonth(w.StartMonth, loc) + " – " + shortMonth(w.EndMonth, loc)
}

// WindowTitle is "Wheat (Rabi, Punjab)" with whichever qualifiers are set.
func WindowTitle(w *sowing.Window) string {
	var parts []string
	if w.Season.Valid && w.Season.String != "" {
		parts = append(parts, w.Season.String)
	}
	if w.Region.Valid && w.Region.String != "" {
		parts = append(parts, w.Region.String)
	}
	if len(parts) == 0 {
		return w.CropName
	}
	return fmt.Sprintf("%s (%s)", w.CropName, strings.Join(parts, ", "))
}

// RenderEntry formats one calendar lookup result as a chat message.
func RenderEntry(e CalendarEntry, loc sowing.Locale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d\n", WindowTitle(e.Window), e.Window.ID)
	b.WriteString(RenderTimeline(e.Timeline, loc, e.Status.ReferenceMonth))
	b.WriteString("\n")
	b.WriteString(Text(loc, MsgIdealMonths, SpanText(e.Window, loc)))
	b.WriteString("\n")
	b.WriteString(Text(loc, MsgNow, shortMonth(e.Status.ReferenceMonth, loc), StateText(loc, e.Status.State)))
	if e.Window.AgroZone.Valid && e.Window.AgroZone.String != "" {
		b.WriteString("\n")
		b.WriteString(Text(loc, MsgAgroZone, e.Window.AgroZone.String))
	}
	if len(e.Window.Varieties) > 0 {
		b.WriteString("\n")
		b.WriteString(Text(loc, MsgVarieties, strings.Join(e.Window.Varieties, ", ")))
	}
	if e.Window.Notes.Valid && e.Window.Notes.String != "" {
		b.WriteString("\n")
		b.WriteString(e.Window.Notes.String)
	}
	if e.Window.Source.Valid && e.Window.Source.String != "" {
		b.WriteString("\n")
		b.WriteString(Text(loc, MsgSource, e.Window.Source.String))
	}
	return b.String()
}
