package app

import (
	"fmt"

	"sowing_calendar_bot/internal/domain/sowing"
)

// MessageKey identifies a farmer-facing text in the catalog.
type MessageKey string

const (
	MsgStateOnTime       MessageKey = "state_on_time"
	MsgStateEarly        MessageKey = "state_early"
	MsgStateLate         MessageKey = "state_late"
	MsgLegend            MessageKey = "legend"
	MsgIdealMonths       MessageKey = "ideal_months"
	MsgNow               MessageKey = "now"
	MsgVarieties         MessageKey = "varieties"
	MsgAgroZone          MessageKey = "agro_zone"
	MsgSource            MessageKey = "source"
	MsgWelcomeNew        MessageKey = "welcome_new"
	MsgWelcomeBack       MessageKey = "welcome_back"
	MsgAccountInactive   MessageKey = "account_inactive"
	MsgNotRegistered     MessageKey = "not_registered"
	MsgHelp              MessageKey = "help"
	MsgNoData            MessageKey = "no_data"
	MsgCalendarUsage     MessageKey = "calendar_usage"
	MsgStatusUsage       MessageKey = "status_usage"
	MsgSowedUsage        MessageKey = "sowed_usage"
	MsgSowedBadDate      MessageKey = "sowed_bad_date"
	MsgSowedLogged       MessageKey = "sowed_logged"
	MsgWindowNotFound    MessageKey = "window_not_found"
	MsgLogbookEmpty      MessageKey = "logbook_empty"
	MsgLogbookTitle      MessageKey = "logbook_title"
	MsgLangUsage         MessageKey = "lang_usage"
	MsgLangSet           MessageKey = "lang_set"
	MsgRegionUsage       MessageKey = "region_usage"
	MsgRegionSet         MessageKey = "region_set"
	MsgSubscribed        MessageKey = "subscribed"
	MsgUnsubscribed      MessageKey = "unsubscribed"
	MsgBtnSubscribe      MessageKey = "btn_subscribe"
	MsgBtnUnsubscribe    MessageKey = "btn_unsubscribe"
	MsgGenericError      MessageKey = "generic_error"
	MsgReminderEarly     MessageKey = "reminder_early"
	MsgReminderOpen      MessageKey = "reminder_open"
	MsgUnknownAction     MessageKey = "unknown_action"
	MsgSubscriptionsNone MessageKey = "subscriptions_none"
)

var catalog = map[sowing.Locale]map[MessageKey]string{
	sowing.LocaleEnglish: {
		MsgStateOnTime:     "On time, sow now",
		MsgStateEarly:      "Early, the window opens next month",
		MsgStateLate:       "Late, the window has passed",
		MsgLegend:          "🟩 ideal  🟨 possible  ⬜ not recommended",
		MsgIdealMonths:     "Ideal: %s",
		MsgNow:             "Now (%s): %s",
		MsgVarieties:       "Varieties: %s",
		MsgAgroZone:        "Agro-climatic zone: %s",
		MsgSource:          "Source: %s",
		MsgWelcomeNew:      "Hello, %s! I show the best months to sow your crops. Try /calendar wheat or see /help.",
		MsgWelcomeBack:     "Welcome back, %s! Use /help to see what I can do.",
		MsgAccountInactive: "Your account is inactive. Please contact the administrator.",
		MsgNotRegistered:   "Please send /start first.",
		MsgHelp: "/calendar <crop> [region] [season] - sowing calendar for a crop\n" +
			"/status <crop> - is it the right time to sow now?\n" +
			"/sowed <window_id> [YYYY-MM-DD] - log a sowing in your logbook\n" +
			"/logbook - your last sowings\n" +
			"/reminders - windows you get monthly reminders for\n" +
			"/region <name> - set your default region\n" +
			"/lang <en|hi> - change language\n" +
			"/help - show this message\n\n" +
			"Write multi-word names with underscores, e.g. /calendar pearl_millet uttar_pradesh. " +
			"Tap 🔔 under a calendar to get a reminder when its sowing window opens.",
		MsgNoData:            "No sowing calendar found for \"%s\".",
		MsgCalendarUsage:     "Usage: /calendar <crop> [region] [season]\nExample: /calendar pearl_millet uttar_pradesh",
		MsgStatusUsage:       "Usage: /status <crop>",
		MsgSowedUsage:        "Usage: /sowed <window_id> [YYYY-MM-DD]",
		MsgSowedBadDate:      "The date must look like 2026-11-12.",
		MsgSowedLogged:       "Logged (ref %s): %s",
		MsgWindowNotFound:    "Sowing window #%d not found.",
		MsgLogbookEmpty:      "Your logbook is empty. Use /sowed after sowing.",
		MsgLogbookTitle:      "Your last sowings:",
		MsgLangUsage:         "Usage: /lang <en|hi>",
		MsgLangSet:           "Language set to English.",
		MsgRegionUsage:       "Usage: /region <name>",
		MsgRegionSet:         "Default region set to %s.",
		MsgSubscribed:        "You will get monthly reminders for %s.",
		MsgUnsubscribed:      "Reminders for %s are turned off.",
		MsgBtnSubscribe:      "🔔 Remind me",
		MsgBtnUnsubscribe:    "🔕 Stop reminders",
		MsgGenericError:      "Something went wrong. Please try again later.",
		MsgReminderEarly:     "🌱 %s: the sowing window (%s) opens next month. Get seed and field ready.",
		MsgReminderOpen:      "🌾 %s: the sowing window (%s) is open now. After sowing, log it with /sowed %d.",
		MsgUnknownAction:     "Unknown action.",
		MsgSubscriptionsNone: "You have no reminders yet. Use the 🔔 button under a calendar.",
	},
	sowing.LocaleHindi: {
		MsgStateOnTime:     "सही समय, अभी बुवाई करें",
		MsgStateEarly:      "जल्दी, बुवाई का समय अगले महीने शुरू होगा",
		MsgStateLate:       "देर, बुवाई का समय निकल चुका है",
		MsgLegend:          "🟩 उत्तम  🟨 संभव  ⬜ अनुशंसित नहीं",
		MsgIdealMonths:     "उत्तम: %s",
		MsgNow:             "अभी (%s): %s",
		MsgVarieties:       "किस्में: %s",
		MsgAgroZone:        "कृषि-जलवायु क्षेत्र: %s",
		MsgSource:          "स्रोत: %s",
		MsgWelcomeNew:      "नमस्ते, %s! मैं आपकी फसलों की बुवाई के सबसे अच्छे महीने बताता हूँ। /calendar wheat आज़माएँ या /help देखें।",
		MsgWelcomeBack:     "फिर से स्वागत है, %s! /help से सभी कमांड देखें।",
		MsgAccountInactive: "आपका खाता निष्क्रिय है। कृपया व्यवस्थापक से संपर्क करें।",
		MsgNotRegistered:   "कृपया पहले /start भेजें।",
		MsgHelp: "/calendar <फसल> [क्षेत्र] [मौसम] - फसल का बुवाई कैलेंडर\n" +
			"/status <फसल> - क्या अभी बुवाई का सही समय है?\n" +
			"/sowed <window_id> [YYYY-MM-DD] - बुवाई को लॉगबुक में दर्ज करें\n" +
			"/logbook - आपकी पिछली बुवाई\n" +
			"/reminders - जिन फसलों के लिए आपको मासिक अनुस्मारक मिलते हैं\n" +
			"/region <नाम> - अपना क्षेत्र चुनें\n" +
			"/lang <en|hi> - भाषा बदलें\n" +
			"/help - यह संदेश\n\n" +
			"कई शब्दों वाले नाम अंडरस्कोर से लिखें, जैसे /calendar pearl_millet uttar_pradesh। " +
			"बुवाई का समय शुरू होने पर याद दिलाने के लिए कैलेंडर के नीचे 🔔 दबाएँ।",
		MsgNoData:            "\"%s\" के लिए कोई बुवाई कैलेंडर नहीं मिला।",
		MsgCalendarUsage:     "उपयोग: /calendar <फसल> [क्षेत्र] [मौसम]\nउदाहरण: /calendar pearl_millet uttar_pradesh",
		MsgStatusUsage:       "उपयोग: /status <फसल>",
		MsgSowedUsage:        "उपयोग: /sowed <window_id> [YYYY-MM-DD]",
		MsgSowedBadDate:      "तारीख 2026-11-12 जैसी होनी चाहिए।",
		MsgSowedLogged:       "दर्ज किया गया (संदर्भ %s): %s",
		MsgWindowNotFound:    "बुवाई विंडो #%d नहीं मिली।",
		MsgLogbookEmpty:      "आपकी लॉगबुक खाली है। बुवाई के बाद /sowed का उपयोग करें।",
		MsgLogbookTitle:      "आपकी पिछली बुवाई:",
		MsgLangUsage:         "उपयोग: /lang <en|hi>",
		MsgLangSet:           "भाषा हिंदी कर दी गई है।",
		MsgRegionUsage:       "उपयोग: /region <नाम>",
		MsgRegionSet:         "आपका क्षेत्र %s कर दिया गया है।",
		MsgSubscribed:        "%s के लिए आपको हर महीने याद दिलाया जाएगा।",
		MsgUnsubscribed:      "%s के लिए अनुस्मारक बंद कर दिए गए हैं।",
		MsgBtnSubscribe:      "🔔 याद दिलाएँ",
		MsgBtnUnsubscribe:    "🔕 अनुस्मारक बंद करें",
		MsgGenericError:      "कुछ गलत हो गया। कृपया बाद में प्रयास करें।",
		MsgReminderEarly:     "🌱 %s: बुवाई का समय (%s) अगले महीने शुरू होगा। बीज और खेत तैयार रखें।",
		MsgReminderOpen:      "🌾 %s: बुवाई का समय (%s) अभी चल रहा है। बुवाई के बाद /sowed %d से दर्ज करें।",
		MsgUnknownAction:     "अज्ञात क्रिया।",
		MsgSubscriptionsNone: "अभी कोई अनुस्मारक नहीं है। कैलेंडर के नीचे 🔔 बटन दबाएँ।",
	},
}

// Text renders a catalog message in loc, falling back to English.
func Text(loc sowing.Locale, key MessageKey, args ...any) string {
	format, ok := catalog[loc][key]
	if !ok {
		format, ok = catalog[sowing.LocaleEnglish][key]
		if !ok {
			return string(key)
		}
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// StateText is the localized label for a window status.
func StateText(loc sowing.Locale, st sowing.State) string {
	switch st {
	case sowing.StateOnTime:
		return Text(loc, MsgStateOnTime)
	case sowing.StateEarly:
		return Text(loc, MsgStateEarly)
	default:
		return Text(loc, MsgStateLate)
	}
}
