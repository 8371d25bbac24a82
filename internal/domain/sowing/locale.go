package sowing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrMonthNotFound     = errors.New("month name not found")
	ErrUnsupportedLocale = errors.New("unsupported locale")
)

// Locale selects the language month names are rendered and parsed in.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleHindi   Locale = "hi"
)

// SupportedLocales lists locales in lookup order for ParseMonth.
var SupportedLocales = []Locale{LocaleEnglish, LocaleHindi}

type monthNames struct {
	long    [MonthsInYear]string
	short   [MonthsInYear]string
	aliases map[string]Month // extra accepted spellings
}

var localeTables = map[Locale]monthNames{
	LocaleEnglish: {
		long: [MonthsInYear]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		short: [MonthsInYear]string{
			"Jan", "Feb", "Mar", "Apr", "May", "Jun",
			"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
		},
		aliases: map[string]Month{"sept": September},
	},
	LocaleHindi: {
		long: [MonthsInYear]string{
			"जनवरी", "फ़रवरी", "मार्च", "अप्रैल", "मई", "जून",
			"जुलाई", "अगस्त", "सितंबर", "अक्टूबर", "नवंबर", "दिसंबर",
		},
		short: [MonthsInYear]string{
			"जन", "फ़र", "मार्च", "अप्रै", "मई", "जून",
			"जुला", "अग", "सितं", "अक्टू", "नवं", "दिसं",
		},
		aliases: map[string]Month{
			"फरवरी":   February,
			"सितम्बर": September,
			"अक्तूबर": October,
			"नवम्बर":  November,
			"दिसम्बर": December,
		},
	},
}

// monthIndex maps normalized names to months, per locale.
var monthIndex = buildMonthIndex()

func buildMonthIndex() map[Locale]map[string]Month {
	idx := make(map[Locale]map[string]Month, len(localeTables))
	for loc, t := range localeTables {
		byName := make(map[string]Month, 2*MonthsInYear+len(t.aliases))
		for i := 0; i < MonthsInYear; i++ {
			byName[normalizeName(t.long[i])] = Month(i + 1)
			byName[normalizeName(t.short[i])] = Month(i + 1)
		}
		for alias, m := range t.aliases {
			byName[normalizeName(alias)] = m
		}
		idx[loc] = byName
	}
	return idx
}

// normalizeName folds case and composes Unicode so that "FEB", "feb" and the
// two encodings of nukta letters in Devanagari compare equal.
func normalizeName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// MonthIndexOf resolves a full or short month name in loc.
func MonthIndexOf(name string, loc Locale) (Month, error) {
	byName, ok := monthIndex[loc]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedLocale, loc)
	}
	m, ok := byName[normalizeName(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q (%s)", ErrMonthNotFound, name, loc)
	}
	return m, nil
}

// MonthNameOf returns the full display name of m in loc.
func MonthNameOf(m Month, loc Locale) (string, error) {
	t, err := tableFor(m, loc)
	if err != nil {
		return "", err
	}
	return t.long[m-1], nil
}

// ShortMonthNameOf returns the abbreviated display name of m in loc.
func ShortMonthNameOf(m Month, loc Locale) (string, error) {
	t, err := tableFor(m, loc)
	if err != nil {
		return "", err
	}
	return t.short[m-1], nil
}

func tableFor(m Month, loc Locale) (monthNames, error) {
	if err := validateMonth(m, "month"); err != nil {
		return monthNames{}, err
	}
	t, ok := localeTables[loc]
	if !ok {
		return monthNames{}, fmt.Errorf("%w: %q", ErrUnsupportedLocale, loc)
	}
	return t, nil
}

// ParseMonth accepts a month number ("1".."12") or a name in any supported locale.
func ParseMonth(s string) (Month, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		m := Month(n)
		if err := validateMonth(m, "month"); err != nil {
			return 0, err
		}
		return m, nil
	}
	for _, loc := range SupportedLocales {
		if m, err := MonthIndexOf(s, loc); err == nil {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMonthNotFound, s)
}

// ParseLocale validates a locale code such as "en" or "hi".
func ParseLocale(code string) (Locale, error) {
	loc := Locale(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := localeTables[loc]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLocale, code)
	}
	return loc, nil
}

// MatchLocale maps a BCP 47 tag, as sent by Telegram clients, to a supported
// locale. ok is false for unknown or malformed tags.
func MatchLocale(code string) (Locale, bool) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	loc, err := ParseLocale(base.String())
	if err != nil {
		return "", false
	}
	return loc, true
}

// LocaleFromLanguageCode is MatchLocale falling back to English.
func LocaleFromLanguageCode(code string) Locale {
	if loc, ok := MatchLocale(code); ok {
		return loc
	}
	return LocaleEnglish
}
