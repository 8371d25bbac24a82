package sowing

import (
	"errors"
	"fmt"
)

// ErrInvalidMonthIndex is returned when a month argument falls outside [1, 12].
var ErrInvalidMonthIndex = errors.New("invalid month index")

// Month is a calendar month index, January = 1.
type Month int

const (
	January Month = 1 + iota
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// MonthsInYear is the length of every Timeline.
const MonthsInYear = 12

func (m Month) Valid() bool {
	return January <= m && m <= December
}

func (m Month) String() string {
	name, err := MonthNameOf(m, LocaleEnglish)
	if err != nil {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return name
}

// Before returns the previous month on the 1..12 cycle (January wraps to December).
func (m Month) Before() Month {
	return Month((int(m)-2+MonthsInYear)%MonthsInYear + 1)
}

// After returns the next month on the 1..12 cycle (December wraps to January).
func (m Month) After() Month {
	return Month(int(m)%MonthsInYear + 1)
}

func validateMonth(m Month, arg string) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %s=%d", ErrInvalidMonthIndex, arg, int(m))
	}
	return nil
}
