package sowing

import "fmt"

// Tier is the desirability of sowing in a given month.
type Tier string

const (
	TierIdeal          Tier = "IDEAL"
	TierPossible       Tier = "POSSIBLE"
	TierNotRecommended Tier = "NOT_RECOMMENDED"
)

// Rank orders tiers by desirability: Ideal > Possible > NotRecommended.
func (t Tier) Rank() int {
	switch t {
	case TierIdeal:
		return 2
	case TierPossible:
		return 1
	default:
		return 0
	}
}

// Qualifier tells whether a Possible month precedes or follows the ideal span.
type Qualifier string

const (
	QualifierNone  Qualifier = ""
	QualifierEarly Qualifier = "EARLY"
	QualifierLate  Qualifier = "LATE"
)

// MonthClassification is one cell of a Timeline.
type MonthClassification struct {
	Month     Month
	Tier      Tier
	Qualifier Qualifier
}

// Timeline holds one classification per month, January first.
type Timeline []MonthClassification

// ClassifyTimeline assigns a tier to every month of the year relative to w.
// Months inside the span are Ideal, the month right before the start is
// Possible/Early, the month right after the end is Possible/Late, and the rest
// are NotRecommended. The checks run in that order, so Ideal beats both
// Possible cases and Early beats Late when the two coincide.
func ClassifyTimeline(w Window) (Timeline, error) {
	if err := validateMonth(w.StartMonth, "start"); err != nil {
		return nil, err
	}
	if err := validateMonth(w.EndMonth, "end"); err != nil {
		return nil, err
	}

	before := w.StartMonth.Before()
	after := w.EndMonth.After()

	tl := make(Timeline, 0, MonthsInYear)
	for m := January; m <= December; m++ {
		mc := MonthClassification{Month: m, Tier: TierNotRecommended, Qualifier: QualifierNone}
		switch {
		case w.Contains(m):
			mc.Tier = TierIdeal
		case m == before:
			mc.Tier = TierPossible
			mc.Qualifier = QualifierEarly
		case m == after:
			mc.Tier = TierPossible
			mc.Qualifier = QualifierLate
		}
		tl = append(tl, mc)
	}
	return tl, nil
}

// Lookup returns the entry for m.
func (tl Timeline) Lookup(m Month) (MonthClassification, bool) {
	for _, mc := range tl {
		if mc.Month == m {
			return mc, true
		}
	}
	return MonthClassification{}, false
}

// IdealMonths lists the Ideal months in calendar order.
func (tl Timeline) IdealMonths() []Month {
	var months []Month
	for _, mc := range tl {
		if mc.Tier == TierIdeal {
			months = append(months, mc.Month)
		}
	}
	return months
}

// Counts tallies months per tier.
func (tl Timeline) Counts() map[Tier]int {
	counts := map[Tier]int{TierIdeal: 0, TierPossible: 0, TierNotRecommended: 0}
	for _, mc := range tl {
		counts[mc.Tier]++
	}
	return counts
}

// State is the verdict for the reference month.
type State string

const (
	StateOnTime State = "ON_TIME"
	StateEarly  State = "EARLY"
	StateLate   State = "LATE"
)

// CurrentStatus is the state of a window at a reference month.
type CurrentStatus struct {
	State          State
	ReferenceMonth Month
}

// CurrentStatusOf maps the reference month's tier to a State. Every month that
// is neither Ideal nor Possible/Early counts as Late, NotRecommended included.
func CurrentStatusOf(tl Timeline, ref Month) (CurrentStatus, error) {
	if err := validateMonth(ref, "reference"); err != nil {
		return CurrentStatus{}, err
	}
	mc, ok := tl.Lookup(ref)
	if !ok {
		return CurrentStatus{}, fmt.Errorf("%w: reference=%d not in timeline", ErrInvalidMonthIndex, int(ref))
	}

	st := CurrentStatus{State: StateLate, ReferenceMonth: ref}
	switch {
	case mc.Tier == TierIdeal:
		st.State = StateOnTime
	case mc.Tier == TierPossible && mc.Qualifier == QualifierEarly:
		st.State = StateEarly
	}
	return st, nil
}
