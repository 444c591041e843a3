package reveal

import (
	"time"
)

// SameCalendarDay reports whether a and b fall on the same year, month
// and day in loc.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// WordForDate picks the word of the day. The birthday string overrides
// everything when current calendar-matches birthday in loc. Otherwise the
// table cycles with period cycleLength from startDate; days before the
// start clamp to index 0, and an index past the end of a short table
// falls back to 0 rather than panicking.
func WordForDate(startDate time.Time, cycleLength int, current time.Time, words []string, birthday time.Time, birthdayWord string, loc *time.Location) string {
	if SameCalendarDay(current, birthday, loc) {
		return birthdayWord
	}

	if len(words) == 0 {
		return ""
	}

	if cycleLength <= 0 {
		cycleLength = len(words)
	}

	start := DayStart(startDate, loc)
	day := DayStart(current, loc)
	daysSinceStart := int(day.Sub(start) / (24 * time.Hour))

	idx := 0
	if daysSinceStart > 0 {
		idx = daysSinceStart % cycleLength
	}
	if idx >= len(words) {
		idx = 0
	}

	return words[idx]
}
