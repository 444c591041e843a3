// Package reveal holds the pure evaluators behind the gift reveal
// schedule: unlock state, secrecy, the countdown and the word-of-day.
// Everything here is a function of its arguments; callers inject time.
package reveal

import (
	"time"
)

// Unlocked reports whether content gated on openDate is visible at now.
// The boundary is inclusive: the exact instant of openDate counts as
// unlocked. An openDate in the past unlocks immediately.
func Unlocked(openDate, now time.Time) bool {
	return !now.Before(openDate)
}
