package reveal

import (
	"time"
)

// Remaining is the time left until a target, split into display units.
// All components are non-negative; once the target passes they are all
// zero simultaneously.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

func (r Remaining) IsZero() bool {
	return r.Days == 0 && r.Hours == 0 && r.Minutes == 0 && r.Seconds == 0
}

// DayStart returns the start of t's calendar day in loc. The countdown
// target is interpreted this way in the fixed configured zone, so the
// reveal instant is the same for every viewer.
func DayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// TimeRemaining computes the countdown from now to target. It is
// recomputed from the absolute difference on every call; never decrement
// a previous result, timer scheduling jitter accumulates.
func TimeRemaining(now, target time.Time) Remaining {
	d := target.Sub(now)
	if d <= 0 {
		return Remaining{}
	}

	return Remaining{
		Days:    int(d / (24 * time.Hour)),
		Hours:   int(d % (24 * time.Hour) / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
		Seconds: int(d % time.Minute / time.Second),
	}
}
