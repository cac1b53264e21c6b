package availability

import (
	"time"

	"cloud.google.com/go/civil"
)

// WorkHours is the daily working range of the calendar owner, in their own zone.
type WorkHours struct {
	Start    civil.Time
	End      civil.Time
	Location *time.Location
}

// Clip carries optional time-of-day bounds, in the receiver's zone, for the first
// and last scanned day.
type Clip struct {
	WindowStart *civil.Time
	WindowEnd   *civil.Time
	Receiver    *time.Location
}

// ResolveWorkWindow returns the work window for date. The clip bounds only ever
// narrow the window: a first-day start earlier than the work start, or a last-day
// end later than the work end, is ignored. dayStart >= dayEnd is a valid result.
func ResolveWorkWindow(date civil.Date, hours WorkHours, isFirstDay, isLastDay bool, clip Clip) (dayStart, dayEnd time.Time) {
	loc := locationOrUTC(hours.Location)
	dayStart = civil.DateTime{Date: date, Time: hours.Start}.In(loc)
	dayEnd = civil.DateTime{Date: date, Time: hours.End}.In(loc)

	receiver := locationOrUTC(clip.Receiver)
	if isFirstDay && clip.WindowStart != nil {
		ws := civil.DateTime{Date: date, Time: *clip.WindowStart}.In(receiver).In(loc)
		if ws.After(dayStart) {
			dayStart = ws
		}
	}
	if isLastDay && clip.WindowEnd != nil {
		we := civil.DateTime{Date: date, Time: *clip.WindowEnd}.In(receiver).In(loc)
		if we.Before(dayEnd) {
			dayEnd = we
		}
	}
	return dayStart, dayEnd
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
