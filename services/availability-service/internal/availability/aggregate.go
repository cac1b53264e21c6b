package availability

import (
	"time"

	"cloud.google.com/go/civil"
)

// Request is everything Aggregate needs for one scan.
type Request struct {
	StartDate    civil.Date
	EndDate      civil.Date
	Hours        WorkHours
	WorkDays     []int // ISO weekdays, 1=Monday .. 7=Sunday
	SlotDuration time.Duration
	Buffer       time.Duration
	Busy         []Interval
	Receiver     *time.Location
	WindowStart  *civil.Time
	WindowEnd    *civil.Time
}

// Aggregate walks StartDate..EndDate inclusive in the receiver's calendar, skips
// non-working weekdays, and concatenates each day's slots in date order with exact
// duplicates removed. The result is never nil.
func Aggregate(req Request) []Interval {
	receiver := locationOrUTC(req.Receiver)
	busy := make([]Interval, 0, len(req.Busy))
	for _, b := range req.Busy {
		busy = append(busy, b.In(receiver))
	}

	workDays := make(map[int]struct{}, len(req.WorkDays))
	for _, d := range req.WorkDays {
		workDays[d] = struct{}{}
	}

	clip := Clip{WindowStart: req.WindowStart, WindowEnd: req.WindowEnd, Receiver: receiver}
	slots := make([]Interval, 0)
	for date := req.StartDate; !date.After(req.EndDate); date = date.AddDays(1) {
		if _, ok := workDays[ISOWeekday(date)]; !ok {
			continue
		}
		dayStart, dayEnd := ResolveWorkWindow(date, req.Hours, date == req.StartDate, date == req.EndDate, clip)
		slots = append(slots, DailySlots(dayStart, dayEnd, req.SlotDuration, req.Buffer, busy, receiver)...)
	}
	return dedupe(slots)
}

// ISOWeekday maps date to 1=Monday .. 7=Sunday.
func ISOWeekday(date civil.Date) int {
	wd := int(date.In(time.UTC).Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func dedupe(slots []Interval) []Interval {
	type key struct{ start, end int64 }
	seen := make(map[key]struct{}, len(slots))
	out := slots[:0]
	for _, s := range slots {
		k := key{s.Start.UnixNano(), s.End.UnixNano()}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
