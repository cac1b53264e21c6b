package availability

import "time"

// TimestampLayout is the wire format for slot boundaries: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) In(loc *time.Location) Interval {
	return Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
}

func (iv Interval) UTC() Interval {
	return iv.In(time.UTC)
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// View is the wire shape of a slot.
type View struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Views formats slots for output. The result is never nil, so it encodes as [] when empty.
func Views(slots []Interval) []View {
	out := make([]View, 0, len(slots))
	for _, s := range slots {
		out = append(out, View{StartDate: FormatTimestamp(s.Start), EndDate: FormatTimestamp(s.End)})
	}
	return out
}
