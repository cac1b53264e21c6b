package availability

import "time"

// DailySlots packs fixed-width slots into [dayStart, dayEnd) on a fixed grid: the
// cursor always advances by slotDuration+buffer, whether or not the candidate was
// blocked. Busy intervals are expected in the receiver's zone; returned slots are UTC.
func DailySlots(dayStart, dayEnd time.Time, slotDuration, buffer time.Duration, busy []Interval, receiver *time.Location) []Interval {
	if slotDuration <= 0 || !dayEnd.After(dayStart) {
		return nil
	}
	if buffer < 0 {
		buffer = 0
	}
	receiver = locationOrUTC(receiver)

	var slots []Interval
	for cursor := dayStart; !cursor.Add(slotDuration).After(dayEnd); cursor = cursor.Add(slotDuration + buffer) {
		candidate := Interval{Start: cursor, End: cursor.Add(slotDuration)}.In(receiver)
		if !overlapsAny(candidate.Start, candidate.End, busy) {
			slots = append(slots, candidate.UTC())
		}
	}
	return slots
}
