package model

import (
	"time"

	"cloud.google.com/go/civil"
)

// Preference is a user's working-hours configuration. Zero fields mean "not set";
// WithDefaults fills them in.
type Preference struct {
	UserID                string
	WorkHoursStart        civil.Time
	WorkHoursEnd          civil.Time
	WorkDays              []int // ISO weekdays, 1=Monday .. 7=Sunday
	SlotDuration          time.Duration
	BufferBetweenMeetings time.Duration
	Timezone              string
}

var (
	DefaultWorkHoursStart = civil.Time{Hour: 9}
	DefaultWorkHoursEnd   = civil.Time{Hour: 17}
	DefaultWorkDays       = []int{1, 2, 3, 4, 5}
)

const (
	DefaultSlotDuration = 30 * time.Minute
	DefaultTimezone     = "UTC"
)

// WithDefaults returns a copy with absent fields replaced by the defaults.
// Work hours are treated as a pair: if either end is unset both fall back.
func (p Preference) WithDefaults() Preference {
	var midnight civil.Time
	unset := p.WorkHoursStart == midnight && p.WorkHoursEnd == midnight
	if unset || !p.WorkHoursStart.IsValid() || !p.WorkHoursEnd.IsValid() {
		p.WorkHoursStart = DefaultWorkHoursStart
		p.WorkHoursEnd = DefaultWorkHoursEnd
	}
	if len(p.WorkDays) == 0 {
		p.WorkDays = append([]int(nil), DefaultWorkDays...)
	}
	if p.SlotDuration <= 0 {
		p.SlotDuration = DefaultSlotDuration
	}
	if p.BufferBetweenMeetings < 0 {
		p.BufferBetweenMeetings = 0
	}
	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	return p
}
