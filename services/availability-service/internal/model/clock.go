package model

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// ParseClock parses a 24h "HH:MM" time of day.
func ParseClock(s string) (civil.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return civil.Time{}, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	return civil.TimeOf(t), nil
}

func FormatClock(t civil.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
