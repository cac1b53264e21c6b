package model

import "time"

type Event struct {
	ID        string
	UserID    string
	Title     string
	StartTime time.Time
	EndTime   time.Time
}
