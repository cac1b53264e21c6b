package scheduling

import "errors"

var (
	// ErrPreferencesUnavailable means the preference store could not be reached.
	ErrPreferencesUnavailable = errors.New("preferences unavailable")
	// ErrPreferencesNotFound means the user has never saved working hours.
	ErrPreferencesNotFound = errors.New("preferences not found")
	// ErrEventsUnavailable means busy events could not be loaded.
	ErrEventsUnavailable = errors.New("events unavailable")
)
