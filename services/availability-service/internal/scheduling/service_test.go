package scheduling

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/model"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakePrefs struct {
	pref  model.Preference
	found bool
	err   error
}

func (f *fakePrefs) GetPreferences(context.Context, string) (model.Preference, bool, error) {
	return f.pref, f.found, f.err
}

type fakeEvents struct {
	events     []model.Event
	err        error
	calls      int
	start, end time.Time
}

func (f *fakeEvents) ListEvents(_ context.Context, _ string, start, end time.Time) ([]model.Event, error) {
	f.calls++
	f.start, f.end = start, end
	return f.events, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func nyPreference() model.Preference {
	return model.Preference{
		UserID:                "u1",
		WorkHoursStart:        civil.Time{Hour: 9},
		WorkHoursEnd:          civil.Time{Hour: 17},
		WorkDays:              []int{1, 2, 3, 4, 5},
		SlotDuration:          30 * time.Minute,
		BufferBetweenMeetings: 15 * time.Minute,
		Timezone:              "America/New_York",
	}
}

var aug15 = civil.Date{Year: 2024, Month: time.August, Day: 15}

func TestGenerateAvailability(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	events := &fakeEvents{events: []model.Event{{
		ID:        "e1",
		UserID:    "u1",
		StartTime: time.Date(2024, 8, 15, 10, 0, 0, 0, la),
		EndTime:   time.Date(2024, 8, 15, 10, 30, 0, 0, la),
	}}}
	svc := NewService(&fakePrefs{pref: nyPreference(), found: true}, events, testLogger())

	slots, err := svc.GenerateAvailability(context.Background(), Request{
		UserID:    "u1",
		StartDate: aug15,
		EndDate:   aug15,
		Timezone:  la,
	})
	if err != nil {
		t.Fatalf("GenerateAvailability failed: %v", err)
	}
	if len(slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(slots))
	}

	// Fetch range covers the whole day in the owner's zone.
	if !events.start.Equal(time.Date(2024, 8, 15, 4, 0, 0, 0, time.UTC)) || !events.end.Equal(time.Date(2024, 8, 16, 4, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected fetch range %s - %s", events.start, events.end)
	}
	if events.start.Location() != time.UTC {
		t.Fatalf("fetch range not in UTC")
	}
}

func TestGenerateAvailabilityErrors(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name   string
		prefs  *fakePrefs
		events *fakeEvents
		want   error
		calls  int
	}{
		{name: "preferences store down", prefs: &fakePrefs{err: cause}, events: &fakeEvents{}, want: ErrPreferencesUnavailable},
		{name: "no preference record", prefs: &fakePrefs{}, events: &fakeEvents{}, want: ErrPreferencesNotFound},
		{name: "events store down", prefs: &fakePrefs{pref: nyPreference(), found: true}, events: &fakeEvents{err: cause}, want: ErrEventsUnavailable, calls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.prefs, tt.events, testLogger())
			slots, err := svc.GenerateAvailability(context.Background(), Request{UserID: "u1", StartDate: aug15, EndDate: aug15})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if slots != nil {
				t.Fatalf("expected no slots alongside an error, got %d", len(slots))
			}
			if tt.prefs.err != nil && !errors.Is(err, cause) {
				t.Fatalf("expected cause to be preserved, got %v", err)
			}
			if tt.events.calls != tt.calls {
				t.Fatalf("expected %d event fetches, got %d", tt.calls, tt.events.calls)
			}
		})
	}
}

func TestGenerateAvailabilityEmptyIsSuccess(t *testing.T) {
	svc := NewService(&fakePrefs{pref: nyPreference(), found: true}, &fakeEvents{}, testLogger())
	// 2024-08-17 is a Saturday.
	sat := civil.Date{Year: 2024, Month: time.August, Day: 17}
	slots, err := svc.GenerateAvailability(context.Background(), Request{UserID: "u1", StartDate: sat, EndDate: sat})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Fatalf("expected empty non-nil slots, got %v", slots)
	}
}

func TestGenerateAvailabilityInvalidTimezoneFallsBackToUTC(t *testing.T) {
	pref := nyPreference()
	pref.Timezone = "Mars/Olympus_Mons"
	pref.BufferBetweenMeetings = 0
	svc := NewService(&fakePrefs{pref: pref, found: true}, &fakeEvents{}, testLogger())
	recorder := tracetest.NewSpanRecorder()
	svc.tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	slots, err := svc.GenerateAvailability(context.Background(), Request{UserID: "u1", StartDate: aug15, EndDate: aug15})
	if err != nil {
		t.Fatalf("GenerateAvailability failed: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 09:00 UTC start, got %s", slots[0].Start)
	}

	var flagged, evented bool
	for _, sp := range recorder.Ended() {
		if sp.Name() != "availability.generate" {
			continue
		}
		for _, kv := range sp.Attributes() {
			if kv == attribute.Bool("preference.timezone_fallback", true) {
				flagged = true
			}
		}
		for _, ev := range sp.Events() {
			if ev.Name == "preference timezone fallback" {
				evented = true
			}
		}
	}
	if !flagged || !evented {
		t.Fatalf("expected timezone fallback recorded on span (attr=%v event=%v)", flagged, evented)
	}
}
