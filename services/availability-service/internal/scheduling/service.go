package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type PreferenceProvider interface {
	GetPreferences(ctx context.Context, userID string) (model.Preference, bool, error)
}

type EventProvider interface {
	ListEvents(ctx context.Context, userID string, start, end time.Time) ([]model.Event, error)
}

type Request struct {
	UserID      string
	StartDate   civil.Date
	EndDate     civil.Date
	Timezone    *time.Location // receiver zone; nil means UTC
	WindowStart *civil.Time
	WindowEnd   *civil.Time
}

type Service struct {
	prefs  PreferenceProvider
	events EventProvider
	logger *slog.Logger
	tracer trace.Tracer
}

func NewService(prefs PreferenceProvider, events EventProvider, logger *slog.Logger) *Service {
	return &Service{
		prefs:  prefs,
		events: events,
		logger: logger,
		tracer: otel.Tracer("availability"),
	}
}

// GenerateAvailability loads the user's preferences and busy events and returns the
// free slots for the request. On error no slots are returned.
func (s *Service) GenerateAvailability(ctx context.Context, req Request) ([]availability.Interval, error) {
	receiver := req.Timezone
	if receiver == nil {
		receiver = time.UTC
	}
	ctx, span := s.tracer.Start(ctx, "availability.generate",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID),
			attribute.String("scan.start_date", req.StartDate.String()),
			attribute.String("scan.end_date", req.EndDate.String()),
			attribute.String("scan.timezone", receiver.String()),
		),
	)
	defer span.End()

	pref, err := s.loadPreferences(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load preferences")
		return nil, err
	}
	pref = pref.WithDefaults()
	owner := s.ownerLocation(ctx, span, pref)

	fetchStart := req.StartDate.In(owner).UTC()
	fetchEnd := req.EndDate.AddDays(1).In(owner).UTC()
	events, err := s.loadEvents(ctx, req.UserID, fetchStart, fetchEnd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load events")
		return nil, err
	}

	busy := make([]availability.Interval, 0, len(events))
	for _, ev := range events {
		busy = append(busy, availability.Interval{Start: ev.StartTime, End: ev.EndTime})
	}

	_, aggSpan := s.tracer.Start(ctx, "availability.aggregate")
	slots := availability.Aggregate(availability.Request{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Hours: availability.WorkHours{
			Start:    pref.WorkHoursStart,
			End:      pref.WorkHoursEnd,
			Location: owner,
		},
		WorkDays:     pref.WorkDays,
		SlotDuration: pref.SlotDuration,
		Buffer:       pref.BufferBetweenMeetings,
		Busy:         busy,
		Receiver:     receiver,
		WindowStart:  req.WindowStart,
		WindowEnd:    req.WindowEnd,
	})
	aggSpan.SetAttributes(attribute.Int("slots.count", len(slots)), attribute.Int("busy.count", len(busy)))
	aggSpan.End()

	return slots, nil
}

func (s *Service) loadPreferences(ctx context.Context, userID string) (model.Preference, error) {
	ctx, span := s.tracer.Start(ctx, "availability.preferences")
	defer span.End()

	pref, ok, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return model.Preference{}, fmt.Errorf("%w: %w", ErrPreferencesUnavailable, err)
	}
	if !ok {
		return model.Preference{}, ErrPreferencesNotFound
	}
	return pref, nil
}

func (s *Service) loadEvents(ctx context.Context, userID string, start, end time.Time) ([]model.Event, error) {
	ctx, span := s.tracer.Start(ctx, "availability.events",
		trace.WithAttributes(
			attribute.String("range.start", start.Format(time.RFC3339)),
			attribute.String("range.end", end.Format(time.RFC3339)),
		),
	)
	defer span.End()

	events, err := s.events.ListEvents(ctx, userID, start, end)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrEventsUnavailable, err)
	}
	return events, nil
}

// ownerLocation resolves the stored preference zone. An unloadable zone falls back
// to UTC and is flagged on the span so shifted grids can be traced.
func (s *Service) ownerLocation(ctx context.Context, span trace.Span, pref model.Preference) *time.Location {
	loc, err := time.LoadLocation(pref.Timezone)
	if err != nil {
		s.logger.WarnContext(ctx, "invalid preference timezone; using UTC", "user_id", pref.UserID, "timezone", pref.Timezone, "err", err)
		span.SetAttributes(attribute.Bool("preference.timezone_fallback", true))
		span.AddEvent("preference timezone fallback", trace.WithAttributes(
			attribute.String("preference.timezone", pref.Timezone),
			attribute.String("error", err.Error()),
		))
		return time.UTC
	}
	span.SetAttributes(attribute.String("preference.timezone", loc.String()))
	return loc
}
