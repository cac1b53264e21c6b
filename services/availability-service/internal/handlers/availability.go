package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/md-rashed-zaman/freeslots/libs/auth"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/model"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/publish"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/scheduling"
)

type Generator interface {
	GenerateAvailability(ctx context.Context, req scheduling.Request) ([]availability.Interval, error)
}

type Config struct {
	MaxScanDays    int
	PublishTimeout time.Duration
}

type AvailabilityHandler struct {
	svc            Generator
	pub            publish.Publisher
	logger         *slog.Logger
	validate       *validator.Validate
	maxScanDays    int
	publishTimeout time.Duration
}

func NewAvailabilityHandler(svc Generator, pub publish.Publisher, logger *slog.Logger, cfg Config) *AvailabilityHandler {
	if cfg.MaxScanDays <= 0 {
		cfg.MaxScanDays = 31
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	if pub == nil {
		pub = publish.Noop{}
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return &AvailabilityHandler{
		svc:            svc,
		pub:            pub,
		logger:         logger,
		validate:       v,
		maxScanDays:    cfg.MaxScanDays,
		publishTimeout: cfg.PublishTimeout,
	}
}

type availabilityQuery struct {
	UserID      string `query:"user_id" validate:"required,max=128"`
	StartDate   string `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `query:"end_date" validate:"required,datetime=2006-01-02"`
	Timezone    string `query:"timezone" validate:"required,timezone"`
	WindowStart string `query:"window_start" validate:"omitempty,datetime=15:04"`
	WindowEnd   string `query:"window_end" validate:"omitempty,datetime=15:04"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Get serves GET /api/v1/availability.
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := availabilityQuery{
		UserID:      strings.TrimSpace(r.Header.Get(auth.HeaderUserID)),
		StartDate:   strings.TrimSpace(q.Get("start_date")),
		EndDate:     strings.TrimSpace(q.Get("end_date")),
		Timezone:    strings.TrimSpace(q.Get("timezone")),
		WindowStart: strings.TrimSpace(q.Get("window_start")),
		WindowEnd:   strings.TrimSpace(q.Get("window_end")),
	}
	if query.UserID == "" {
		query.UserID = strings.TrimSpace(q.Get("user_id"))
	}

	req, err := h.parseQuery(query)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	slots, err := h.svc.GenerateAvailability(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, req.UserID, err)
		return
	}

	views := availability.Views(slots)
	h.publishAsync(r.Context(), publish.SlotsGenerated{
		UserID:      req.UserID,
		StartDate:   query.StartDate,
		EndDate:     query.EndDate,
		Timezone:    query.Timezone,
		Slots:       views,
		GeneratedAt: time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, views)
}

func (h *AvailabilityHandler) parseQuery(query availabilityQuery) (scheduling.Request, error) {
	if err := h.validate.Struct(query); err != nil {
		return scheduling.Request{}, validationError(err)
	}

	// Formats were checked by the validator above.
	start, _ := civil.ParseDate(query.StartDate)
	end, _ := civil.ParseDate(query.EndDate)
	if end.Before(start) {
		return scheduling.Request{}, errors.New("end_date must not be before start_date")
	}
	if days := end.DaysSince(start) + 1; days > h.maxScanDays {
		return scheduling.Request{}, fmt.Errorf("scan range is %d days; at most %d allowed", days, h.maxScanDays)
	}
	loc, err := time.LoadLocation(query.Timezone)
	if err != nil {
		return scheduling.Request{}, errors.New("timezone is invalid")
	}

	req := scheduling.Request{
		UserID:    query.UserID,
		StartDate: start,
		EndDate:   end,
		Timezone:  loc,
	}
	if query.WindowStart != "" {
		ws, err := model.ParseClock(query.WindowStart)
		if err != nil {
			return scheduling.Request{}, err
		}
		req.WindowStart = &ws
	}
	if query.WindowEnd != "" {
		we, err := model.ParseClock(query.WindowEnd)
		if err != nil {
			return scheduling.Request{}, err
		}
		req.WindowEnd = &we
	}
	return req, nil
}

func (h *AvailabilityHandler) writeServiceError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	switch {
	case errors.Is(err, scheduling.ErrPreferencesNotFound):
		WriteError(w, http.StatusNotFound, "preferences_not_found", "working hours have not been configured")
	case errors.Is(err, scheduling.ErrPreferencesUnavailable):
		h.logger.ErrorContext(r.Context(), "preferences fetch failed", "user_id", userID, "err", err)
		WriteError(w, http.StatusServiceUnavailable, "preferences_unavailable", "")
	case errors.Is(err, scheduling.ErrEventsUnavailable):
		h.logger.ErrorContext(r.Context(), "events fetch failed", "user_id", userID, "err", err)
		WriteError(w, http.StatusServiceUnavailable, "events_unavailable", "")
	default:
		h.logger.ErrorContext(r.Context(), "availability failed", "user_id", userID, "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// publishAsync emits the result without holding up the response. The request's
// trace context is kept but its cancellation is not.
func (h *AvailabilityHandler) publishAsync(ctx context.Context, evt publish.SlotsGenerated) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, h.publishTimeout)
		defer cancel()
		if err := h.pub.PublishSlots(ctx, evt); err != nil {
			h.logger.Warn("slot publish failed", "user_id", evt.UserID, "err", err)
		}
	}()
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "datetime":
			msgs = append(msgs, fe.Field()+" must match "+layoutHint(fe.Param()))
		case "timezone":
			msgs = append(msgs, fe.Field()+" must be an IANA time zone")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return errors.New(strings.Join(msgs, ", "))
}

func layoutHint(layout string) string {
	switch layout {
	case "2006-01-02":
		return "YYYY-MM-DD"
	case "15:04":
		return "HH:MM"
	default:
		return layout
	}
}

// WriteError writes the service's JSON error body. An empty message is omitted.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
