package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/freeslots/libs/db"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/model"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

// GetPreferences reads the user's row. NULL columns come back as zero values so the
// caller's defaults apply.
func (r *Repository) GetPreferences(ctx context.Context, userID string) (model.Preference, bool, error) {
	query, args, err := psql.
		Select(
			"user_id",
			"to_char(work_hours_start, 'HH24:MI')",
			"to_char(work_hours_end, 'HH24:MI')",
			"work_days",
			"slot_duration_minutes",
			"buffer_minutes",
			"timezone",
		).
		From("user_preferences").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return model.Preference{}, false, err
	}

	var (
		pref          model.Preference
		start, end    *string
		workDays      []int32
		slotMinutes   *int32
		bufferMinutes *int32
		timezone      *string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&pref.UserID,
		&start,
		&end,
		&workDays,
		&slotMinutes,
		&bufferMinutes,
		&timezone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Preference{}, false, nil
		}
		return model.Preference{}, false, err
	}

	if start != nil && end != nil {
		if pref.WorkHoursStart, err = model.ParseClock(*start); err != nil {
			return model.Preference{}, false, fmt.Errorf("work_hours_start: %w", err)
		}
		if pref.WorkHoursEnd, err = model.ParseClock(*end); err != nil {
			return model.Preference{}, false, fmt.Errorf("work_hours_end: %w", err)
		}
	}
	for _, d := range workDays {
		pref.WorkDays = append(pref.WorkDays, int(d))
	}
	if slotMinutes != nil {
		pref.SlotDuration = time.Duration(*slotMinutes) * time.Minute
	}
	if bufferMinutes != nil {
		pref.BufferBetweenMeetings = time.Duration(*bufferMinutes) * time.Minute
	}
	if timezone != nil {
		pref.Timezone = *timezone
	}
	return pref, true, nil
}
