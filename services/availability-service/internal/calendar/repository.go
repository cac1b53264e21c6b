package calendar

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
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

// ListEvents returns the user's events intersecting [start, end), ordered by start.
// Every event is treated as busy.
func (r *Repository) ListEvents(ctx context.Context, userID string, start, end time.Time) ([]model.Event, error) {
	query, args, err := psql.
		Select("id::text", "user_id", "COALESCE(title, '')", "start_time", "end_time").
		From("calendar_events").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Title, &ev.StartTime, &ev.EndTime); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
