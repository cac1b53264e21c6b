package preferences

import (
	"context"

	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/model"
)

// Provider returns a user's stored preference. ok is false when the user has none.
type Provider interface {
	GetPreferences(ctx context.Context, userID string) (pref model.Preference, ok bool, err error)
}
