package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/logger"
)

// lastActiveToucher is the slice of the users service the tracker needs.
type lastActiveToucher interface {
	TouchLastActive(ctx context.Context, userID uuid.UUID) error
}

// TrackActivity stamps last_active for the authenticated user. The touch is
// best effort; a failure never blocks the request.
func TrackActivity(users lastActiveToucher, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if users != nil {
				if userID, err := uuid.Parse(UserIDFromContext(r.Context())); err == nil {
					if touchErr := users.TouchLastActive(r.Context(), userID); touchErr != nil && logg != nil {
						logg.Warn(r.Context(), "failed to touch last_active")
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
