package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// currentUser resolves the authenticated caller from the request
// context into a full user record. Writes the error response and
// returns false when the caller cannot be resolved.
func currentUser(r *http.Request, userService service.UserService, logger *zap.Logger, w http.ResponseWriter) (*domain.User, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.Error("Invalid user ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	user, err := userService.GetUserByID(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to resolve authenticated user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	return user, true
}
