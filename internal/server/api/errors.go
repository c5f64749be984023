package api

import (
	"errors"
	"net/http"

	"github.com/kamikazebr/iskra-desktop/internal/server/services"
)

// respondServiceError maps service errors to status codes. Unknown errors
// are reported as 500 without detail.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserExists):
		respondErrorJSON(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoPendingRegistration),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrEmailNotVerified),
		errors.Is(err, services.ErrInvalidTier):
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserNotFound):
		respondErrorJSON(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUnknownProvider),
		errors.Is(err, services.ErrPaymentNotFound):
		respondErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrQuotaExceeded):
		respondErrorJSON(w, http.StatusTooManyRequests, err.Error())
	default:
		respondErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}
