package api

import (
	"net/http"

	"github.com/kamikazebr/iskra-desktop/internal/server/services"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

type AuthHandler struct {
	authService  *services.AuthService
	usageService *services.UsageService
}

func NewAuthHandler(authService *services.AuthService, usageService *services.UsageService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		usageService: usageService,
	}
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req models.SendCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.SendCode(r.Context(), req.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.MessageResponse{
		Message: "Verification code sent",
		Email:   req.Email,
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.MessageResponse{
		Message: "Email verified",
		Email:   req.Email,
	})
}

func (h *AuthHandler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.CompleteRegistration(r.Context(), req.Email, req.Password, req.DeviceID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req models.SendCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResendCode(r.Context(), req.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Verification code sent"})
}

// Me returns the profile with today's usage, both in the user object and as
// a separate usage block.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r)
	if claims == nil {
		respondErrorJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.authService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	usage, err := h.usageService.Snapshot(r.Context(), account)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	user := account.User
	user.RequestsUsed = models.IntPtr(usage.RequestsToday)
	user.RequestsTotal = models.IntPtr(usage.Limit)

	respondJSON(w, http.StatusOK, models.MeResponse{User: &user, Usage: &usage})
}
