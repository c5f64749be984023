package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kamikazebr/iskra-desktop/internal/server/services"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

type AIHandler struct {
	authService  *services.AuthService
	usageService *services.UsageService
	aiService    *services.AIService
	metrics      *services.Metrics
}

func NewAIHandler(authService *services.AuthService, usageService *services.UsageService, aiService *services.AIService, metrics *services.Metrics) *AIHandler {
	return &AIHandler{
		authService:  authService,
		usageService: usageService,
		aiService:    aiService,
		metrics:      metrics,
	}
}

func (h *AIHandler) Models(w http.ResponseWriter, r *http.Request) {
	names, err := h.aiService.Models(chi.URLParam(r, "provider"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, models.ModelsResponse{Models: names})
}

// admit validates the request and counts it against the caller's quota.
func (h *AIHandler) admit(w http.ResponseWriter, r *http.Request, provider string) (*models.CompletionRequest, bool) {
	if _, err := h.aiService.Models(provider); err != nil {
		respondServiceError(w, err)
		return nil, false
	}

	var req models.CompletionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	claims := GetUserClaims(r)
	account, err := h.authService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}

	if _, err := h.usageService.Consume(r.Context(), account); err != nil {
		h.metrics.AIRequests.WithLabelValues(provider, "quota_exceeded").Inc()
		respondServiceError(w, err)
		return nil, false
	}

	h.metrics.AIRequests.WithLabelValues(provider, "ok").Inc()
	return &req, true
}

func (h *AIHandler) Complete(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	req, ok := h.admit(w, r, provider)
	if !ok {
		return
	}

	resp, err := h.aiService.Complete(provider, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Stream writes server-sent events terminated by "data: [DONE]".
func (h *AIHandler) Stream(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	req, ok := h.admit(w, r, provider)
	if !ok {
		return
	}

	chunks, err := h.aiService.StreamChunks(provider, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for _, chunk := range chunks {
		if r.Context().Err() != nil {
			return
		}
		data, err := json.Marshal(chunk)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}
