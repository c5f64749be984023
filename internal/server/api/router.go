package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/internal/server/services"
)

// Deps is everything the router needs.
type Deps struct {
	Auth      *services.AuthService
	Usage     *services.UsageService
	AI        *services.AIService
	Billing   *services.BillingService
	Metrics   *services.Metrics
	Log       logrus.FieldLogger
	PublicURL string
}

func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Auth, d.Usage)
	aiHandler := NewAIHandler(d.Auth, d.Usage, d.AI, d.Metrics)
	billingHandler := NewBillingHandler(d.Billing, d.PublicURL, d.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(d.Log, d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/send-code", authHandler.SendCode)
		r.Post("/verify-email", authHandler.VerifyEmail)
		r.Post("/complete-registration", authHandler.CompleteRegistration)
		r.Post("/login", authHandler.Login)
		r.Post("/resend-code", authHandler.ResendCode)

		r.With(AuthMiddleware(d.Auth)).Get("/me", authHandler.Me)
	})

	r.Get("/ai/models/{provider}", aiHandler.Models)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(d.Auth))

		r.Post("/ai/{provider}/complete", aiHandler.Complete)
		r.Post("/ai/{provider}/stream", aiHandler.Stream)

		r.Post("/billing/create", billingHandler.Create)
		r.Get("/billing/status/{id}", billingHandler.Status)
	})

	r.Get("/billing/pay/{id}", billingHandler.Pay)

	return r
}
