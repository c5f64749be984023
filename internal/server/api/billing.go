package api

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/internal/server/services"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// CanceledReturnURL is where the checkout page sends the browser after a
// cancellation.
const CanceledReturnURL = "iskra://iskra-ai/payment-canceled"

type BillingHandler struct {
	billingService *services.BillingService
	publicURL      string
	log            logrus.FieldLogger
}

// NewBillingHandler creates the billing handler. An empty publicURL makes
// confirmation links use the request's Host.
func NewBillingHandler(billingService *services.BillingService, publicURL string, log logrus.FieldLogger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		publicURL:      strings.TrimRight(publicURL, "/"),
		log:            log,
	}
}

func (h *BillingHandler) origin(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	return "http://" + r.Host
}

func (h *BillingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r)
	if claims == nil {
		respondErrorJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.billingService.Create(r.Context(), claims.UserID, req.Tier, req.ReturnURL, h.origin(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *BillingHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r)
	if claims == nil {
		respondErrorJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.billingService.Status(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

var payPage = template.Must(template.New("pay").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Iskra checkout</title></head>
<body style="font-family: sans-serif; max-width: 28em; margin: 4em auto;">
<h1>Iskra {{.Tier}}</h1>
<p>Amount: {{printf "%.2f" .Amount}} RUB</p>
{{if eq .Status "pending"}}
<p><a href="?action=succeed">Pay</a> &middot; <a href="?action=cancel">Cancel</a></p>
{{else}}
<p>Payment {{.Status}}.</p>
{{end}}
</body>
</html>
`))

// Pay serves the hosted checkout page. With action=succeed or action=cancel it
// settles the payment and redirects to the client's return URL.
func (h *BillingHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var (
		p   *models.PaymentRecord
		err error
	)
	switch r.URL.Query().Get("action") {
	case "succeed":
		p, err = h.billingService.Settle(r.Context(), id, true)
	case "cancel":
		p, err = h.billingService.Settle(r.Context(), id, false)
	case "":
		p, err = h.billingService.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := payPage.Execute(w, p); err != nil {
			h.log.WithError(err).Warn("Failed to render checkout page")
		}
		return
	default:
		respondErrorJSON(w, http.StatusBadRequest, "action must be succeed or cancel")
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	target := CanceledReturnURL
	if p.Status == models.PaymentSucceeded {
		target = p.ReturnURL
	}
	if _, err := url.Parse(target); err != nil || target == "" {
		respondJSON(w, http.StatusOK, models.PaymentStatus{Status: p.Status, Paid: p.Paid})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
