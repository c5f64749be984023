package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/internal/server/storage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// BillingService simulates a hosted checkout. A payment stays pending until
// its confirmation page is visited with action=succeed or action=cancel.
type BillingService struct {
	paymentRepo *storage.PaymentRepository
	userRepo    *storage.UserRepository
	metrics     *Metrics
	log         logrus.FieldLogger
}

func NewBillingService(paymentRepo *storage.PaymentRepository, userRepo *storage.UserRepository, metrics *Metrics, log logrus.FieldLogger) *BillingService {
	return &BillingService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		metrics:     metrics,
		log:         log.WithField("component", "billing"),
	}
}

// Create registers a pending payment. publicURL is the origin the checkout
// page is served from.
func (s *BillingService) Create(ctx context.Context, userID int64, tier models.Tier, returnURL, publicURL string) (*models.PaymentResponse, error) {
	amount, ok := models.TierPrices[tier]
	if !ok {
		return nil, ErrInvalidTier
	}

	p := &models.PaymentRecord{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Tier:      tier,
		Amount:    amount,
		ReturnURL: returnURL,
		Status:    models.PaymentPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.metrics.Payments.WithLabelValues(string(models.PaymentPending)).Inc()
	s.log.WithFields(logrus.Fields{"payment_id": p.ID, "user_id": userID, "tier": tier}).Info("Payment created")

	return &models.PaymentResponse{
		PaymentID:       p.ID,
		ConfirmationURL: strings.TrimRight(publicURL, "/") + "/billing/pay/" + p.ID,
		Amount:          amount,
	}, nil
}

// Status reports a payment owned by userID.
func (s *BillingService) Status(ctx context.Context, userID int64, id string) (*models.PaymentStatus, error) {
	p, err := s.paymentRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil || p.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return &models.PaymentStatus{Status: p.Status, Paid: p.Paid}, nil
}

// Get returns a payment regardless of owner, for the checkout page.
func (s *BillingService) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	p, err := s.paymentRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// Settle completes or cancels a pending payment. A successful payment
// upgrades the owner's tier. Settling twice is a no-op.
func (s *BillingService) Settle(ctx context.Context, id string, succeed bool) (*models.PaymentRecord, error) {
	status, paid := models.PaymentCanceled, false
	if succeed {
		status, paid = models.PaymentSucceeded, true
	}

	now := time.Now().UTC()
	p, changed, err := s.paymentRepo.Settle(ctx, id, status, paid, func(p *models.PaymentRecord) {
		p.SettledAt = &now
	})
	if err != nil {
		if errors.Is(err, storage.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if !changed {
		return p, nil
	}

	s.metrics.Payments.WithLabelValues(string(status)).Inc()
	log := s.log.WithFields(logrus.Fields{"payment_id": id, "status": status})

	if paid {
		if err := s.userRepo.UpdateTier(ctx, p.UserID, p.Tier); err != nil {
			return nil, fmt.Errorf("failed to upgrade tier: %w", err)
		}
		log = log.WithField("tier", p.Tier)
	}
	log.Info("Payment settled")
	return p, nil
}
