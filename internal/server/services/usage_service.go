package services

import (
	"context"
	"time"

	"github.com/kamikazebr/iskra-desktop/internal/server/storage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// UsageService enforces the per-tier daily quota.
type UsageService struct {
	usageRepo *storage.UsageRepository
	now       func() time.Time
}

func NewUsageService(usageRepo *storage.UsageRepository) *UsageService {
	return &UsageService{usageRepo: usageRepo, now: time.Now}
}

// Snapshot reports today's usage for account.
func (s *UsageService) Snapshot(ctx context.Context, account *models.AccountRecord) (models.Usage, error) {
	used, err := s.usageRepo.Today(ctx, account.ID, s.now())
	if err != nil {
		return models.Usage{}, err
	}
	return models.Usage{RequestsToday: used, Limit: account.Tier.Quota()}, nil
}

// Consume counts one request, or returns ErrQuotaExceeded.
func (s *UsageService) Consume(ctx context.Context, account *models.AccountRecord) (models.Usage, error) {
	limit := account.Tier.Quota()
	used, ok, err := s.usageRepo.Increment(ctx, account.ID, s.now(), limit)
	if err != nil {
		return models.Usage{}, err
	}
	if !ok {
		return models.Usage{RequestsToday: used, Limit: limit}, ErrQuotaExceeded
	}
	return models.Usage{RequestsToday: used, Limit: limit}, nil
}
