package storage

import (
	"context"
	"time"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// AuthRepository holds registrations between send-code and complete-registration.
type AuthRepository struct {
	db *DB
}

func NewAuthRepository(db *DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// SavePending replaces any pending registration for the same email.
func (r *AuthRepository) SavePending(ctx context.Context, reg *models.PendingRegistration) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored := *reg
	stored.Email = normalizeEmail(reg.Email)
	r.db.registrations[stored.Email] = &stored
	return nil
}

// GetPending returns nil, nil when no registration is in progress.
func (r *AuthRepository) GetPending(ctx context.Context, email string) (*models.PendingRegistration, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stored, ok := r.db.registrations[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	reg := *stored
	return &reg, nil
}

func (r *AuthRepository) MarkVerified(ctx context.Context, email string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if stored, ok := r.db.registrations[normalizeEmail(email)]; ok {
		stored.Verified = true
	}
	return nil
}

func (r *AuthRepository) DeletePending(ctx context.Context, email string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.registrations, normalizeEmail(email))
	return nil
}

// CleanupExpired drops unverified registrations whose code has expired and
// returns how many were removed.
func (r *AuthRepository) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	removed := 0
	for email, reg := range r.db.registrations {
		if !reg.Verified && reg.ExpiresAt.Before(now) {
			delete(r.db.registrations, email)
			removed++
		}
	}
	return removed, nil
}
