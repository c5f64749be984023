package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

var ErrEmailTaken = errors.New("email already registered")

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create assigns the next id and stores a copy of account.
func (r *UserRepository) Create(ctx context.Context, account *models.AccountRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	email := normalizeEmail(account.Email)
	if _, ok := r.db.usersByEmail[email]; ok {
		return ErrEmailTaken
	}

	r.db.nextUserID++
	account.ID = r.db.nextUserID
	account.Email = email
	account.CreatedAt = time.Now().UTC()

	stored := *account
	r.db.users[account.ID] = &stored
	r.db.usersByEmail[email] = account.ID
	return nil
}

// GetByEmail returns nil, nil when no account exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.AccountRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.usersByEmail[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	account := *r.db.users[id]
	return &account, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.AccountRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stored, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	account := *stored
	return &account, nil
}

func (r *UserRepository) UpdateTier(ctx context.Context, id int64, tier models.Tier) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.users[id]
	if !ok {
		return errors.New("user not found")
	}
	stored.Tier = tier
	return nil
}
