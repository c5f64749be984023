// Package testutil builds in-memory backends and fixtures for server tests.
package testutil

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/kamikazebr/iskra-desktop/internal/server/storage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

type TestDB struct {
	DB *storage.DB
	t  *testing.T
}

// GetTestDB returns a fresh in-memory database.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()
	return &TestDB{DB: storage.NewMemoryDB(), t: t}
}

func (tdb *TestDB) Repositories() *TestRepositories {
	return &TestRepositories{
		Users:    storage.NewUserRepository(tdb.DB),
		Auth:     storage.NewAuthRepository(tdb.DB),
		Payments: storage.NewPaymentRepository(tdb.DB),
		Usage:    storage.NewUsageRepository(tdb.DB),
	}
}

type TestRepositories struct {
	Users    *storage.UserRepository
	Auth     *storage.AuthRepository
	Payments *storage.PaymentRepository
	Usage    *storage.UsageRepository
}

// CreateTestUser stores an account whose password is password.
func (tdb *TestDB) CreateTestUser(ctx context.Context, email, password string, tier models.Tier) *models.AccountRecord {
	tdb.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		tdb.t.Fatalf("Failed to hash password: %v", err)
	}

	account := &models.AccountRecord{
		User:         models.User{Email: email, Tier: tier},
		PasswordHash: hash,
		DeviceID:     "test-device",
	}
	if err := tdb.Repositories().Users.Create(ctx, account); err != nil {
		tdb.t.Fatalf("Failed to create test user: %v", err)
	}
	return account
}
