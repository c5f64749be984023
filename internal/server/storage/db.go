// Package storage keeps the development backend's state in memory. Data is
// lost on restart.
package storage

import (
	"sync"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// DB is the shared in-memory state behind every repository.
type DB struct {
	mu sync.RWMutex

	nextUserID    int64
	users         map[int64]*models.AccountRecord
	usersByEmail  map[string]int64
	registrations map[string]*models.PendingRegistration
	payments      map[string]*models.PaymentRecord
	usage         map[int64]dailyUsage
}

type dailyUsage struct {
	day   string
	count int
}

func NewMemoryDB() *DB {
	return &DB{
		users:         map[int64]*models.AccountRecord{},
		usersByEmail:  map[string]int64{},
		registrations: map[string]*models.PendingRegistration{},
		payments:      map[string]*models.PaymentRecord{},
		usage:         map[int64]dailyUsage{},
	}
}
