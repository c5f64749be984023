package storage

import (
	"context"
	"errors"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored := *p
	r.db.payments[p.ID] = &stored
	return nil
}

// Get returns nil, nil when the id is unknown.
func (r *PaymentRepository) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stored, ok := r.db.payments[id]
	if !ok {
		return nil, nil
	}
	p := *stored
	return &p, nil
}

// Settle moves a pending payment to a terminal state. It returns the updated
// record and whether this call changed it.
func (r *PaymentRepository) Settle(ctx context.Context, id string, status models.PaymentState, paid bool, update func(*models.PaymentRecord)) (*models.PaymentRecord, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.payments[id]
	if !ok {
		return nil, false, ErrPaymentNotFound
	}
	if stored.Status != models.PaymentPending {
		p := *stored
		return &p, false, nil
	}

	stored.Status, stored.Paid = status, paid
	if update != nil {
		update(stored)
	}
	p := *stored
	return &p, true, nil
}
