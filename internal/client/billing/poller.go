// Package billing confirms tier upgrades by polling the payment status until
// the checkout settles.
package billing

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 60
)

type State string

const (
	StatePolling   State = "polling"
	StateSucceeded State = "succeeded"
	StateCanceled  State = "canceled"
	StateTimedOut  State = "timed_out"
)

// Terminal reports whether polling has stopped.
func (s State) Terminal() bool {
	return s != StatePolling
}

// StatusChecker is implemented by auth.Session.
type StatusChecker interface {
	CheckPaymentStatus(ctx context.Context, paymentID string) (*models.PaymentStatus, json.RawMessage, error)
}

type Result struct {
	PaymentID string
	State     State
	Attempts  int
}

type Poller struct {
	Checker     StatusChecker
	Interval    time.Duration
	MaxAttempts int
	Log         logrus.FieldLogger

	// OnSucceeded and OnCanceled run once, on the polling goroutine, when the
	// payment settles. Exhausting the attempts calls neither.
	OnSucceeded func(paymentID string)
	OnCanceled  func(paymentID string)
}

// Run polls until the payment settles, the attempts run out or ctx is done.
// The first check happens one interval after the call.
func (p *Poller) Run(ctx context.Context, paymentID string) (Result, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	log := p.logger().WithField("payment_id", paymentID)

	result := Result{PaymentID: paymentID, State: StatePolling}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()

		case <-ticker.C:
			result.Attempts++

			status, _, err := p.Checker.CheckPaymentStatus(ctx, paymentID)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				log.WithError(err).WithField("attempt", result.Attempts).Warn("Payment status check failed")

			case status.Status == models.PaymentSucceeded && status.Paid:
				result.State = StateSucceeded
				log.Info("Payment confirmed")
				if p.OnSucceeded != nil {
					p.OnSucceeded(paymentID)
				}
				return result, nil

			case status.Status == models.PaymentCanceled:
				result.State = StateCanceled
				log.Info("Payment canceled")
				if p.OnCanceled != nil {
					p.OnCanceled(paymentID)
				}
				return result, nil
			}

			if result.Attempts >= maxAttempts {
				result.State = StateTimedOut
				log.WithField("attempts", result.Attempts).Warn("Gave up waiting for payment confirmation")
				return result, nil
			}
		}
	}
}

// Handle controls a poller started with Start.
type Handle struct {
	cancel context.CancelFunc
	done   chan Result
	once   sync.Once
}

// Start runs the poller on its own goroutine.
func (p *Poller) Start(ctx context.Context, paymentID string) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan Result, 1)}

	go func() {
		res, _ := p.Run(ctx, paymentID)
		h.done <- res
		close(h.done)
	}()
	return h
}

// Done delivers the result once, then is closed.
func (h *Handle) Done() <-chan Result {
	return h.done
}

// Stop cancels polling and waits for the goroutine. Safe to call repeatedly
// and after the poller finished on its own.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		for range h.done {
		}
	})
}

func (p *Poller) logger() logrus.FieldLogger {
	if p.Log != nil {
		return p.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
