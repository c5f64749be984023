package billing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// scriptedChecker returns responses[i] on the i-th call and repeats the last one.
type scriptedChecker struct {
	mu        sync.Mutex
	calls     int
	responses []checkResponse
}

type checkResponse struct {
	status models.PaymentStatus
	err    error
}

func (c *scriptedChecker) CheckPaymentStatus(ctx context.Context, id string) (*models.PaymentStatus, json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	c.calls++
	r := c.responses[i]
	if r.err != nil {
		return nil, nil, r.err
	}
	s := r.status
	return &s, json.RawMessage(`{}`), nil
}

func pending(n int) []checkResponse {
	out := make([]checkResponse, n)
	for i := range out {
		out[i] = checkResponse{status: models.PaymentStatus{Status: models.PaymentPending}}
	}
	return out
}

type callbacks struct {
	succeeded []string
	canceled  []string
}

func newPoller(c StatusChecker, cb *callbacks) *Poller {
	return &Poller{
		Checker:     c,
		Interval:    time.Millisecond,
		MaxAttempts: 60,
		OnSucceeded: func(id string) { cb.succeeded = append(cb.succeeded, id) },
		OnCanceled:  func(id string) { cb.canceled = append(cb.canceled, id) },
	}
}

func TestSucceedsOnLastAttempt(t *testing.T) {
	checker := &scriptedChecker{responses: append(pending(59),
		checkResponse{status: models.PaymentStatus{Status: models.PaymentSucceeded, Paid: true}})}
	cb := &callbacks{}

	res, err := newPoller(checker, cb).Run(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, 60, res.Attempts)
	assert.Equal(t, []string{"p1"}, cb.succeeded)
	assert.Empty(t, cb.canceled)
}

func TestSucceededButUnpaidKeepsPolling(t *testing.T) {
	checker := &scriptedChecker{responses: []checkResponse{
		{status: models.PaymentStatus{Status: models.PaymentSucceeded, Paid: false}},
		{status: models.PaymentStatus{Status: models.PaymentSucceeded, Paid: true}},
	}}
	cb := &callbacks{}

	res, err := newPoller(checker, cb).Run(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, 2, res.Attempts)
}

func TestTimesOutWithoutCallback(t *testing.T) {
	checker := &scriptedChecker{responses: pending(1)}
	cb := &callbacks{}

	res, err := newPoller(checker, cb).Run(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, StateTimedOut, res.State)
	assert.Equal(t, 60, res.Attempts)
	assert.Equal(t, 60, checker.calls)
	assert.Empty(t, cb.succeeded)
	assert.Empty(t, cb.canceled)
}

func TestCanceled(t *testing.T) {
	checker := &scriptedChecker{responses: append(pending(2),
		checkResponse{status: models.PaymentStatus{Status: models.PaymentCanceled}})}
	cb := &callbacks{}

	res, err := newPoller(checker, cb).Run(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, StateCanceled, res.State)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []string{"p1"}, cb.canceled)
	assert.Empty(t, cb.succeeded)
}

func TestErrorsCountAsAttempts(t *testing.T) {
	checker := &scriptedChecker{responses: []checkResponse{{err: errors.New("request failed: timeout")}}}
	cb := &callbacks{}

	p := newPoller(checker, cb)
	p.MaxAttempts = 5
	res, err := p.Run(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, StateTimedOut, res.State)
	assert.Equal(t, 5, checker.calls)
}

func TestRunHonorsContext(t *testing.T) {
	checker := &scriptedChecker{responses: pending(1)}
	p := newPoller(checker, &callbacks{})
	p.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx, "p1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatePolling, res.State)
	assert.Zero(t, res.Attempts)
}

func TestStartStop(t *testing.T) {
	checker := &scriptedChecker{responses: pending(1)}
	p := newPoller(checker, &callbacks{})
	p.Interval = time.Hour

	h := p.Start(context.Background(), "p1")
	h.Stop()
	h.Stop()

	_, open := <-h.Done()
	assert.False(t, open)
}

func TestStartDeliversResult(t *testing.T) {
	checker := &scriptedChecker{responses: []checkResponse{
		{status: models.PaymentStatus{Status: models.PaymentSucceeded, Paid: true}},
	}}
	h := newPoller(checker, &callbacks{}).Start(context.Background(), "p1")

	select {
	case res := <-h.Done():
		assert.Equal(t, StateSucceeded, res.State)
	case <-time.After(time.Second):
		t.Fatal("no result")
	}
	h.Stop()
}
