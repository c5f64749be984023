package urlhandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamikazebr/iskra-desktop/internal/client/notifier"
	"github.com/kamikazebr/iskra-desktop/internal/client/storage"
)

type sent struct {
	title   string
	urgency notifier.Urgency
}

type fakeNotifier struct {
	sent []sent
}

func (f *fakeNotifier) Send(title, message string, urgency notifier.Urgency) error {
	f.sent = append(f.sent, sent{title: title, urgency: urgency})
	return nil
}

func newHandler(t *testing.T) (*Handler, *fakeNotifier, *storage.MemoryStore, *[]Event) {
	t.Helper()
	n := &fakeNotifier{}
	store := storage.NewMemoryStore()
	h := New(n, store, nil)
	h.now = func() time.Time { return time.UnixMilli(1700000000123) }

	var got []Event
	h.Subscribe(func(e Event) { got = append(got, e) })
	return h, n, store, &got
}

func TestPaymentSuccess(t *testing.T) {
	h, n, store, got := newHandler(t)

	ok, err := h.Handle("iskra://iskra-ai/payment-success")
	require.NoError(t, err)
	assert.True(t, ok)

	v, present := store.Get(storage.KeyPaymentSuccess)
	require.True(t, present)
	assert.Equal(t, "1700000000123", v)

	at, present := LastPaymentSuccess(store)
	require.True(t, present)
	assert.Equal(t, int64(1700000000123), at.UnixMilli())

	require.Len(t, n.sent, 1)
	assert.Equal(t, notifier.UrgencyNormal, n.sent[0].urgency)
	require.Len(t, *got, 1)
	assert.Equal(t, PaymentSucceeded, (*got)[0].Kind)
}

func TestPaymentCanceled(t *testing.T) {
	h, n, store, got := newHandler(t)

	ok, err := h.Handle("vscode://iskra-ai/payment-canceled?payment=1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, present := store.Get(storage.KeyPaymentSuccess)
	assert.False(t, present)
	require.Len(t, n.sent, 1)
	assert.Equal(t, notifier.UrgencyCritical, n.sent[0].urgency)
	assert.Equal(t, PaymentCanceled, (*got)[0].Kind)
}

func TestAuthSuccess(t *testing.T) {
	h, n, _, got := newHandler(t)

	ok, err := h.Handle("iskra://iskra-ai/auth-success")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, n.sent, 1)
	assert.Equal(t, AuthSucceeded, (*got)[0].Kind)
}

func TestNotHandled(t *testing.T) {
	tests := []string{
		"iskra://other/payment-success",
		"iskra://iskra-ai/unknown",
		"iskra://iskra-ai/",
		"https://example.com/payment-success",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			h, n, _, got := newHandler(t)
			ok, err := h.Handle(raw)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, n.sent)
			assert.Empty(t, *got)
		})
	}
}

func TestInvalidURL(t *testing.T) {
	h, _, _, _ := newHandler(t)
	ok, err := h.Handle("://bad url")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestLinkRoundTrip(t *testing.T) {
	assert.Equal(t, "iskra://iskra-ai/payment-canceled", Link(PaymentCanceled))

	h, _, _, got := newHandler(t)
	for _, kind := range []Kind{PaymentSucceeded, PaymentCanceled, AuthSucceeded} {
		handled, err := h.Handle(Link(kind))
		require.NoError(t, err)
		assert.True(t, handled, kind)
	}
	assert.Len(t, *got, 3)
}
