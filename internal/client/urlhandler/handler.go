// Package urlhandler reacts to iskra://iskra-ai/... links opened by the
// checkout page or the browser after sign-in.
package urlhandler

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/internal/client/events"
	"github.com/kamikazebr/iskra-desktop/internal/client/notifier"
	"github.com/kamikazebr/iskra-desktop/internal/client/storage"
)

// Authority is the host part every handled link must carry. The scheme is not
// checked so editors can forward their own scheme.
const Authority = "iskra-ai"

type Kind string

const (
	PaymentSucceeded Kind = "payment-success"
	PaymentCanceled  Kind = "payment-canceled"
	AuthSucceeded    Kind = "auth-success"
)

// Link builds the iskra:// link for kind.
func Link(kind Kind) string {
	return "iskra://" + Authority + "/" + string(kind)
}

type Event struct {
	Kind Kind
	At   time.Time
}

type Handler struct {
	notifier notifier.Notifier
	store    storage.Store
	log      logrus.FieldLogger
	now      func() time.Time

	events events.Emitter[Event]
}

func New(n notifier.Notifier, store storage.Store, log logrus.FieldLogger) *Handler {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Handler{
		notifier: n,
		store:    store,
		log:      log.WithField("component", "urlhandler"),
		now:      time.Now,
	}
}

// Subscribe registers fn for handled links.
func (h *Handler) Subscribe(fn func(Event)) (unsubscribe func()) {
	return h.events.Subscribe(fn)
}

// Handle processes a link. It returns false for links that are not ours,
// including unknown paths, and an error only when raw is not a URL.
func (h *Handler) Handle(raw string) (bool, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}
	if u.Host != Authority {
		return false, nil
	}

	log := h.log.WithField("path", u.Path)
	now := h.now()

	switch Kind(trimSlash(u.Path)) {
	case PaymentSucceeded:
		h.notify("Payment successful", "Your subscription is now active.", notifier.UrgencyNormal)
		millis := strconv.FormatInt(now.UnixMilli(), 10)
		if err := h.store.Set(map[string]string{storage.KeyPaymentSuccess: millis}); err != nil {
			log.WithError(err).Warn("Failed to record payment success")
		}
		h.events.Fire(Event{Kind: PaymentSucceeded, At: now})

	case PaymentCanceled:
		h.notify("Payment canceled", "The payment was canceled.", notifier.UrgencyCritical)
		h.events.Fire(Event{Kind: PaymentCanceled, At: now})

	case AuthSucceeded:
		h.notify("Signed in", "Authorization successful.", notifier.UrgencyNormal)
		h.events.Fire(Event{Kind: AuthSucceeded, At: now})

	default:
		log.Debug("Ignoring unknown link")
		return false, nil
	}

	log.Info("Handled link")
	return true, nil
}

func (h *Handler) notify(title, message string, urgency notifier.Urgency) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Send(title, message, urgency); err != nil {
		h.log.WithError(err).Warn("Failed to show notification")
	}
}

// LastPaymentSuccess returns when a payment-success link was last handled.
func LastPaymentSuccess(store storage.Store) (time.Time, bool) {
	raw, ok := store.Get(storage.KeyPaymentSuccess)
	if !ok {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func trimSlash(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p[1:]
	}
	return p
}
