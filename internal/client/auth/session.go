// Package auth owns the client's session: the bearer token, the cached
// profile and every call made on the user's behalf.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/internal/client/api"
	"github.com/kamikazebr/iskra-desktop/internal/client/events"
	"github.com/kamikazebr/iskra-desktop/internal/client/storage"
	"github.com/kamikazebr/iskra-desktop/internal/client/usage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a token and none is held.
	ErrNotAuthenticated = usage.ErrNoSession
	ErrInvalidTier      = errors.New("tier must be pro or pro_plus")
)

// Session is safe for concurrent use. State changes are persisted before the
// change channel fires, and listeners run without the session lock held.
type Session struct {
	client *api.Client
	store  storage.Store
	log    logrus.FieldLogger

	mu           sync.RWMutex
	token        string
	user         *models.User
	pendingEmail string

	changes events.Emitter[*models.User]
}

// NewSession loads persisted state from store and builds an API client for
// baseURL that authenticates with the session's token.
func NewSession(baseURL string, store storage.Store, log logrus.FieldLogger, opts ...api.Option) *Session {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	s := &Session{
		store: store,
		log:   log.WithField("component", "auth"),
	}
	st := LoadState(store, s.log)
	s.token, s.user = st.Token, st.User

	opts = append(opts, api.WithTokenSource(s.Token))
	s.client = api.NewClient(baseURL, opts...)
	return s
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the cached profile, or nil when logged out.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// PendingEmail is the email of a registration in progress, kept in memory only.
func (s *Session) PendingEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingEmail
}

// Subscribe registers fn for auth changes. fn receives the new profile, or
// nil on logout.
func (s *Session) Subscribe(fn func(*models.User)) (unsubscribe func()) {
	return s.changes.Subscribe(fn)
}

// CachedProfile re-reads the persisted pair so changes written by another
// process are picked up.
func (s *Session) CachedProfile() *models.User {
	st := LoadState(s.store, s.log)

	s.mu.Lock()
	s.token, s.user = st.Token, st.User
	s.mu.Unlock()

	return st.User.Clone()
}

func (s *Session) SendCode(ctx context.Context, email string) (*models.MessageResponse, error) {
	resp, err := s.client.SendCode(ctx, email)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pendingEmail = email
	s.mu.Unlock()
	return resp, nil
}

func (s *Session) VerifyEmail(ctx context.Context, email, code string) (*models.MessageResponse, error) {
	return s.client.VerifyEmail(ctx, email, code)
}

func (s *Session) ResendCode(ctx context.Context, email string) (*models.MessageResponse, error) {
	return s.client.ResendCode(ctx, email)
}

// CompleteRegistration finishes sign-up with the device id of this machine and
// stores the resulting session.
func (s *Session) CompleteRegistration(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	deviceID, err := ResolveDeviceID(s.store, s.log)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.CompleteRegistration(ctx, models.CompleteRegistrationRequest{
		Email:    email,
		Password: password,
		DeviceID: deviceID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.establish(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.establish(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Session) establish(resp *models.AuthResponse) error {
	user := resp.User.Clone()

	s.mu.Lock()
	if err := SaveState(s.store, State{Token: resp.Token, User: user}); err != nil {
		s.mu.Unlock()
		return err
	}
	s.token, s.user = resp.Token, user
	s.pendingEmail = ""
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "tier": user.Tier}).Info("Signed in")
	s.changes.Fire(user.Clone())
	return nil
}

// Logout forgets the session locally. The backend is not contacted.
func (s *Session) Logout() error {
	s.mu.Lock()
	err := ClearState(s.store)
	s.token, s.user = "", nil
	s.pendingEmail = ""
	s.mu.Unlock()

	s.changes.Fire(nil)
	return err
}

// RefreshProfile fetches /auth/me, merges it into the cached profile and
// persists the result. A response that arrives after a logout or re-login is
// dropped.
func (s *Session) RefreshProfile(ctx context.Context) (*models.User, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	me, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	merged := usage.Reconcile(s.user, me)
	if merged == nil {
		s.mu.Unlock()
		return nil, errors.New("profile missing from response")
	}
	if err := SaveState(s.store, State{Token: token, User: merged}); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.user = merged
	s.mu.Unlock()

	s.changes.Fire(merged.Clone())
	return merged.Clone(), nil
}

func (s *Session) QwenComplete(ctx context.Context, req models.CompletionRequest) (json.RawMessage, error) {
	return s.complete(ctx, api.ProviderQwen, req)
}

func (s *Session) ClaudeComplete(ctx context.Context, req models.CompletionRequest) (json.RawMessage, error) {
	return s.complete(ctx, api.ProviderClaude, req)
}

// QwenStream opens a streaming completion. The caller closes the stream.
func (s *Session) QwenStream(ctx context.Context, req models.CompletionRequest) (io.ReadCloser, error) {
	return s.stream(ctx, api.ProviderQwen, req)
}

func (s *Session) ClaudeStream(ctx context.Context, req models.CompletionRequest) (io.ReadCloser, error) {
	return s.stream(ctx, api.ProviderClaude, req)
}

func (s *Session) complete(ctx context.Context, provider api.Provider, req models.CompletionRequest) (json.RawMessage, error) {
	body, err := s.client.Complete(ctx, provider, req)
	if err != nil {
		return nil, err
	}
	s.countRequest()
	return body, nil
}

func (s *Session) stream(ctx context.Context, provider api.Provider, req models.CompletionRequest) (io.ReadCloser, error) {
	body, err := s.client.Stream(ctx, provider, req)
	if err != nil {
		return nil, err
	}
	s.countRequest()
	return body, nil
}

// countRequest adds one to the persisted requestsUsed after the backend
// accepted a completion, so every reader of the store sees it before the
// next /auth/me refresh.
func (s *Session) countRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := LoadState(s.store, s.log)
	if st.Token == "" || st.User == nil || st.Token != s.token {
		return
	}
	user := st.User
	user.RequestsUsed = models.IntPtr(usage.Used(user) + 1)
	if err := SaveState(s.store, State{Token: st.Token, User: user}); err != nil {
		s.log.WithError(err).Warn("Failed to record request usage")
		return
	}
	s.user = user
}

func (s *Session) QwenModels(ctx context.Context) ([]string, error) {
	return s.client.Models(ctx, api.ProviderQwen)
}

func (s *Session) ClaudeModels(ctx context.Context) ([]string, error) {
	return s.client.Models(ctx, api.ProviderClaude)
}

// CreatePayment starts an upgrade to a paid tier.
func (s *Session) CreatePayment(ctx context.Context, tier models.Tier, returnURL string) (*models.PaymentResponse, error) {
	if !tier.Paid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	return s.client.CreatePayment(ctx, models.PaymentRequest{Tier: tier, ReturnURL: returnURL})
}

// CheckPaymentStatus returns the decoded status and the body as the backend sent it.
func (s *Session) CheckPaymentStatus(ctx context.Context, paymentID string) (*models.PaymentStatus, json.RawMessage, error) {
	return s.client.PaymentStatus(ctx, paymentID)
}
