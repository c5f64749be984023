package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/kamikazebr/iskra-desktop/internal/server/storage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
	"github.com/kamikazebr/iskra-desktop/pkg/utils"
)

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	CodeTTL   time.Duration
}

type AuthService struct {
	authRepo *storage.AuthRepository
	userRepo *storage.UserRepository
	mailer   Mailer
	metrics  *Metrics
	cfg      AuthConfig
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewAuthService(
	authRepo *storage.AuthRepository,
	userRepo *storage.UserRepository,
	mailer Mailer,
	metrics *Metrics,
	cfg AuthConfig,
	log logrus.FieldLogger,
) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 5 * time.Minute
	}
	return &AuthService{
		authRepo: authRepo,
		userRepo: userRepo,
		mailer:   mailer,
		metrics:  metrics,
		cfg:      cfg,
		log:      log.WithField("component", "auth"),
		now:      time.Now,
	}
}

// SendCode starts a registration and mails a 6-digit code.
func (s *AuthService) SendCode(ctx context.Context, email string) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return ErrUserExists
	}
	return s.issueCode(ctx, email)
}

// ResendCode mails a fresh code for a registration already in progress.
func (s *AuthService) ResendCode(ctx context.Context, email string) error {
	reg, err := s.authRepo.GetPending(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get registration: %w", err)
	}
	if reg == nil {
		return ErrNoPendingRegistration
	}
	return s.issueCode(ctx, email)
}

func (s *AuthService) issueCode(ctx context.Context, email string) error {
	code, err := utils.GenerateAuthCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	reg := &models.PendingRegistration{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(s.cfg.CodeTTL),
	}
	if err := s.authRepo.SavePending(ctx, reg); err != nil {
		return fmt.Errorf("failed to save registration: %w", err)
	}

	if err := s.mailer.SendAuthCode(email, code); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	reg, err := s.authRepo.GetPending(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get registration: %w", err)
	}
	if reg == nil {
		return ErrNoPendingRegistration
	}
	if reg.ExpiresAt.Before(s.now().UTC()) {
		return ErrCodeExpired
	}
	if reg.Code != code {
		return ErrInvalidCode
	}
	return s.authRepo.MarkVerified(ctx, email)
}

// CompleteRegistration creates a free-tier account for a verified email.
func (s *AuthService) CompleteRegistration(ctx context.Context, email, password, deviceID string) (*models.AuthResponse, error) {
	reg, err := s.authRepo.GetPending(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	if reg == nil || !reg.Verified {
		return nil, ErrEmailNotVerified
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.AccountRecord{
		User:         models.User{Email: email, Tier: models.TierFree},
		PasswordHash: hash,
		DeviceID:     deviceID,
	}
	if err := s.userRepo.Create(ctx, account); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.authRepo.DeletePending(ctx, email); err != nil {
		s.log.WithError(err).Warn("Failed to delete registration")
	}

	s.metrics.Registrations.Inc()
	s.log.WithFields(logrus.Fields{"user_id": account.ID, "device_id": deviceID}).Info("Account created")

	// Welcome email is best effort.
	go func() {
		if err := s.mailer.SendWelcomeEmail(account.Email); err != nil {
			s.log.WithError(err).Warn("Failed to send welcome email")
		}
	}()

	return s.issueToken(account)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	account, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(account)
}

func (s *AuthService) issueToken(account *models.AccountRecord) (*models.AuthResponse, error) {
	token, _, err := utils.GenerateJWT(account.ID, account.Email, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}
	return &models.AuthResponse{Token: token, User: account.User}, nil
}

func (s *AuthService) ValidateToken(token string) (*utils.Claims, error) {
	return utils.ValidateJWT(token, s.cfg.JWTSecret)
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (*models.AccountRecord, error) {
	account, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if account == nil {
		return nil, ErrUserNotFound
	}
	return account, nil
}

func (s *AuthService) CleanupExpiredCodes(ctx context.Context) error {
	removed, err := s.authRepo.CleanupExpired(ctx, s.now().UTC())
	if err != nil {
		return err
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Debug("Expired registrations removed")
	}
	return nil
}
