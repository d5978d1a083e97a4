package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/pkg/crypto"
	"github.com/promptdeck/promptdeck/pkg/logger"
	"github.com/promptdeck/promptdeck/pkg/mail"
)

const (
	defaultVerificationExpiry     = 24 * time.Hour
	defaultVerificationTokenBytes = 48
)

var (
	// ErrVerificationNotFound indicates the token does not exist.
	ErrVerificationNotFound = errors.New("email verification: not found")
	// ErrVerificationExpired indicates the verification token has expired.
	ErrVerificationExpired = errors.New("email verification: expired")
	// ErrVerificationUsed signals that the verification token has already been consumed.
	ErrVerificationUsed = errors.New("email verification: already used")
)

// VerificationOption customises the EmailVerificationService.
type VerificationOption func(*EmailVerificationService)

// WithVerificationBaseURL sets the base URL used in verification links.
func WithVerificationBaseURL(url string) VerificationOption {
	return func(s *EmailVerificationService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithVerificationExpiry overrides the token lifetime.
func WithVerificationExpiry(d time.Duration) VerificationOption {
	return func(s *EmailVerificationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithVerificationClock injects a custom time source.
func WithVerificationClock(clock func() time.Time) VerificationOption {
	return func(s *EmailVerificationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// EmailVerificationService manages email verification tokens for new accounts.
// Tokens are stored hashed. One live token per user, a resend replaces the
// previous one.
type EmailVerificationService struct {
	db      *gorm.DB
	mailer  mail.Mailer
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

// NewEmailVerificationService constructs a verification service with the provided dependencies.
func NewEmailVerificationService(db *gorm.DB, mailer mail.Mailer, opts ...VerificationOption) (*EmailVerificationService, error) {
	if db == nil {
		return nil, errors.New("email verification service: db is required")
	}

	service := &EmailVerificationService{
		db:     db,
		mailer: mailer,
		expiry: defaultVerificationExpiry,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateToken issues a verification token for the given user and dispatches
// the verification mail when a mailer is configured. Mail delivery failure is
// reported through the sent flag, not as an error, so registration never
// fails because SMTP is down.
func (s *EmailVerificationService) CreateToken(ctx context.Context, userID, email string) (token string, sent bool, err error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	email = strings.ToLower(strings.TrimSpace(email))
	if userID == "" {
		return "", false, errors.New("email verification service: user id is required")
	}
	if email == "" {
		return "", false, errors.New("email verification service: email is required")
	}

	token, err = crypto.GenerateToken(defaultVerificationTokenBytes)
	if err != nil {
		return "", false, fmt.Errorf("email verification service: generate token: %w", err)
	}

	now := s.now()
	verification := models.EmailVerification{
		UserID:    userID,
		TokenHash: verificationHash(token),
		ExpiresAt: now.Add(s.expiry),
	}

	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.EmailVerification{}).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, fmt.Errorf("email verification service: cleanup existing: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&verification).Error; err != nil {
		return "", false, fmt.Errorf("email verification service: create token: %w", err)
	}

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{email},
			Subject: "PromptDeck 이메일 인증을 완료해주세요",
			Body:    s.verificationBody(s.verificationLink(token)),
		}
		mailErr := s.mailer.Send(ctx, message)
		switch {
		case mailErr == nil:
			sent = true
		case errors.Is(mailErr, mail.ErrSMTPDisabled):
		default:
			logger.Error("verification mail delivery failed",
				zap.String("user_id", userID),
				zap.Error(mailErr))
		}
	}

	return token, sent, nil
}

// VerifyToken validates and consumes a verification token.
func (s *EmailVerificationService) VerifyToken(ctx context.Context, token string) (*models.EmailVerification, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("email verification service: token is required")
	}

	var verification models.EmailVerification
	if err := s.db.WithContext(ctx).
		Where("token_hash = ?", verificationHash(token)).
		First(&verification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("email verification service: find token: %w", err)
	}

	if verification.VerifiedAt != nil {
		return nil, ErrVerificationUsed
	}

	now := s.now()
	if verification.ExpiresAt.Before(now) {
		return nil, ErrVerificationExpired
	}

	if err := s.db.WithContext(ctx).
		Model(&verification).
		Updates(map[string]any{"verified_at": now}).Error; err != nil {
		return nil, fmt.Errorf("email verification service: mark verified: %w", err)
	}

	verification.VerifiedAt = &now
	return &verification, nil
}

// CleanupExpired removes verification rows past their expiry. Consumed rows
// are kept until they expire so repeated clicks stay idempotent.
func (s *EmailVerificationService) CleanupExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.EmailVerification{})
	if result.Error != nil {
		return 0, fmt.Errorf("email verification service: cleanup expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *EmailVerificationService) verificationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s?token=%s", s.baseURL, token)
}

func (s *EmailVerificationService) verificationBody(link string) string {
	return fmt.Sprintf("PromptDeck에 오신 것을 환영합니다!\n\n아래 링크를 열어 이메일 주소를 인증해주세요:\n%s\n\n인증 링크는 24시간 동안 유효합니다. 직접 가입하지 않았다면 이 메일을 무시하셔도 됩니다.\n", link)
}

func verificationHash(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
