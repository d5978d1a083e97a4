package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/pkg/crypto"
	apperrors "github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/metrics"
)

// CreateUserInput describes the fields accepted at registration.
type CreateUserInput struct {
	Email    string
	Username string
	Password string
	Name     string
}

// UserFilters captures listing filters for the admin user listing.
type UserFilters struct {
	Role  string
	Query string
}

// ListUsersOptions controls pagination for user listing.
type ListUsersOptions struct {
	Pagination
	Filters UserFilters
}

// UserService manages account lifecycle: registration, credential checks and
// role administration.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Create provisions a new unverified user with a hashed password.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if email == "" {
		return nil, apperrors.NewBadRequest("이메일을 입력해주세요")
	}
	if username == "" {
		return nil, apperrors.NewBadRequest("사용자명을 입력해주세요")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("비밀번호를 입력해주세요")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Username: username,
		Password: hashed,
		Name:     strings.TrimSpace(input.Name),
		Role:     models.RoleUser,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			metrics.Registrations.WithLabelValues("duplicate").Inc()
			return nil, apperrors.NewBadRequest("이미 사용 중인 이메일 또는 사용자명입니다")
		}
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	metrics.Registrations.WithLabelValues("created").Inc()
	return user, nil
}

// Authenticate checks credentials for a local login. Unknown email and wrong
// password collapse into the same error so accounts cannot be enumerated.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}

// GetByID loads a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// GetByEmail loads a user by normalized email address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user by email: %w", err)
	}
	return &user, nil
}

// List retrieves users matching the supplied filters with pagination.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Pagination.Normalize()

	query := s.db.WithContext(ctx).Model(&models.User{})
	if role := strings.TrimSpace(opts.Filters.Role); role != "" {
		query = query.Where("role = ?", strings.ToUpper(role))
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// UpdateRole changes a user's role. The role must belong to the closed set.
func (s *UserService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	ctx = ensureContext(ctx)

	role = strings.ToUpper(strings.TrimSpace(role))
	if !models.ValidRole(role) {
		return nil, apperrors.NewBadRequest("유효하지 않은 역할입니다")
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if user.Role == role {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("user service: update role: %w", err)
	}
	return &user, nil
}

// MarkVerified flips the verified flag after an email token is consumed.
func (s *UserService) MarkVerified(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_verified", true)
	if result.Error != nil {
		return fmt.Errorf("user service: mark verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateLastLogin stamps the login time. Failures are reported but not fatal
// to the login flow.
func (s *UserService) UpdateLastLogin(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", now).Error; err != nil {
		return fmt.Errorf("user service: update last login: %w", err)
	}
	return nil
}
