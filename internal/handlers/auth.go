package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/promptdeck/promptdeck/internal/auth"
	"github.com/promptdeck/promptdeck/internal/services"
	apperrors "github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/logger"
	"github.com/promptdeck/promptdeck/pkg/response"
)

// AuthHandler manages registration, verification and session flows.
type AuthHandler struct {
	users         *services.UserService
	verifications *services.EmailVerificationService
	sessions      *iauth.SessionService
}

func NewAuthHandler(users *services.UserService, verifications *services.EmailVerificationService, sessions *iauth.SessionService) *AuthHandler {
	return &AuthHandler{users: users, verifications: verifications, sessions: sessions}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	user, err := h.users.Create(ctx, services.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	_, sent, err := h.verifications.CreateToken(ctx, user.ID, user.Email)
	if err != nil {
		logger.Error("issue verification token", zap.String("user_id", user.ID), zap.Error(err))
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":              user,
		"verification_sent": sent,
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	pair, _, err := h.sessions.CreateSession(user, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}

	if err := h.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn("stamp last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":   user,
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

// GET /api/auth/verify-email?token=
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, apperrors.NewBadRequest("인증 토큰이 필요합니다"))
		return
	}

	ctx := requestContext(c)
	verification, err := h.verifications.VerifyToken(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrVerificationUsed):
		// Repeated clicks on the same link stay successful.
		response.Success(c, http.StatusOK, gin.H{"verified": true, "message": "이미 인증된 계정입니다"})
		return
	case errors.Is(err, services.ErrVerificationExpired):
		response.Error(c, apperrors.NewBadRequest("인증 토큰이 만료되었습니다. 인증 메일을 다시 요청해주세요"))
		return
	case errors.Is(err, services.ErrVerificationNotFound):
		response.Error(c, apperrors.ErrNotFound)
		return
	default:
		response.Error(c, err)
		return
	}

	if err := h.users.MarkVerified(ctx, verification.UserID); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.GetByID(ctx, verification.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	pair, _, err := h.sessions.CreateSession(user, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"verified": true,
		"user":     user,
		"tokens":   tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

type resendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/auth/resend-verification
//
// The response is identical whether or not the address belongs to an account
// so the endpoint cannot be used to probe for registered emails.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	user, err := h.users.GetByEmail(ctx, req.Email)
	if err == nil && !user.IsVerified {
		if _, _, tokenErr := h.verifications.CreateToken(ctx, user.ID, user.Email); tokenErr != nil {
			logger.Error("resend verification token", zap.String("user_id", user.ID), zap.Error(tokenErr))
		}
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "가입된 이메일이라면 인증 메일이 발송됩니다",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, _, err := h.sessions.RefreshSession(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := currentSessionID(c)
	if sid == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sid); err != nil {
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
