package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/api"
	iauth "github.com/promptdeck/promptdeck/internal/auth"
	sharedtestutil "github.com/promptdeck/promptdeck/internal/database/testutil"
	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/services"
	"github.com/promptdeck/promptdeck/pkg/mail"
	"github.com/promptdeck/promptdeck/pkg/response"
)

// Mailbox collects outbound mail during tests.
type Mailbox struct {
	Messages []mail.Message
}

// Send records the message instead of delivering it.
func (m *Mailbox) Send(_ context.Context, msg mail.Message) error {
	m.Messages = append(m.Messages, msg)
	return nil
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	JWT      *iauth.JWTService
	Sessions *iauth.SessionService
	Mailbox  *Mailbox
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-suite-super-secret-key-32-bytes!!",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{
		RefreshTokenTTL: 24 * time.Hour,
		RefreshLength:   48,
	})
	require.NoError(t, err)

	mailbox := &Mailbox{}

	userSvc, err := services.NewUserService(db)
	require.NoError(t, err)
	verificationSvc, err := services.NewEmailVerificationService(db, mailbox,
		services.WithVerificationBaseURL("https://promptdeck.test/verify-email"))
	require.NoError(t, err)
	promptSvc, err := services.NewPromptService(db)
	require.NoError(t, err)
	categorySvc, err := services.NewCategoryService(db)
	require.NoError(t, err)
	followSvc, err := services.NewFollowService(db)
	require.NoError(t, err)
	statsSvc, err := services.NewStatsService(db)
	require.NoError(t, err)

	router, err := api.NewRouter(db, jwtSvc, sessionSvc, api.Services{
		Users:         userSvc,
		Verifications: verificationSvc,
		Prompts:       promptSvc,
		Categories:    categorySvc,
		Follows:       followSvc,
		Stats:         statsSvc,
	})
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		JWT:      jwtSvc,
		Sessions: sessionSvc,
		Mailbox:  mailbox,
	}
}

// RegisterResult bundles the JSON response from POST /api/auth/register.
type RegisterResult struct {
	User             models.User `json:"user"`
	VerificationSent bool        `json:"verification_sent"`
}

// Register creates an account through the API and returns the created user.
func (e *Env) Register(email, username, password string) RegisterResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
		"name":     "테스트",
	}, "")
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	var result RegisterResult
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &result)
	return result
}

// TokenPair mirrors the token payload returned by auth endpoints.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult bundles the JSON response from POST /api/auth/login.
type LoginResult struct {
	User   models.User `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}

// Login authenticates and returns the issued token pair.
func (e *Env) Login(email, password string) LoginResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var result LoginResult
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &result)
	require.NotEmpty(e.T, result.Tokens.AccessToken)
	require.NotEmpty(e.T, result.Tokens.RefreshToken)
	return result
}

// RegisterAndLogin provisions a user end to end and returns a live login.
func (e *Env) RegisterAndLogin(email, username, password string) LoginResult {
	e.T.Helper()

	e.Register(email, username, password)
	return e.Login(email, password)
}

// PromoteToAdmin flips a user's role directly in the database.
func (e *Env) PromoteToAdmin(userID string) {
	e.T.Helper()
	require.NoError(e.T, e.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", models.RoleAdmin).Error)
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON
// encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
