package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
)

func openSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newSessionFixture(t *testing.T, clock func() time.Time) (*SessionService, *models.User) {
	t.Helper()

	db := openSessionTestDB(t)

	jwtSvc, err := NewJWTService(JWTConfig{
		Secret: "session-test-secret-session-test",
		Issuer: "promptdeck-test",
		Clock:  clock,
	})
	require.NoError(t, err)

	svc, err := NewSessionService(db, jwtSvc, SessionConfig{Clock: clock})
	require.NoError(t, err)

	user := &models.User{
		Email:    "minji@example.com",
		Username: "minji",
		Password: "hashed",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)

	return svc, user
}

func TestCreateSessionIssuesTokenPair(t *testing.T) {
	svc, user := newSessionFixture(t, nil)

	pair, session, err := svc.CreateSession(user, SessionMetadata{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotNil(t, session)

	// The stored token must be a hash, never the plaintext.
	require.NotEqual(t, pair.RefreshToken, session.RefreshToken)

	claims, err := svc.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, models.RoleUser, claims.Role)
	require.Equal(t, session.ID, claims.SessionID)
}

func TestRefreshSessionRotatesToken(t *testing.T) {
	svc, user := newSessionFixture(t, nil)

	pair, _, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)

	rotated, _, err := svc.RefreshSession(pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old refresh token must no longer work.
	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// The new one does.
	_, _, err = svc.RefreshSession(rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshSessionRejectsExpired(t *testing.T) {
	current := time.Now()
	clock := func() time.Time { return current }
	svc, user := newSessionFixture(t, clock)

	pair, _, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)

	current = current.Add(DefaultRefreshTokenTTL + time.Hour)
	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestRevokeSession(t *testing.T) {
	svc, user := newSessionFixture(t, nil)

	pair, session, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(session.ID))
	require.ErrorIs(t, svc.RevokeSession(session.ID), ErrSessionNotFound)

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionRevoked)
}

func TestCleanupExpiredRemovesStaleSessions(t *testing.T) {
	current := time.Now()
	clock := func() time.Time { return current }
	svc, user := newSessionFixture(t, clock)

	_, active, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)

	_, revoked, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, svc.RevokeSession(revoked.ID))

	deleted, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var remaining int64
	require.NoError(t, svc.db.Model(&models.Session{}).Count(&remaining).Error)
	require.EqualValues(t, 1, remaining)

	var kept models.Session
	require.NoError(t, svc.db.Take(&kept).Error)
	require.Equal(t, active.ID, kept.ID)
}
