package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/promptdeck/promptdeck/internal/auth"
	"github.com/promptdeck/promptdeck/internal/database/testutil"
	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/services"
)

func newCleanerFixture(t *testing.T) (*gorm.DB, *iauth.SessionService, *services.EmailVerificationService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "maintenance-test-secret"})
	require.NoError(t, err)
	sessions, err := iauth.NewSessionService(db, jwt, iauth.SessionConfig{})
	require.NoError(t, err)
	verifications, err := services.NewEmailVerificationService(db, nil)
	require.NoError(t, err)

	return db, sessions, verifications
}

func seedStaleRows(t *testing.T, db *gorm.DB) {
	t.Helper()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	require.NoError(t, db.Create(&models.Session{
		UserID: "user-1", RefreshToken: "hash-expired", ExpiresAt: past, LastUsedAt: past,
	}).Error)
	require.NoError(t, db.Create(&models.Session{
		UserID: "user-1", RefreshToken: "hash-live", ExpiresAt: future, LastUsedAt: past,
	}).Error)

	require.NoError(t, db.Create(&models.EmailVerification{
		UserID: "user-1", TokenHash: "verify-expired", ExpiresAt: past,
	}).Error)
	require.NoError(t, db.Create(&models.EmailVerification{
		UserID: "user-2", TokenHash: "verify-live", ExpiresAt: future,
	}).Error)
}

func TestCleanerRunOnce(t *testing.T) {
	db, sessions, verifications := newCleanerFixture(t)
	seedStaleRows(t, db)

	cleaner := NewCleaner(sessions, verifications)
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var sessionCount, verificationCount int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessionCount).Error)
	require.NoError(t, db.Model(&models.EmailVerification{}).Count(&verificationCount).Error)
	require.EqualValues(t, 1, sessionCount)
	require.EqualValues(t, 1, verificationCount)
}

func TestCleanerStartRegistersJobs(t *testing.T) {
	_, sessions, verifications := newCleanerFixture(t)

	cleaner := NewCleaner(sessions, verifications,
		WithSessionSchedule("@every 1h"),
		WithTokenSchedule("@every 24h"))
	require.NoError(t, cleaner.Start())
	require.Len(t, cleaner.cron.Entries(), 2)

	<-cleaner.Stop().Done()
}

func TestCleanerStartWithBadSchedule(t *testing.T) {
	_, sessions, verifications := newCleanerFixture(t)

	cleaner := NewCleaner(sessions, verifications, WithSessionSchedule("not-a-spec"))
	require.Error(t, cleaner.Start())
}
