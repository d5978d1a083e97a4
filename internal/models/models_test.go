package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openModelTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&User{},
		&Category{},
		&Prompt{},
		&Follow{},
		&EmailVerification{},
		&Session{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func TestBeforeCreateAssignsUUID(t *testing.T) {
	db := openModelTestDB(t)

	user := &User{
		Email:    "minji@example.com",
		Username: "minji",
		Password: "hashed",
		Role:     RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	require.NotEmpty(t, user.ID)

	prompt := &Prompt{
		Title:       "요약 프롬프트",
		Description: "문서를 요약합니다",
		Content:     "다음 글을 요약해줘: {{text}}",
		AuthorID:    user.ID,
		Type:        PromptTypeShared,
		Status:      PromptStatusPending,
	}
	require.NoError(t, db.Create(prompt).Error)
	require.NotEmpty(t, prompt.ID)
}

func TestFollowPairUnique(t *testing.T) {
	db := openModelTestDB(t)

	a := &User{Email: "a@example.com", Username: "a", Password: "x", Role: RoleUser}
	b := &User{Email: "b@example.com", Username: "b", Password: "x", Role: RoleUser}
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(b).Error)

	require.NoError(t, db.Create(&Follow{FollowerID: a.ID, FollowingID: b.ID}).Error)
	err := db.Create(&Follow{FollowerID: a.ID, FollowingID: b.ID}).Error
	require.Error(t, err)
}

func TestPromptTagsRoundTrip(t *testing.T) {
	db := openModelTestDB(t)

	user := &User{Email: "c@example.com", Username: "c", Password: "x", Role: RoleCreator}
	require.NoError(t, db.Create(user).Error)

	prompt := &Prompt{
		Title:       "번역 프롬프트",
		Description: "영한 번역",
		Content:     "Translate to Korean: {{text}}",
		AuthorID:    user.ID,
		Type:        PromptTypeMarketplace,
		Status:      PromptStatusPending,
		Price:       5000,
		Tags:        []string{"translation", "korean"},
	}
	require.NoError(t, db.Create(prompt).Error)

	var loaded Prompt
	require.NoError(t, db.First(&loaded, "id = ?", prompt.ID).Error)
	require.Equal(t, []string{"translation", "korean"}, []string(loaded.Tags))
}

func TestEnumHelpers(t *testing.T) {
	require.True(t, ValidRole(RoleAdmin))
	require.False(t, ValidRole("SUPERUSER"))

	require.True(t, ValidPromptStatus(PromptStatusDraft))
	require.False(t, ValidPromptStatus("ARCHIVED"))

	require.True(t, ValidPromptType(PromptTypeShared))
	require.False(t, ValidPromptType("FREEMIUM"))
}
