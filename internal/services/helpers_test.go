package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
)

func createTestUser(t *testing.T, db *gorm.DB, email, username, role string) *models.User {
	t.Helper()

	svc, err := NewUserService(db)
	require.NoError(t, err)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:    email,
		Username: username,
		Password: "password123!",
		Name:     "테스트 사용자",
	})
	require.NoError(t, err)

	if role != "" && role != models.RoleUser {
		user, err = svc.UpdateRole(context.Background(), user.ID, role)
		require.NoError(t, err)
	}
	return user
}

func firstCategoryID(t *testing.T, db *gorm.DB) string {
	t.Helper()

	var category models.Category
	require.NoError(t, db.First(&category).Error)
	return category.ID
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{}.Normalize()
	require.Equal(t, 1, p.Page)
	require.Equal(t, defaultPerPage, p.PerPage)
	require.Equal(t, 0, p.Offset())

	p = Pagination{Page: 3, PerPage: 500}.Normalize()
	require.Equal(t, maxPerPage, p.PerPage)
	require.Equal(t, 2*maxPerPage, p.Offset())
}
