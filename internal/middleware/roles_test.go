package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
)

func openRolesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newRolesTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/admin-only", func(c *gin.Context) {
		// Simulate the Auth middleware having run.
		c.Set(CtxUserIDKey, c.GetHeader("X-Test-User"))
	}, RequireAdmin(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	db := openRolesTestDB(t)
	admin := &models.User{Email: "admin@example.com", Username: "admin", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)

	r := newRolesTestRouter(t, db)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("X-Test-User", admin.ID)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminRejectsUserRole(t *testing.T) {
	db := openRolesTestDB(t)
	user := &models.User{Email: "user@example.com", Username: "user", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(user).Error)

	r := newRolesTestRouter(t, db)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("X-Test-User", user.ID)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminRejectsUnknownUser(t *testing.T) {
	db := openRolesTestDB(t)

	r := newRolesTestRouter(t, db)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("X-Test-User", uuid.NewString())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminSeesRoleChanges(t *testing.T) {
	db := openRolesTestDB(t)
	user := &models.User{Email: "u2@example.com", Username: "u2", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(user).Error)

	r := newRolesTestRouter(t, db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("X-Test-User", user.ID)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Promote and retry: the middleware reads the current role.
	require.NoError(t, db.Model(user).Update("role", models.RoleAdmin).Error)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("X-Test-User", user.ID)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
