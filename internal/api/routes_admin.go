package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/handlers"
	"github.com/promptdeck/promptdeck/internal/middleware"
)

// registerAdminRoutes mounts the moderation and administration surface. The
// role check reads the current role from the database so a demotion takes
// effect before the token expires.
func registerAdminRoutes(api *gin.RouterGroup, db *gorm.DB, categoryHandler *handlers.CategoryHandler, adminHandler *handlers.AdminHandler) {
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(db))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)

		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)

		admin.GET("/prompts", adminHandler.ListPrompts)
		admin.POST("/prompts/:id/approve", adminHandler.ApprovePrompt)
		admin.POST("/prompts/:id/reject", adminHandler.RejectPrompt)

		admin.POST("/categories", categoryHandler.Create)
		admin.PUT("/categories/:id", categoryHandler.Update)
	}
}
