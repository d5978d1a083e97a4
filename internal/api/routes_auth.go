package api

import (
	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/handlers"
)

func registerAuthRoutes(engine *gin.Engine, api *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/verify-email", authHandler.VerifyEmail)
		auth.POST("/resend-verification", authHandler.ResendVerification)
		auth.POST("/refresh", authHandler.Refresh)
	}

	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)
}
