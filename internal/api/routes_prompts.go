package api

import (
	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/handlers"
)

func registerPromptRoutes(engine *gin.Engine, api *gin.RouterGroup, optionalAuth gin.HandlerFunc, promptHandler *handlers.PromptHandler) {
	// Browsing is public. The optional token matters only on single reads,
	// where owners and admins can fetch unapproved prompts; the listing
	// stays approved-and-public for everyone (own prompts live at /mine).
	public := engine.Group("/api/prompts")
	public.Use(optionalAuth)
	{
		public.GET("", promptHandler.List)
		public.GET("/:id", promptHandler.Get)
	}

	prompts := api.Group("/prompts")
	{
		prompts.POST("", promptHandler.Create)
		prompts.GET("/mine", promptHandler.ListMine)
		prompts.PUT("/:id", promptHandler.Update)
		prompts.DELETE("/:id", promptHandler.Delete)
		prompts.POST("/:id/download", promptHandler.Download)
	}
}
