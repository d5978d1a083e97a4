package api

import (
	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/handlers"
)

func registerFollowRoutes(api *gin.RouterGroup, followHandler *handlers.FollowHandler) {
	follow := api.Group("/follow")
	{
		follow.POST("", followHandler.Follow)
		follow.DELETE("", followHandler.Unfollow)
		follow.GET("", followHandler.Query)
	}
}
