package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/middleware"
	"github.com/promptdeck/promptdeck/internal/models"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID returns the authenticated user id, empty for anonymous requests.
func currentUserID(c *gin.Context) string {
	v, ok := c.Get(middleware.CtxUserIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// currentSessionID returns the session id carried in the access token.
func currentSessionID(c *gin.Context) string {
	v, ok := c.Get(middleware.CtxSessionIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// isAdminRequest reports whether the token carries the admin role. Routes that
// must be airtight re-check the role against the database via middleware.
func isAdminRequest(c *gin.Context) bool {
	v, ok := c.Get(middleware.CtxUserRoleKey)
	if !ok {
		return false
	}
	role, _ := v.(string)
	return role == models.RoleAdmin
}
