package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/services"
	apperrors "github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/response"
)

// FollowHandler serves the follower graph endpoints.
type FollowHandler struct {
	follows *services.FollowService
}

func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

type followRequest struct {
	FollowingID string `json:"following_id" validate:"required"`
}

// POST /api/follow
func (h *FollowHandler) Follow(c *gin.Context) {
	var req followRequest
	if !bindAndValidate(c, &req) {
		return
	}

	follow, err := h.follows.Follow(requestContext(c), currentUserID(c), req.FollowingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, follow)
}

// DELETE /api/follow?following_id=
func (h *FollowHandler) Unfollow(c *gin.Context) {
	followingID := strings.TrimSpace(c.Query("following_id"))
	if followingID == "" {
		response.Error(c, apperrors.NewBadRequest("following_id 파라미터가 필요합니다"))
		return
	}

	if err := h.follows.Unfollow(requestContext(c), currentUserID(c), followingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unfollowed": true})
}

// GET /api/follow?type=following|followers|status&user_id=
func (h *FollowHandler) Query(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		userID = currentUserID(c)
	}

	page := services.Pagination{
		Page:    parseIntQuery(c, "page", 1),
		PerPage: parseIntQuery(c, "limit", 0),
	}

	ctx := requestContext(c)
	switch strings.ToLower(strings.TrimSpace(c.Query("type"))) {
	case "", "following":
		users, total, err := h.follows.Following(ctx, userID, page)
		if err != nil {
			response.Error(c, err)
			return
		}
		norm := page.Normalize()
		response.SuccessWithMeta(c, http.StatusOK, users, response.NewMeta(norm.Page, norm.PerPage, total))
	case "followers":
		users, total, err := h.follows.Followers(ctx, userID, page)
		if err != nil {
			response.Error(c, err)
			return
		}
		norm := page.Normalize()
		response.SuccessWithMeta(c, http.StatusOK, users, response.NewMeta(norm.Page, norm.PerPage, total))
	case "status":
		status, err := h.follows.Status(ctx, currentUserID(c), userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, status)
	default:
		response.Error(c, apperrors.NewBadRequest("type 파라미터는 following, followers, status 중 하나여야 합니다"))
	}
}
