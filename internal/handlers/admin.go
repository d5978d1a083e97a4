package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/services"
	"github.com/promptdeck/promptdeck/pkg/response"
)

// AdminHandler serves the moderation queue, user administration and the
// dashboard. All routes behind it require the ADMIN role.
type AdminHandler struct {
	users   *services.UserService
	prompts *services.PromptService
	stats   *services.StatsService
}

func NewAdminHandler(users *services.UserService, prompts *services.PromptService, stats *services.StatsService) *AdminHandler {
	return &AdminHandler{users: users, prompts: prompts, stats: stats}
}

// GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.stats.Dashboard(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	opts := services.ListUsersOptions{
		Pagination: services.Pagination{
			Page:    parseIntQuery(c, "page", 1),
			PerPage: parseIntQuery(c, "limit", 0),
		},
		Filters: services.UserFilters{
			Role:  c.Query("role"),
			Query: c.Query("search"),
		},
	}

	users, total, err := h.users.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := opts.Pagination.Normalize()
	response.SuccessWithMeta(c, http.StatusOK, users, response.NewMeta(page.Page, page.PerPage, total))
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// PUT /api/admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.UpdateRole(requestContext(c), c.Param("id"), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// GET /api/admin/prompts?status=
//
// The moderation queue defaults to pending submissions and sees private
// prompts too.
func (h *AdminHandler) ListPrompts(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		status = models.PromptStatusPending
	}

	opts := services.ListPromptsOptions{
		Pagination: services.Pagination{
			Page:    parseIntQuery(c, "page", 1),
			PerPage: parseIntQuery(c, "limit", 0),
		},
		Filters: services.PromptFilters{
			Status:         status,
			IncludePrivate: true,
		},
	}

	prompts, total, err := h.prompts.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := opts.Pagination.Normalize()
	response.SuccessWithMeta(c, http.StatusOK, prompts, response.NewMeta(page.Page, page.PerPage, total))
}

// POST /api/admin/prompts/:id/approve
func (h *AdminHandler) ApprovePrompt(c *gin.Context) {
	prompt, err := h.prompts.Approve(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prompt)
}

type rejectPromptRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// POST /api/admin/prompts/:id/reject
func (h *AdminHandler) RejectPrompt(c *gin.Context) {
	var req rejectPromptRequest
	// The reason is optional; an empty body is a bare rejection.
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}

	prompt, err := h.prompts.Reject(requestContext(c), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prompt)
}
