package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/services"
	"github.com/promptdeck/promptdeck/pkg/response"
)

// PromptHandler serves prompt submission, browsing and owner edits.
type PromptHandler struct {
	prompts *services.PromptService
}

func NewPromptHandler(prompts *services.PromptService) *PromptHandler {
	return &PromptHandler{prompts: prompts}
}

type createPromptRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=2000"`
	Content     string   `json:"content" validate:"required"`
	Price       int64    `json:"price" validate:"min=0"`
	CategoryID  *string  `json:"category_id"`
	Tags        []string `json:"tags" validate:"max=10,dive,max=30"`
	Type        string   `json:"type" validate:"required,oneof=MARKETPLACE SHARED marketplace shared"`
	IsPublic    *bool    `json:"is_public"`
	Draft       bool     `json:"draft"`
}

// POST /api/prompts
func (h *PromptHandler) Create(c *gin.Context) {
	var req createPromptRequest
	if !bindAndValidate(c, &req) {
		return
	}

	prompt, err := h.prompts.Create(requestContext(c), currentUserID(c), services.CreatePromptInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		Type:        req.Type,
		IsPublic:    req.IsPublic,
		Draft:       req.Draft,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, prompt)
}

// GET /api/prompts
//
// Public browsing: only approved, public prompts regardless of query params.
func (h *PromptHandler) List(c *gin.Context) {
	opts := services.ListPromptsOptions{
		Pagination: services.Pagination{
			Page:    parseIntQuery(c, "page", 1),
			PerPage: parseIntQuery(c, "limit", 0),
		},
		Filters: services.PromptFilters{
			Status:       "APPROVED",
			CategorySlug: c.Query("category"),
			Type:         c.Query("type"),
			Query:        c.Query("search"),
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

// GET /api/prompts/mine
func (h *PromptHandler) ListMine(c *gin.Context) {
	opts := services.ListPromptsOptions{
		Pagination: services.Pagination{
			Page:    parseIntQuery(c, "page", 1),
			PerPage: parseIntQuery(c, "limit", 0),
		},
		Filters: services.PromptFilters{
			AuthorID:       currentUserID(c),
			Status:         c.Query("status"),
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

// GET /api/prompts/:id
func (h *PromptHandler) Get(c *gin.Context) {
	prompt, err := h.prompts.Get(requestContext(c), c.Param("id"), currentUserID(c), isAdminRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prompt)
}

type updatePromptRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Content     *string  `json:"content"`
	Price       *int64   `json:"price" validate:"omitempty,min=0"`
	CategoryID  *string  `json:"category_id"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	Type        *string  `json:"type" validate:"omitempty,oneof=MARKETPLACE SHARED marketplace shared"`
	IsPublic    *bool    `json:"is_public"`
	Submit      bool     `json:"submit"`
}

// PUT /api/prompts/:id
func (h *PromptHandler) Update(c *gin.Context) {
	var req updatePromptRequest
	if !bindAndValidate(c, &req) {
		return
	}

	prompt, err := h.prompts.Update(requestContext(c), c.Param("id"), currentUserID(c), services.UpdatePromptInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		Type:        req.Type,
		IsPublic:    req.IsPublic,
		Submit:      req.Submit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prompt)
}

// DELETE /api/prompts/:id
func (h *PromptHandler) Delete(c *gin.Context) {
	err := h.prompts.Delete(requestContext(c), c.Param("id"), currentUserID(c), isAdminRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/prompts/:id/download
func (h *PromptHandler) Download(c *gin.Context) {
	prompt, err := h.prompts.Download(requestContext(c), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prompt)
}
