package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
	apperrors "github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/metrics"
)

// CreatePromptInput describes a prompt submission.
type CreatePromptInput struct {
	Title       string
	Description string
	Content     string
	Price       int64
	CategoryID  *string
	Tags        []string
	Type        string
	IsPublic    *bool
	// Draft keeps the prompt out of the moderation queue until the author
	// submits it.
	Draft bool
}

// UpdatePromptInput enumerates owner-mutable prompt attributes.
type UpdatePromptInput struct {
	Title       *string
	Description *string
	Content     *string
	Price       *int64
	CategoryID  *string
	Tags        []string
	Type        *string
	IsPublic    *bool
	// Submit moves a DRAFT into the moderation queue.
	Submit bool
}

// PromptFilters captures listing filters.
type PromptFilters struct {
	CategorySlug string
	Type         string
	Query        string
	AuthorID     string
	// Status is applied verbatim; the public listing pins it to APPROVED.
	Status string
	// IncludePrivate lifts the is_public condition for admin listings.
	IncludePrivate bool
}

// ListPromptsOptions controls pagination for prompt listings.
type ListPromptsOptions struct {
	Pagination
	Filters PromptFilters
}

// PromptService manages prompt submission, listing and moderation.
type PromptService struct {
	db *gorm.DB
}

// NewPromptService constructs a PromptService instance.
func NewPromptService(db *gorm.DB) (*PromptService, error) {
	if db == nil {
		return nil, errors.New("prompt service: db is required")
	}
	return &PromptService{db: db}, nil
}

// Create inserts a new prompt. Category existence is checked inside the same
// transaction as the insert so a concurrently removed category cannot leave a
// dangling reference. SHARED prompts always get price zero and submissions
// enter PENDING unless saved as a draft.
func (s *PromptService) Create(ctx context.Context, authorID string, input CreatePromptInput) (*models.Prompt, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(authorID) == "" {
		return nil, errors.New("prompt service: author id is required")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, apperrors.NewBadRequest("제목을 입력해주세요")
	}
	if description == "" {
		return nil, apperrors.NewBadRequest("설명을 입력해주세요")
	}
	if content == "" {
		return nil, apperrors.NewBadRequest("프롬프트 내용을 입력해주세요")
	}

	promptType := strings.ToUpper(strings.TrimSpace(input.Type))
	if !models.ValidPromptType(promptType) {
		return nil, apperrors.NewBadRequest("유효하지 않은 프롬프트 유형입니다")
	}

	price := input.Price
	if promptType == models.PromptTypeShared {
		price = 0
	}
	if price < 0 {
		return nil, apperrors.NewBadRequest("가격은 0 이상이어야 합니다")
	}

	status := models.PromptStatusPending
	if input.Draft {
		status = models.PromptStatusDraft
	}

	prompt := &models.Prompt{
		Title:       title,
		Description: description,
		Content:     content,
		Price:       price,
		AuthorID:    authorID,
		Tags:        datatypes.NewJSONSlice(normalizeTags(input.Tags)),
		Type:        promptType,
		IsPublic:    true,
		Status:      status,
	}
	if input.IsPublic != nil {
		prompt.IsPublic = *input.IsPublic
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.CategoryID != nil && *input.CategoryID != "" {
			var category models.Category
			if err := tx.First(&category, "id = ?", *input.CategoryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NewBadRequest("존재하지 않는 카테고리입니다")
				}
				return fmt.Errorf("load category: %w", err)
			}
			prompt.CategoryID = &category.ID
		}
		return tx.Create(prompt).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("prompt service: create prompt: %w", err)
	}

	if status == models.PromptStatusPending {
		metrics.PromptSubmissions.WithLabelValues(strings.ToLower(promptType)).Inc()
	}

	return prompt, nil
}

// List retrieves prompts matching the filters. Callers decide status and
// visibility scope; the public API pins status APPROVED with is_public true.
func (s *PromptService) List(ctx context.Context, opts ListPromptsOptions) ([]models.Prompt, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Pagination.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Prompt{})

	if status := strings.ToUpper(strings.TrimSpace(opts.Filters.Status)); status != "" {
		if !models.ValidPromptStatus(status) {
			return nil, 0, apperrors.NewBadRequest("유효하지 않은 상태 값입니다")
		}
		query = query.Where("status = ?", status)
	}
	if !opts.Filters.IncludePrivate {
		query = query.Where("is_public = ?", true)
	}
	if t := strings.ToUpper(strings.TrimSpace(opts.Filters.Type)); t != "" {
		if !models.ValidPromptType(t) {
			return nil, 0, apperrors.NewBadRequest("유효하지 않은 프롬프트 유형입니다")
		}
		query = query.Where("type = ?", t)
	}
	if slug := strings.TrimSpace(opts.Filters.CategorySlug); slug != "" {
		query = query.Where(
			"category_id IN (?)",
			s.db.Model(&models.Category{}).Select("id").Where("slug = ?", slug),
		)
	}
	if authorID := strings.TrimSpace(opts.Filters.AuthorID); authorID != "" {
		query = query.Where("author_id = ?", authorID)
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("prompt service: count prompts: %w", err)
	}

	var prompts []models.Prompt
	if err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Preload("Category").
		Preload("Author").
		Find(&prompts).Error; err != nil {
		return nil, 0, fmt.Errorf("prompt service: list prompts: %w", err)
	}

	return prompts, total, nil
}

// Get loads a single prompt enforcing visibility: anyone can read an approved
// public prompt, otherwise only the owner or an admin. Public reads bump the
// view counter.
func (s *PromptService) Get(ctx context.Context, id, viewerID string, viewerIsAdmin bool) (*models.Prompt, error) {
	ctx = ensureContext(ctx)

	var prompt models.Prompt
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		First(&prompt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("prompt service: get prompt: %w", err)
	}

	isOwner := viewerID != "" && prompt.AuthorID == viewerID
	publiclyVisible := prompt.Status == models.PromptStatusApproved && prompt.IsPublic

	if !publiclyVisible && !isOwner && !viewerIsAdmin {
		// Hidden prompts are indistinguishable from missing ones.
		return nil, apperrors.ErrNotFound
	}

	if publiclyVisible && !isOwner && !viewerIsAdmin {
		if err := s.db.WithContext(ctx).
			Model(&models.Prompt{}).
			Where("id = ?", prompt.ID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
			return nil, fmt.Errorf("prompt service: increment views: %w", err)
		}
		prompt.Views++
	}

	return &prompt, nil
}

// Update applies owner edits. Price and type rules from Create are
// re-applied, a draft can be submitted into the moderation queue, and a
// content change on an approved prompt sends it back to PENDING.
func (s *PromptService) Update(ctx context.Context, id, authorID string, input UpdatePromptInput) (*models.Prompt, error) {
	ctx = ensureContext(ctx)

	var prompt models.Prompt
	err := s.db.WithContext(ctx).First(&prompt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("prompt service: load prompt: %w", err)
	}

	if prompt.AuthorID != authorID {
		return nil, apperrors.ErrForbidden
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("제목을 입력해주세요")
		}
		prompt.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, apperrors.NewBadRequest("설명을 입력해주세요")
		}
		prompt.Description = description
	}
	resubmitted := false
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, apperrors.NewBadRequest("프롬프트 내용을 입력해주세요")
		}
		// Changing the content of an approved prompt invalidates the
		// review; it goes back through the moderation queue.
		if content != prompt.Content && prompt.Status == models.PromptStatusApproved {
			prompt.Status = models.PromptStatusPending
			resubmitted = true
		}
		prompt.Content = content
	}
	if input.Type != nil {
		t := strings.ToUpper(strings.TrimSpace(*input.Type))
		if !models.ValidPromptType(t) {
			return nil, apperrors.NewBadRequest("유효하지 않은 프롬프트 유형입니다")
		}
		prompt.Type = t
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.NewBadRequest("가격은 0 이상이어야 합니다")
		}
		prompt.Price = *input.Price
	}
	if prompt.Type == models.PromptTypeShared {
		prompt.Price = 0
	}
	if input.Tags != nil {
		prompt.Tags = datatypes.NewJSONSlice(normalizeTags(input.Tags))
	}
	if input.IsPublic != nil {
		prompt.IsPublic = *input.IsPublic
	}

	submitted := false
	if input.Submit {
		if prompt.Status != models.PromptStatusDraft {
			return nil, apperrors.NewConflict("이미 제출된 프롬프트입니다")
		}
		prompt.Status = models.PromptStatusPending
		submitted = true
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.CategoryID != nil {
			if *input.CategoryID == "" {
				prompt.CategoryID = nil
			} else {
				var category models.Category
				if err := tx.First(&category, "id = ?", *input.CategoryID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperrors.NewBadRequest("존재하지 않는 카테고리입니다")
					}
					return fmt.Errorf("load category: %w", err)
				}
				prompt.CategoryID = &category.ID
			}
		}
		return tx.Save(&prompt).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("prompt service: update prompt: %w", err)
	}

	if submitted || resubmitted {
		metrics.PromptSubmissions.WithLabelValues(strings.ToLower(prompt.Type)).Inc()
	}

	return &prompt, nil
}

// Delete removes a prompt. Owners may delete their own, admins any.
func (s *PromptService) Delete(ctx context.Context, id, requesterID string, requesterIsAdmin bool) error {
	ctx = ensureContext(ctx)

	var prompt models.Prompt
	err := s.db.WithContext(ctx).First(&prompt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("prompt service: load prompt: %w", err)
	}

	if prompt.AuthorID != requesterID && !requesterIsAdmin {
		return apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&prompt).Error; err != nil {
		return fmt.Errorf("prompt service: delete prompt: %w", err)
	}
	return nil
}

// Download records a download of an approved prompt and returns it.
func (s *PromptService) Download(ctx context.Context, id, userID string) (*models.Prompt, error) {
	ctx = ensureContext(ctx)

	var prompt models.Prompt
	err := s.db.WithContext(ctx).First(&prompt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("prompt service: load prompt: %w", err)
	}

	isOwner := prompt.AuthorID == userID
	if prompt.Status != models.PromptStatusApproved && !isOwner {
		return nil, apperrors.ErrNotFound
	}
	if !prompt.IsPublic && !isOwner {
		return nil, apperrors.ErrNotFound
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Prompt{}).
		Where("id = ?", prompt.ID).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error; err != nil {
		return nil, fmt.Errorf("prompt service: increment downloads: %w", err)
	}
	prompt.Downloads++

	return &prompt, nil
}

// Approve moves a pending prompt to APPROVED. The status predicate lives in
// the UPDATE itself so two admins deciding at once cannot both win.
func (s *PromptService) Approve(ctx context.Context, id string) (*models.Prompt, error) {
	return s.moderate(ctx, id, models.PromptStatusApproved, "")
}

// Reject moves a pending prompt to REJECTED with an optional reason.
func (s *PromptService) Reject(ctx context.Context, id, reason string) (*models.Prompt, error) {
	return s.moderate(ctx, id, models.PromptStatusRejected, strings.TrimSpace(reason))
}

func (s *PromptService) moderate(ctx context.Context, id, decision, reason string) (*models.Prompt, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{
		"status":        decision,
		"reject_reason": reason,
	}

	result := s.db.WithContext(ctx).
		Model(&models.Prompt{}).
		Where("id = ? AND status = ?", id, models.PromptStatusPending).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("prompt service: moderate prompt: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var prompt models.Prompt
		err := s.db.WithContext(ctx).First(&prompt, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("prompt service: load prompt: %w", err)
		}
		return nil, apperrors.NewConflict("이미 심사가 완료된 프롬프트입니다")
	}

	metrics.ModerationDecisions.WithLabelValues(strings.ToLower(decision)).Inc()

	var prompt models.Prompt
	if err := s.db.WithContext(ctx).
		Preload("Author").
		First(&prompt, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("prompt service: reload prompt: %w", err)
	}
	return &prompt, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
