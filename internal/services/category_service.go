package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
	apperrors "github.com/promptdeck/promptdeck/pkg/errors"
)

// CategoryInput describes the fields for category upkeep.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

// CategoryService serves the category catalogue. Mutations are admin-only and
// enforced at the routing layer.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService constructs a CategoryService instance.
func NewCategoryService(db *gorm.DB) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	return &CategoryService{db: db}, nil
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	ctx = ensureContext(ctx)

	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("category service: list categories: %w", err)
	}
	return categories, nil
}

// GetBySlug loads one category by its slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	err := s.db.WithContext(ctx).First(&category, "slug = ?", strings.TrimSpace(slug)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("category service: get category: %w", err)
	}
	return &category, nil
}

// Create adds a category to the catalogue.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if name == "" {
		return nil, apperrors.NewBadRequest("카테고리 이름을 입력해주세요")
	}
	if slug == "" {
		return nil, apperrors.NewBadRequest("카테고리 슬러그를 입력해주세요")
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
	}

	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("이미 존재하는 카테고리입니다")
		}
		return nil, fmt.Errorf("category service: create category: %w", err)
	}
	return category, nil
}

// Update edits an existing category.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("category service: load category: %w", err)
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	if slug := strings.ToLower(strings.TrimSpace(input.Slug)); slug != "" {
		category.Slug = slug
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		category.Description = desc
	}

	if err := s.db.WithContext(ctx).Save(&category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("이미 존재하는 카테고리입니다")
		}
		return nil, fmt.Errorf("category service: update category: %w", err)
	}
	return &category, nil
}
