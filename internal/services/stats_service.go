package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
)

const recentActivityLimit = 10

// DashboardStats aggregates the figures shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers      int64            `json:"total_users"`
	VerifiedUsers   int64            `json:"verified_users"`
	TotalPrompts    int64            `json:"total_prompts"`
	PromptsByStatus map[string]int64 `json:"prompts_by_status"`
	PendingReviews  int64            `json:"pending_reviews"`
	// Revenue sums the price of approved marketplace prompts.
	Revenue int64 `json:"revenue"`

	RecentPrompts []models.Prompt `json:"recent_prompts"`
	RecentUsers   []models.User   `json:"recent_users"`
}

// StatsService computes admin dashboard aggregates.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(db *gorm.DB) (*StatsService, error) {
	if db == nil {
		return nil, errors.New("stats service: db is required")
	}
	return &StatsService{db: db}, nil
}

// Dashboard gathers the current marketplace figures.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	ctx = ensureContext(ctx)

	stats := &DashboardStats{
		PromptsByStatus: make(map[string]int64),
	}

	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("stats service: count users: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_verified = ?", true).
		Count(&stats.VerifiedUsers).Error; err != nil {
		return nil, fmt.Errorf("stats service: count verified users: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := s.db.WithContext(ctx).
		Model(&models.Prompt{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("stats service: count prompts: %w", err)
	}
	for _, row := range rows {
		stats.PromptsByStatus[row.Status] = row.Count
		stats.TotalPrompts += row.Count
	}
	stats.PendingReviews = stats.PromptsByStatus[models.PromptStatusPending]

	var revenue struct{ Total int64 }
	if err := s.db.WithContext(ctx).
		Model(&models.Prompt{}).
		Select("COALESCE(SUM(price), 0) AS total").
		Where("status = ? AND type = ?", models.PromptStatusApproved, models.PromptTypeMarketplace).
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("stats service: sum revenue: %w", err)
	}
	stats.Revenue = revenue.Total

	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(recentActivityLimit).
		Preload("Author").
		Find(&stats.RecentPrompts).Error; err != nil {
		return nil, fmt.Errorf("stats service: recent prompts: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(recentActivityLimit).
		Find(&stats.RecentUsers).Error; err != nil {
		return nil, fmt.Errorf("stats service: recent users: %w", err)
	}

	return stats, nil
}
