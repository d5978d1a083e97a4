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

// FollowStatus summarises the relationship between two users.
type FollowStatus struct {
	Following  bool  `json:"following"`
	FollowedBy bool  `json:"followed_by"`
	Followers  int64 `json:"followers"`
	Followings int64 `json:"followings"`
}

// FollowService manages the follower graph.
type FollowService struct {
	db *gorm.DB
}

// NewFollowService constructs a FollowService instance.
func NewFollowService(db *gorm.DB) (*FollowService, error) {
	if db == nil {
		return nil, errors.New("follow service: db is required")
	}
	return &FollowService{db: db}, nil
}

// Follow records followerID following followingID. Self-follows and duplicate
// pairs are rejected.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	ctx = ensureContext(ctx)

	followerID = strings.TrimSpace(followerID)
	followingID = strings.TrimSpace(followingID)
	if followerID == "" || followingID == "" {
		return nil, apperrors.NewBadRequest("팔로우할 사용자를 지정해주세요")
	}
	if followerID == followingID {
		return nil, apperrors.NewBadRequest("자기 자신을 팔로우할 수 없습니다")
	}

	var target models.User
	err := s.db.WithContext(ctx).Select("id").First(&target, "id = ?", followingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("follow service: load target user: %w", err)
	}

	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	if err := s.db.WithContext(ctx).Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("이미 팔로우한 사용자입니다")
		}
		return nil, fmt.Errorf("follow service: create follow: %w", err)
	}
	return follow, nil
}

// Unfollow removes the pair. Removing an absent pair reports not found.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("follow service: delete follow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Following lists the users that userID follows.
func (s *FollowService) Following(ctx context.Context, userID string, page Pagination) ([]models.User, int64, error) {
	return s.listSide(ctx, userID, "follower_id", "following_id", page)
}

// Followers lists the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID string, page Pagination) ([]models.User, int64, error) {
	return s.listSide(ctx, userID, "following_id", "follower_id", page)
}

func (s *FollowService) listSide(ctx context.Context, userID, whereCol, selectCol string, page Pagination) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)
	page = page.Normalize()

	base := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where(whereCol+" = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("follow service: count follows: %w", err)
	}

	sub := s.db.Model(&models.Follow{}).
		Select(selectCol).
		Where(whereCol+" = ?", userID)

	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("username ASC").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("follow service: list users: %w", err)
	}

	return users, total, nil
}

// Status reports the relationship between viewerID and userID together with
// the target's follower counts.
func (s *FollowService) Status(ctx context.Context, viewerID, userID string) (*FollowStatus, error) {
	ctx = ensureContext(ctx)

	status := &FollowStatus{}

	if err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&status.Followers).Error; err != nil {
		return nil, fmt.Errorf("follow service: count followers: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&status.Followings).Error; err != nil {
		return nil, fmt.Errorf("follow service: count followings: %w", err)
	}

	if viewerID != "" && viewerID != userID {
		var n int64
		if err := s.db.WithContext(ctx).
			Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", viewerID, userID).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("follow service: check following: %w", err)
		}
		status.Following = n > 0

		if err := s.db.WithContext(ctx).
			Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", userID, viewerID).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("follow service: check followed by: %w", err)
		}
		status.FollowedBy = n > 0
	}

	return status, nil
}
