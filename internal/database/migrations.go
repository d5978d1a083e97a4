package database

import (
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Prompt{},
		&models.Follow{},
		&models.EmailVerification{},
		&models.Session{},
	)
}

// SeedData populates the default prompt categories.
func SeedData(db *gorm.DB) error {
	categories := []models.Category{
		{
			Name:        "글쓰기",
			Slug:        "writing",
			Description: "블로그, 카피, 소설 등 글쓰기 프롬프트",
		},
		{
			Name:        "개발",
			Slug:        "coding",
			Description: "코드 생성과 리뷰를 위한 프롬프트",
		},
		{
			Name:        "마케팅",
			Slug:        "marketing",
			Description: "광고 문구, SNS 콘텐츠 프롬프트",
		},
		{
			Name:        "교육",
			Slug:        "education",
			Description: "학습과 강의 준비용 프롬프트",
		},
		{
			Name:        "이미지 생성",
			Slug:        "image",
			Description: "이미지 생성 모델용 프롬프트",
		},
	}

	for _, category := range categories {
		err := db.Where(models.Category{Slug: category.Slug}).
			Attrs(category).
			FirstOrCreate(&models.Category{}).Error
		if err != nil {
			return err
		}
	}

	return nil
}
