package models

// Category is static reference data seeded at start-up.
type Category struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`

	Prompts []Prompt `gorm:"foreignKey:CategoryID" json:"-"`
}
