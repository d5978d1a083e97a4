package models

import "gorm.io/datatypes"

// Moderation statuses. Submissions always enter PENDING; only admins move
// them to APPROVED or REJECTED. DRAFT is the owner-controlled saved state.
const (
	PromptStatusPending  = "PENDING"
	PromptStatusApproved = "APPROVED"
	PromptStatusRejected = "REJECTED"
	PromptStatusDraft    = "DRAFT"
)

// Listing types. SHARED prompts are free; their price is coerced to zero.
const (
	PromptTypeMarketplace = "MARKETPLACE"
	PromptTypeShared      = "SHARED"
)

// ValidPromptStatus reports whether the status belongs to the moderation enum.
func ValidPromptStatus(status string) bool {
	switch status {
	case PromptStatusPending, PromptStatusApproved, PromptStatusRejected, PromptStatusDraft:
		return true
	}
	return false
}

// ValidPromptType reports whether the listing type is known.
func ValidPromptType(t string) bool {
	return t == PromptTypeMarketplace || t == PromptTypeShared
}

// Prompt is the core sellable/shareable content unit: a user-submitted text
// template for use with an AI model.
type Prompt struct {
	BaseModel

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"not null" json:"description"`
	Content     string `gorm:"not null" json:"content"`

	Price      int64     `gorm:"not null;default:0" json:"price"`
	CategoryID *string   `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	AuthorID   string    `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     *User     `json:"author,omitempty"`

	Tags datatypes.JSONSlice[string] `json:"tags"`

	Type     string `gorm:"not null;index" json:"type"`
	IsPublic bool   `gorm:"default:true" json:"is_public"`
	Status   string `gorm:"not null;index;default:PENDING" json:"status"`

	RejectReason string `json:"reject_reason,omitempty"`

	Views       int64   `gorm:"default:0" json:"views"`
	Downloads   int64   `gorm:"default:0" json:"downloads"`
	Rating      float64 `gorm:"default:0" json:"rating"`
	RatingCount int64   `gorm:"default:0" json:"rating_count"`
}
