package models

import "time"

// User roles. Role changes happen only through admin action.
const (
	RoleUser    = "USER"
	RoleCreator = "CREATOR"
	RoleAdmin   = "ADMIN"
)

// ValidRole reports whether the supplied role is part of the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// User describes a marketplace account. Email and username are stored
// lowercased and unique.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`

	Role       string `gorm:"not null;default:USER" json:"role"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`

	LastLoginAt *time.Time `json:"last_login_at"`

	Prompts  []Prompt  `gorm:"foreignKey:AuthorID" json:"-"`
	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
