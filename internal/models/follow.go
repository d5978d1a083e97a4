package models

// Follow records that one user follows another. The pair is unique and
// self-follows are rejected at the service layer.
type Follow struct {
	BaseModel

	FollowerID  string `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowingID string `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair" json:"following_id"`

	Follower  *User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following *User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}
