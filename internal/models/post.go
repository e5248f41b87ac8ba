package models

import (
	"time"
)

type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusRejected PostStatus = "rejected"
	PostStatusDeleted  PostStatus = "deleted"
	PostStatusBlocked  PostStatus = "blocked"
	PostStatusArchived PostStatus = "archived"
)

// PostStatuses lists every status in display order.
var PostStatuses = []PostStatus{
	PostStatusPending,
	PostStatusApproved,
	PostStatusRejected,
	PostStatusDeleted,
	PostStatusBlocked,
	PostStatusArchived,
}

// Valid reports whether s is one of the known statuses. There is no
// transition table: any status may follow any other.
func (s PostStatus) Valid() bool {
	for _, known := range PostStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Description string     `gorm:"size:800;not null" json:"description"`
	MediaURL    string     `gorm:"size:200;not null" json:"media_url"`
	Status      PostStatus `gorm:"type:varchar(20);not null;default:'approved'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	LikedBy  []Like    `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (p Post) String() string {
	return "Post(id=" + uintString(p.ID) + ")"
}
