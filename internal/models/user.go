package models

import (
	"time"
)

type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Password   string     `gorm:"size:200;not null" json:"-"` // bcrypt hash
	Email      string     `gorm:"size:60;uniqueIndex;not null" json:"email"`
	BirthDate  *time.Time `gorm:"type:date" json:"birth_date"`
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Posts     []Post    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Comments  []Comment `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Likes     []Like    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Followers []Follow  `gorm:"foreignKey:FollowedID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // edges pointing at this user
	Following []Follow  `gorm:"foreignKey:FollowerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // edges leaving this user
}

func (u User) String() string {
	return "User(id=" + uintString(u.ID) + ", username=" + u.Username + ")"
}
