package models

import (
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// UserResponse is the transport form of a User. The password is never included.
type UserResponse struct {
	ID         uint     `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	BirthDate  *string  `json:"birth_date"`
	IsVerified bool     `json:"is_verified"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
	Posts      []uint   `json:"posts"`
	Followers  []string `json:"followers"`
	Following  []string `json:"following"`
}

type PostResponse struct {
	ID            uint     `json:"id"`
	Description   string   `json:"description"`
	MediaURL      string   `json:"media_url"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
	UserID        uint     `json:"user_id"`
	User          string   `json:"user"`
	Comments      []string `json:"comments"`
	LikedBy       []string `json:"liked_by"`
	LikesCount    int      `json:"likes_count"`
	CommentsCount int      `json:"comments_count"`
}

type CommentResponse struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	PostID    uint   `json:"post_id"`
	UserID    uint   `json:"user_id"`
	User      string `json:"user"`
}

// Serialize expects Posts, Followers.Follower and Following.Followed to be preloaded.
func (u *User) Serialize() UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		BirthDate:  FormatDate(u.BirthDate),
		IsVerified: u.IsVerified,
		CreatedAt:  formatTime(u.CreatedAt),
		UpdatedAt:  formatTime(u.UpdatedAt),
		Posts:      make([]uint, 0, len(u.Posts)),
		Followers:  make([]string, 0, len(u.Followers)),
		Following:  make([]string, 0, len(u.Following)),
	}
	for _, p := range u.Posts {
		resp.Posts = append(resp.Posts, p.ID)
	}
	for _, f := range u.Followers {
		resp.Followers = append(resp.Followers, f.Follower.Username)
	}
	for _, f := range u.Following {
		resp.Following = append(resp.Following, f.Followed.Username)
	}
	return resp
}

// Serialize expects User, Comments and LikedBy.User to be preloaded.
func (p *Post) Serialize() PostResponse {
	resp := PostResponse{
		ID:            p.ID,
		Description:   p.Description,
		MediaURL:      p.MediaURL,
		Status:        string(p.Status),
		CreatedAt:     formatTime(p.CreatedAt),
		UserID:        p.UserID,
		User:          p.User.Username,
		Comments:      make([]string, 0, len(p.Comments)),
		LikedBy:       make([]string, 0, len(p.LikedBy)),
		LikesCount:    len(p.LikedBy),
		CommentsCount: len(p.Comments),
	}
	for _, c := range p.Comments {
		resp.Comments = append(resp.Comments, c.Text)
	}
	for _, l := range p.LikedBy {
		resp.LikedBy = append(resp.LikedBy, l.User.Username)
	}
	return resp
}

// Serialize expects User to be preloaded.
func (c *Comment) Serialize() CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Text:      c.Text,
		CreatedAt: formatTime(c.CreatedAt),
		PostID:    c.PostID,
		UserID:    c.UserID,
		User:      c.User.Username,
	}
}

// ParseDate parses a YYYY-MM-DD birth date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
