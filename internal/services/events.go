package services

import (
	"context"
	"time"
)

// 领域事件类型
const (
	EventUserCreated    = "user.created"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
	EventPostLiked      = "post.liked"
	EventPostUnliked    = "post.unliked"
)

// Event is published after the owning transaction commits.
type Event struct {
	Type    string    `json:"type"`
	Key     string    `json:"key"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// EventPublisher delivers events best-effort; a failed publish never fails
// the request that produced it.
type EventPublisher interface {
	Publish(ctx context.Context, e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// NopPublisher discards every event.
func NopPublisher() EventPublisher { return nopPublisher{} }

func newEvent(typ, key string, payload any) Event {
	return Event{Type: typ, Key: key, Payload: payload, At: time.Now().UTC()}
}

type edgePayload struct {
	FromID uint `json:"from_id"`
	ToID   uint `json:"to_id"`
}
