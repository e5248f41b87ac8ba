package services

import (
	"context"
	"errors"
	"fmt"
	"socialnet/internal/models"

	"gorm.io/gorm"
)

type PostInput struct {
	Description *string `json:"description"`
	MediaURL    *string `json:"media_url"`
	Status      *string `json:"status"`
	UserID      *uint   `json:"user_id"`
}

type PostService struct {
	db     *gorm.DB
	events EventPublisher
}

func NewPostService(db *gorm.DB, events EventPublisher) *PostService {
	if events == nil {
		events = NopPublisher()
	}
	return &PostService{db: db, events: events}
}

func preloadPost(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("User").
		Preload("Comments", orderBy("id")).
		Preload("LikedBy", orderBy("created_at, user_id")).
		Preload("LikedBy.User")
}

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := preloadPost(s.db.WithContext(ctx)).Order("id").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return loadPost(preloadPost(s.db.WithContext(ctx)), id)
}

func loadPost(tx *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("load post %d: %w", id, err)
	}
	return &post, nil
}

func (s *PostService) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Description == nil {
			return missing("description")
		}
		if in.MediaURL == nil {
			return missing("media_url")
		}
		if in.UserID == nil {
			return missing("user_id")
		}
		if _, err := loadUser(tx, *in.UserID, ErrUserNotFound); err != nil {
			return err
		}

		post := models.Post{
			Description: *in.Description,
			MediaURL:    *in.MediaURL,
			Status:      models.PostStatusApproved,
			UserID:      *in.UserID,
		}
		if in.Status != nil {
			status, err := parseStatus(*in.Status)
			if err != nil {
				return err
			}
			post.Status = status
		}
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		id = post.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, newEvent(EventPostCreated, idKey(id), post.Serialize()))
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id uint, in PostInput) (*models.Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := loadPost(tx, id)
		if err != nil {
			return err
		}

		if in.Description != nil {
			post.Description = *in.Description
		}
		if in.MediaURL != nil {
			post.MediaURL = *in.MediaURL
		}
		if in.Status != nil {
			status, err := parseStatus(*in.Status)
			if err != nil {
				return err
			}
			post.Status = status
		}
		if in.UserID != nil && *in.UserID != post.UserID {
			if _, err := loadUser(tx, *in.UserID, ErrUserNotFound); err != nil {
				return err
			}
			post.UserID = *in.UserID
		}

		if err := tx.Omit("User", "Comments", "LikedBy").Save(post).Error; err != nil {
			return fmt.Errorf("update post %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, newEvent(EventPostUpdated, idKey(id), post.Serialize()))
	return post, nil
}

// Delete removes the post with its comments and likes.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadPost(tx, id); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("delete post %d likes: %w", id, err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete post %d comments: %w", id, err)
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, newEvent(EventPostDeleted, idKey(id), map[string]uint{"id": id}))
	return nil
}

func parseStatus(s string) (models.PostStatus, error) {
	status := models.PostStatus(s)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
