package services

import (
	"context"
	"errors"
	"fmt"
	"socialnet/internal/models"

	"gorm.io/gorm"
)

type CommentInput struct {
	Text   *string `json:"text"`
	UserID *uint   `json:"user_id"`
	PostID *uint   `json:"post_id"`
}

type CommentService struct {
	db     *gorm.DB
	events EventPublisher
}

func NewCommentService(db *gorm.DB, events EventPublisher) *CommentService {
	if events == nil {
		events = NopPublisher()
	}
	return &CommentService{db: db, events: events}
}

// List returns every comment ordered by id.
func (s *CommentService) List(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).Preload("User").Preload("Post").Order("id").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	tx := s.db.WithContext(ctx)
	if _, err := loadPost(tx, postID); err != nil {
		return nil, err
	}
	var comments []models.Comment
	if err := tx.Preload("User").Where("post_id = ?", postID).Order("id").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return comments, nil
}

// Get loads a comment by id regardless of its post.
func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("User").Preload("Post").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("load comment %d: %w", id, err)
	}
	return &comment, nil
}

// loadScoped resolves commentID only when it belongs to postID.
func loadScoped(tx *gorm.DB, postID, commentID uint) (*models.Comment, error) {
	if _, err := loadPost(tx, postID); err != nil {
		return nil, err
	}
	var comment models.Comment
	err := tx.Where("id = ? AND post_id = ?", commentID, postID).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("load comment %d: %w", commentID, err)
	}
	return &comment, nil
}

func (s *CommentService) Create(ctx context.Context, postID uint, in CommentInput) (*models.Comment, error) {
	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Text == nil {
			return missing("text")
		}
		if in.UserID == nil {
			return missing("user_id")
		}
		if _, err := loadPost(tx, postID); err != nil {
			return err
		}
		if _, err := loadUser(tx, *in.UserID, ErrUserNotFound); err != nil {
			return err
		}

		comment := models.Comment{Text: *in.Text, PostID: postID, UserID: *in.UserID}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		id = comment.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, newEvent(EventCommentCreated, idKey(id), comment.Serialize()))
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, postID, commentID uint, in CommentInput) (*models.Comment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment, err := loadScoped(tx, postID, commentID)
		if err != nil {
			return err
		}

		if in.Text != nil {
			comment.Text = *in.Text
		}
		if in.UserID != nil && *in.UserID != comment.UserID {
			if _, err := loadUser(tx, *in.UserID, ErrUserNotFound); err != nil {
				return err
			}
			comment.UserID = *in.UserID
		}
		if in.PostID != nil && *in.PostID != comment.PostID {
			if _, err := loadPost(tx, *in.PostID); err != nil {
				return err
			}
			comment.PostID = *in.PostID
		}

		if err := tx.Omit("User", "Post").Save(comment).Error; err != nil {
			return fmt.Errorf("update comment %d: %w", commentID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, newEvent(EventCommentUpdated, idKey(commentID), comment.Serialize()))
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, postID, commentID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadScoped(tx, postID, commentID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, commentID).Error; err != nil {
			return fmt.Errorf("delete comment %d: %w", commentID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, newEvent(EventCommentDeleted, idKey(commentID), map[string]uint{"id": commentID, "post_id": postID}))
	return nil
}
