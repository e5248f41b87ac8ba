package services

import (
	"context"
	"errors"
	"fmt"
	"socialnet/internal/models"

	"gorm.io/gorm"
)

type FollowInput struct {
	FollowerID *uint `json:"follower_id"`
}

type LikeInput struct {
	PostID *uint `json:"post_id"`
}

// SocialService manages follow and like edges.
type SocialService struct {
	db     *gorm.DB
	events EventPublisher
}

func NewSocialService(db *gorm.DB, events EventPublisher) *SocialService {
	if events == nil {
		events = NopPublisher()
	}
	return &SocialService{db: db, events: events}
}

// Follow makes in.FollowerID follow followedID and returns the followed user.
func (s *SocialService) Follow(ctx context.Context, followedID uint, in FollowInput) (*models.User, error) {
	if in.FollowerID == nil {
		return nil, missing("follower_id")
	}
	followerID := *in.FollowerID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(tx, followedID, ErrFollowedNotFound); err != nil {
			return err
		}
		if _, err := loadUser(tx, followerID, ErrFollowerNotFound); err != nil {
			return err
		}
		if followerID == followedID {
			return ErrSelfFollow
		}
		exists, err := edgeExists(tx, &models.Follow{}, "follower_id = ? AND followed_id = ?", followerID, followedID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyFollowing
		}

		edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
		if err := tx.Omit("Follower", "Followed").Create(&edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyFollowing
			}
			return fmt.Errorf("follow %d -> %d: %w", followerID, followedID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, newEvent(EventUserFollowed, idKey(followedID), edgePayload{FromID: followerID, ToID: followedID}))
	return loadUser(preloadUser(s.db.WithContext(ctx)), followedID, ErrFollowedNotFound)
}

func (s *SocialService) Unfollow(ctx context.Context, followedID uint, in FollowInput) error {
	if in.FollowerID == nil {
		return missing("follower_id")
	}
	followerID := *in.FollowerID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(tx, followedID, ErrUserNotFound); err != nil {
			return err
		}
		if _, err := loadUser(tx, followerID, ErrFollowerNotFound); err != nil {
			return err
		}
		res := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&models.Follow{})
		if res.Error != nil {
			return fmt.Errorf("unfollow %d -> %d: %w", followerID, followedID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFollowing
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, newEvent(EventUserUnfollowed, idKey(followedID), edgePayload{FromID: followerID, ToID: followedID}))
	return nil
}

// Like records that userID likes in.PostID and returns the liked post.
func (s *SocialService) Like(ctx context.Context, userID uint, in LikeInput) (*models.Post, error) {
	if in.PostID == nil {
		return nil, missing("post_id")
	}
	postID := *in.PostID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(tx, userID, ErrUserNotFound); err != nil {
			return err
		}
		if _, err := loadPost(tx, postID); err != nil {
			return err
		}
		exists, err := edgeExists(tx, &models.Like{}, "user_id = ? AND post_id = ?", userID, postID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyLiked
		}

		edge := models.Like{UserID: userID, PostID: postID}
		if err := tx.Omit("User", "Post").Create(&edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLiked
			}
			return fmt.Errorf("like post %d by %d: %w", postID, userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, newEvent(EventPostLiked, idKey(postID), edgePayload{FromID: userID, ToID: postID}))
	return loadPost(preloadPost(s.db.WithContext(ctx)), postID)
}

// Unlike removes the like and returns the user.
func (s *SocialService) Unlike(ctx context.Context, userID uint, in LikeInput) (*models.User, error) {
	if in.PostID == nil {
		return nil, missing("post_id")
	}
	postID := *in.PostID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(tx, userID, ErrUserNotFound); err != nil {
			return err
		}
		if _, err := loadPost(tx, postID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return fmt.Errorf("unlike post %d by %d: %w", postID, userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotLiked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, newEvent(EventPostUnliked, idKey(postID), edgePayload{FromID: userID, ToID: postID}))
	return loadUser(preloadUser(s.db.WithContext(ctx)), userID, ErrUserNotFound)
}

func edgeExists(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check edge: %w", err)
	}
	return count > 0, nil
}
