package services

import (
	"context"
	"errors"
	"fmt"
	"socialnet/internal/models"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordCost is the bcrypt cost used for new hashes.
var PasswordCost = bcrypt.DefaultCost

// UserInput carries a create or partial-update request. Nil fields are absent.
type UserInput struct {
	Username   *string `json:"username"`
	Password   *string `json:"password"`
	Email      *string `json:"email"`
	BirthDate  *string `json:"birth_date"`
	IsVerified *bool   `json:"is_verified"`
}

type UserService struct {
	db     *gorm.DB
	events EventPublisher
}

func NewUserService(db *gorm.DB, events EventPublisher) *UserService {
	if events == nil {
		events = NopPublisher()
	}
	return &UserService{db: db, events: events}
}

// preloadUser loads everything UserResponse needs.
func preloadUser(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Posts", orderBy("id")).
		Preload("Followers", orderBy("created_at, follower_id")).
		Preload("Followers.Follower").
		Preload("Following", orderBy("created_at, followed_id")).
		Preload("Following.Followed")
}

func orderBy(expr string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Order(expr)
	}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := preloadUser(s.db.WithContext(ctx)).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListWithActivity also loads comments and likes for the admin grid.
func (s *UserService) ListWithActivity(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := preloadUser(s.db.WithContext(ctx)).
		Preload("Comments", orderBy("id")).
		Preload("Likes", orderBy("created_at, post_id")).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return loadUser(preloadUser(s.db.WithContext(ctx)), id, ErrUserNotFound)
}

// loadUser fetches a user by id and maps a missing row to notFound.
func loadUser(tx *gorm.DB, id uint, notFound error) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Field order matches the checks clients have always seen.
		if in.Username == nil {
			return missing("username")
		}
		if err := checkUnique(tx, "username", *in.Username, ErrUsernameTaken); err != nil {
			return err
		}
		if in.Password == nil {
			return missing("password")
		}
		if in.Email == nil {
			return missing("email")
		}
		if err := checkUnique(tx, "email", *in.Email, ErrEmailTaken); err != nil {
			return err
		}

		hash, err := hashPassword(*in.Password)
		if err != nil {
			return err
		}
		user = models.User{
			Username: *in.Username,
			Password: hash,
			Email:    *in.Email,
		}
		if in.BirthDate != nil {
			bd, err := parseBirthDate(*in.BirthDate)
			if err != nil {
				return err
			}
			user.BirthDate = bd
		}
		if in.IsVerified != nil {
			user.IsVerified = *in.IsVerified
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, newEvent(EventUserCreated, idKey(user.ID), user.Serialize()))
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = loadUser(tx, id, ErrUserNotFound)
		if err != nil {
			return err
		}

		if in.Username != nil && *in.Username != user.Username {
			if err := checkUnique(tx, "username", *in.Username, ErrUsernameTaken); err != nil {
				return err
			}
			user.Username = *in.Username
		}
		if in.Password != nil {
			hash, err := hashPassword(*in.Password)
			if err != nil {
				return err
			}
			user.Password = hash
		}
		if in.Email != nil && *in.Email != user.Email {
			if err := checkUnique(tx, "email", *in.Email, ErrEmailTaken); err != nil {
				return err
			}
			user.Email = *in.Email
		}
		if in.BirthDate != nil {
			if *in.BirthDate == "" {
				user.BirthDate = nil
			} else {
				bd, err := parseBirthDate(*in.BirthDate)
				if err != nil {
					return err
				}
				user.BirthDate = bd
			}
		}
		if in.IsVerified != nil {
			user.IsVerified = *in.IsVerified
		}

		if err := tx.Save(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return fmt.Errorf("update user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, newEvent(EventUserUpdated, idKey(id), updated.Serialize()))
	return updated, nil
}

// Delete removes the user together with their posts (and everything hanging
// off those posts), their comments, likes and every follow edge touching them.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(tx, id, ErrUserNotFound); err != nil {
			return err
		}

		ownPosts := tx.Model(&models.Post{}).Select("id").Where("user_id = ?", id)
		steps := []struct {
			what  string
			query *gorm.DB
			model any
		}{
			{"likes on posts", tx.Where("post_id IN (?)", ownPosts), &models.Like{}},
			{"comments on posts", tx.Where("post_id IN (?)", ownPosts), &models.Comment{}},
			{"likes", tx.Where("user_id = ?", id), &models.Like{}},
			{"comments", tx.Where("user_id = ?", id), &models.Comment{}},
			{"follows", tx.Where("follower_id = ? OR followed_id = ?", id, id), &models.Follow{}},
			{"posts", tx.Where("user_id = ?", id), &models.Post{}},
		}
		for _, step := range steps {
			if err := step.query.Delete(step.model).Error; err != nil {
				return fmt.Errorf("delete user %d %s: %w", id, step.what, err)
			}
		}

		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, newEvent(EventUserDeleted, idKey(id), map[string]uint{"id": id}))
	return nil
}

func checkUnique(tx *gorm.DB, column, value string, taken error) error {
	var count int64
	if err := tx.Model(&models.User{}).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return fmt.Errorf("check %s: %w", column, err)
	}
	if count > 0 {
		return taken
	}
	return nil
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(user *models.User, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(plain)) == nil
}

func parseBirthDate(s string) (*time.Time, error) {
	t, err := models.ParseDate(s)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}
	return &t, nil
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
