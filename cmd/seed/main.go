package main

import (
	"context"
	"flag"
	"fmt"
	"socialnet/internal/config"
	"socialnet/internal/db"
	"socialnet/internal/logger"
	"socialnet/internal/models"
	"socialnet/internal/services"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

func main() {
	users := flag.Int("users", 10, "number of users to create")
	posts := flag.Int("posts", 3, "posts per user")
	seed := flag.Int64("seed", 0, "random seed (0 uses the clock)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gofakeit.Seed(*seed)

	cfg := config.Load()
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Error.Fatalf("Failed to connect to database: %v", err)
	}

	s := seeder{
		users:    services.NewUserService(conn, nil),
		posts:    services.NewPostService(conn, nil),
		comments: services.NewCommentService(conn, nil),
		social:   services.NewSocialService(conn, nil),
	}
	if err := s.run(context.Background(), *users, *posts); err != nil {
		logger.Error.Fatalf("Seeding failed: %v", err)
	}
}

type seeder struct {
	users    *services.UserService
	posts    *services.PostService
	comments *services.CommentService
	social   *services.SocialService
}

func (s seeder) run(ctx context.Context, nUsers, postsPerUser int) error {
	var users []*models.User
	for i := 0; i < nUsers; i++ {
		u, err := s.createUser(ctx, i)
		if err != nil {
			return err
		}
		users = append(users, u)
	}
	logger.Info.Printf("Created %d users", len(users))
	if len(users) == 0 {
		return nil
	}

	var postIDs []uint
	for _, u := range users {
		for j := 0; j < postsPerUser; j++ {
			p, err := s.posts.Create(ctx, services.PostInput{
				Description: ptr(gofakeit.Sentence(gofakeit.Number(6, 30))),
				MediaURL:    ptr(gofakeit.ImageURL(640, 480)),
				Status:      ptr(gofakeit.RandomString(statusNames())),
				UserID:      &u.ID,
			})
			if err != nil {
				return fmt.Errorf("create post: %w", err)
			}
			postIDs = append(postIDs, p.ID)
		}
	}
	logger.Info.Printf("Created %d posts", len(postIDs))

	var follows, likes, comments int
	for _, u := range users {
		for _, other := range users {
			if other.ID == u.ID || !gofakeit.Bool() {
				continue
			}
			if _, err := s.social.Follow(ctx, other.ID, services.FollowInput{FollowerID: &u.ID}); err != nil {
				return fmt.Errorf("follow: %w", err)
			}
			follows++
		}
		for _, postID := range postIDs {
			if gofakeit.Number(0, 3) == 0 {
				if _, err := s.social.Like(ctx, u.ID, services.LikeInput{PostID: ptr(postID)}); err != nil {
					return fmt.Errorf("like: %w", err)
				}
				likes++
			}
			if gofakeit.Number(0, 5) == 0 {
				if _, err := s.comments.Create(ctx, postID, services.CommentInput{
					Text:   ptr(gofakeit.Sentence(gofakeit.Number(3, 15))),
					UserID: &u.ID,
				}); err != nil {
					return fmt.Errorf("comment: %w", err)
				}
				comments++
			}
		}
	}
	logger.Info.Printf("Created %d follows, %d likes, %d comments", follows, likes, comments)
	return nil
}

// createUser retries on username or email collisions.
func (s seeder) createUser(ctx context.Context, i int) (*models.User, error) {
	for attempt := 0; attempt < 5; attempt++ {
		name := gofakeit.Username()
		if len(name) > 14 {
			name = name[:14]
		}
		name = fmt.Sprintf("%s%d", name, gofakeit.Number(0, 99999))
		birth := gofakeit.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC))

		u, err := s.users.Create(ctx, services.UserInput{
			Username:   ptr(name),
			Password:   ptr(gofakeit.Password(true, true, true, false, false, 12)),
			Email:      ptr(fmt.Sprintf("%d.%s", i, gofakeit.Email())),
			BirthDate:  ptr(birth.Format("2006-01-02")),
			IsVerified: ptr(gofakeit.Bool()),
		})
		if err == nil {
			return u, nil
		}
		if !services.IsInvalid(err) {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	return nil, fmt.Errorf("create user %d: too many collisions", i)
}

func statusNames() []string {
	out := make([]string, 0, len(models.PostStatuses))
	for _, st := range models.PostStatuses {
		out = append(out, string(st))
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
