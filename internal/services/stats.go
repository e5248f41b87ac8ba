package services

import (
	"context"
	"fmt"
	"socialnet/internal/models"
	"socialnet/internal/utils"
	"time"

	"gorm.io/gorm"
)

// Counts is the admin dashboard summary.
type Counts struct {
	Users    int64
	Posts    int64
	Comments int64
	Follows  int64
	Likes    int64
	ByStatus map[models.PostStatus]int64
}

const countsKey = "counts"

type StatsService struct {
	db    *gorm.DB
	cache *utils.TTLCache[Counts]
}

func NewStatsService(db *gorm.DB, ttl time.Duration) *StatsService {
	cache, err := utils.NewTTLCache[Counts](1, ttl)
	if err != nil {
		panic(err)
	}
	return &StatsService{db: db, cache: cache}
}

// Counts returns cached totals, recomputing them once the ttl has passed.
func (s *StatsService) Counts(ctx context.Context) (Counts, error) {
	if c, ok := s.cache.Get(countsKey); ok {
		return c, nil
	}

	tx := s.db.WithContext(ctx)
	c := Counts{ByStatus: make(map[models.PostStatus]int64, len(models.PostStatuses))}
	for _, q := range []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &c.Users},
		{&models.Post{}, &c.Posts},
		{&models.Comment{}, &c.Comments},
		{&models.Follow{}, &c.Follows},
		{&models.Like{}, &c.Likes},
	} {
		if err := tx.Model(q.model).Count(q.dst).Error; err != nil {
			return Counts{}, fmt.Errorf("count: %w", err)
		}
	}

	var rows []struct {
		Status models.PostStatus
		N      int64
	}
	if err := tx.Model(&models.Post{}).Select("status, count(*) as n").Group("status").Scan(&rows).Error; err != nil {
		return Counts{}, fmt.Errorf("count posts by status: %w", err)
	}
	for _, r := range rows {
		c.ByStatus[r.Status] = r.N
	}

	s.cache.Set(countsKey, c)
	return c, nil
}

// Invalidate drops the cached totals.
func (s *StatsService) Invalidate() {
	s.cache.Delete(countsKey)
}
