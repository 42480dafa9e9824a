package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/aiblog/models"
)

// Stats holds site-wide counters.
type Stats struct {
	UserCount    int64 `json:"user_count"`
	PostCount    int64 `json:"post_count"`
	CommentCount int64 `json:"comment_count"`
	LikeCount    int64 `json:"like_count"`
}

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Get counts users, published posts, comments and likes. A failed count reads as 0.
func (s *StatsService) Get(ctx context.Context) Stats {
	db := s.db.WithContext(ctx)
	var st Stats
	if err := db.Model(&models.User{}).Count(&st.UserCount).Error; err != nil {
		st.UserCount = 0
	}
	if err := db.Model(&models.Post{}).Where("published = ?", true).Count(&st.PostCount).Error; err != nil {
		st.PostCount = 0
	}
	if err := db.Model(&models.Comment{}).Count(&st.CommentCount).Error; err != nil {
		st.CommentCount = 0
	}
	if err := db.Model(&models.Like{}).Count(&st.LikeCount).Error; err != nil {
		st.LikeCount = 0
	}
	return st
}
