package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

// LikeService toggles and counts likes. The unique (post_id, user_id) index
// keeps concurrent toggles from producing duplicate likes.
type LikeService struct {
	db *gorm.DB
}

func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{db: db}
}

// Toggle likes the post, or removes the caller's like if one exists.
func (s *LikeService) Toggle(ctx context.Context, id models.Identity, postID uint) (bool, error) {
	if _, err := findPost(ctx, s.db, postID); err != nil {
		return false, err
	}
	if _, err := currentIdentity(ctx, s.db, id); err != nil {
		return false, err
	}

	db := s.db.WithContext(ctx)
	var like models.Like
	err := db.Where("post_id = ? AND user_id = ?", postID, id.UserID).First(&like).Error
	switch {
	case err == nil:
		if err := db.Delete(&models.Like{}, like.ID).Error; err != nil {
			return true, utils.Internal(50041, "failed to remove like", err)
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, utils.Internal(50042, "failed to load like", err)
	}

	// Outside a transaction so a row committed by a concurrent toggle stays visible below.
	err = db.Session(&gorm.Session{SkipDefaultTransaction: true}).Create(&models.Like{PostID: postID, UserID: id.UserID}).Error
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	// Drivers without error translation still report the constraint; a like
	// that is now visible means a concurrent toggle won the insert.
	if liked, herr := s.HasLiked(ctx, id, postID); herr == nil && liked {
		return true, nil
	}
	return false, utils.Internal(50043, "failed to like post", err)
}

// Count returns the number of likes on a post.
func (s *LikeService) Count(ctx context.Context, postID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, utils.Internal(50044, "failed to count likes", err)
	}
	return n, nil
}

// HasLiked reports whether the caller likes the post.
func (s *LikeService) HasLiked(ctx context.Context, id models.Identity, postID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, id.UserID).
		Count(&n).Error
	if err != nil {
		return false, utils.Internal(50045, "failed to load like", err)
	}
	return n > 0, nil
}
