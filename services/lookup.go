package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

func findPost(ctx context.Context, db *gorm.DB, id uint) (models.Post, error) {
	var post models.Post
	if err := db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, ErrPostNotFound
		}
		return post, utils.Internal(50020, "failed to load post", err)
	}
	return post, nil
}

func findComment(ctx context.Context, db *gorm.DB, id uint) (models.Comment, error) {
	var comment models.Comment
	if err := db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return comment, ErrCommentNotFound
		}
		return comment, utils.Internal(50030, "failed to load comment", err)
	}
	return comment, nil
}

// currentIdentity reloads the caller's account so policy decisions use the
// stored role rather than the one captured in the token. A removed account
// is rejected.
func currentIdentity(ctx context.Context, db *gorm.DB, id models.Identity) (models.Identity, error) {
	var user models.User
	if err := db.WithContext(ctx).Select("id", "email", "role").First(&user, id.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return id, ErrAccountNotActive
		}
		return id, utils.Internal(50004, "failed to load user", err)
	}
	return models.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}
