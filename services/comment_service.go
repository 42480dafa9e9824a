package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

// CommentService manages comments on posts.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// usernameFromEmail returns the local part of an address.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Create adds a comment to an existing post. The author's username and email
// are copied onto the comment.
func (s *CommentService) Create(ctx context.Context, id models.Identity, postID uint, content string) (models.Comment, error) {
	content = utils.Sanitize(content)
	if content == "" {
		return models.Comment{}, ErrCommentRequired
	}
	if _, err := findPost(ctx, s.db, postID); err != nil {
		return models.Comment{}, err
	}
	id, err := currentIdentity(ctx, s.db, id)
	if err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: id.UserID,
		Content:  content,
		Username: usernameFromEmail(id.Email),
		Email:    id.Email,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return models.Comment{}, utils.Internal(50031, "failed to create comment", err)
	}
	return comment, nil
}

func (s *CommentService) authorize(ctx context.Context, id models.Identity, comment models.Comment) error {
	live, err := currentIdentity(ctx, s.db, id)
	if err != nil {
		return err
	}
	return Authorize(live, comment.AuthorID, ErrCommentForbidden)
}

// Update replaces the comment body.
func (s *CommentService) Update(ctx context.Context, id models.Identity, commentID uint, content string) (models.Comment, error) {
	comment, err := findComment(ctx, s.db, commentID)
	if err != nil {
		return comment, err
	}
	if err := s.authorize(ctx, id, comment); err != nil {
		return comment, err
	}
	content = utils.Sanitize(content)
	if content == "" {
		return comment, ErrCommentRequired
	}

	if err := s.db.WithContext(ctx).Model(&comment).Update("content", content).Error; err != nil {
		return comment, utils.Internal(50032, "failed to update comment", err)
	}
	return findComment(ctx, s.db, commentID)
}

// Delete removes a comment and returns it.
func (s *CommentService) Delete(ctx context.Context, id models.Identity, commentID uint) (models.Comment, error) {
	comment, err := findComment(ctx, s.db, commentID)
	if err != nil {
		return comment, err
	}
	if err := s.authorize(ctx, id, comment); err != nil {
		return comment, err
	}

	res := s.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID)
	if res.Error != nil {
		return comment, utils.Internal(50033, "failed to delete comment", res.Error)
	}
	if res.RowsAffected == 0 {
		return comment, ErrCommentNotFound
	}
	return comment, nil
}

// ListByPost returns a post's comments, newest first. Unknown posts have none.
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, utils.Internal(50034, "failed to list comments", err)
	}
	return comments, nil
}
