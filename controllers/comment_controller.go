package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/utils"
)

// CommentController exposes comment endpoints nested under posts.
type CommentController struct {
	comments *services.CommentService
	cache    *utils.Cache
}

func NewCommentController(comments *services.CommentService, cache *utils.Cache) *CommentController {
	return &CommentController{comments: comments, cache: cache}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment adds a comment to the post in the path.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	postID, err := parseID(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, errInvalidPayload)
		return
	}

	comment, err := c.comments.Create(ctx.Request.Context(), id, postID, req.Content)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	invalidatePost(c.cache, postID)
	utils.Created(ctx, gin.H{"comment": comment})
}

// ListComments returns a post's comments, newest first.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID, err := parseID(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	comments, err := c.comments.ListByPost(ctx.Request.Context(), postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// UpdateComment lets the comment author or an admin edit it.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	commentID, err := parseID(ctx, "commentId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, errInvalidPayload)
		return
	}

	comment, err := c.comments.Update(ctx.Request.Context(), id, commentID, req.Content)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	invalidatePost(c.cache, comment.PostID)
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment lets the comment author or an admin remove it.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	commentID, err := parseID(ctx, "commentId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	comment, err := c.comments.Delete(ctx.Request.Context(), id, commentID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	invalidatePost(c.cache, comment.PostID)
	utils.Success(ctx, gin.H{"comment": comment})
}
