package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/utils"
)

// LikeController toggles and reports likes.
type LikeController struct {
	likes *services.LikeService
	cache *utils.Cache
}

func NewLikeController(likes *services.LikeService, cache *utils.Cache) *LikeController {
	return &LikeController{likes: likes, cache: cache}
}

// ToggleLike likes or unlikes the post for the caller.
func (l *LikeController) ToggleLike(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	postID, err := parseID(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	liked, err := l.likes.Toggle(ctx.Request.Context(), id, postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	invalidatePost(l.cache, postID)
	utils.Success(ctx, gin.H{"liked": liked})
}

// LikeCount returns the number of likes on a post.
func (l *LikeController) LikeCount(ctx *gin.Context) {
	postID, err := parseID(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	n, err := l.likes.Count(ctx.Request.Context(), postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"like_count": n})
}

// LikeStatus reports whether the caller likes the post.
func (l *LikeController) LikeStatus(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	postID, err := parseID(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	liked, err := l.likes.HasLiked(ctx.Request.Context(), id, postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"has_liked": liked})
}
