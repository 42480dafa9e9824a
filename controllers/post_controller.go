package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/storage"
	"github.com/cppla/aiblog/utils"
)

const (
	cacheListPrefix = "cache:posts:list:"
	cachePostPrefix = "cache:post:"
	// postCacheTTL bounds how long a read that raced an invalidation can serve stale data.
	postCacheTTL = 30 * time.Second
)

func postCacheKey(postID uint) string {
	return fmt.Sprintf("%s%d:detail", cachePostPrefix, postID)
}

// invalidatePost drops cached lists and the detail of one post. Lists embed
// comments and like counts, so every write to a post's children lands here too.
func invalidatePost(cache *utils.Cache, postID uint) {
	cache.InvalidateByPrefix(cacheListPrefix)
	cache.InvalidateByPrefix(fmt.Sprintf("%s%d:", cachePostPrefix, postID))
}

// PostController manages the post lifecycle endpoints.
type PostController struct {
	posts  *services.PostService
	images storage.ImageStore
	cache  *utils.Cache
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService, images storage.ImageStore, cache *utils.Cache) *PostController {
	return &PostController{posts: posts, images: images, cache: cache}
}

// CreatePost accepts JSON, or a multipart form with an optional "image" file.
func (p *PostController) CreatePost(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var in services.CreatePostInput
	if ctx.ContentType() == "multipart/form-data" {
		in.Title = ctx.PostForm("title")
		in.Content = ctx.PostForm("content")
		in.Published = services.ParseBool(ctx.PostForm("published"))

		fh, err := ctx.FormFile("image")
		switch {
		case err == nil:
			if p.images == nil {
				utils.Fail(ctx, utils.NewValidation(40044, "image uploads are disabled"))
				return
			}
			url, err := p.images.Save(ctx.Request.Context(), id.UserID, fh)
			if err != nil {
				utils.Fail(ctx, err)
				return
			}
			in.ImageURL = &url
		case errors.Is(err, http.ErrMissingFile):
		default:
			utils.Fail(ctx, errInvalidPayload)
			return
		}
	} else {
		var req struct {
			Title     string `json:"title" binding:"required"`
			Content   string `json:"content" binding:"required"`
			Published bool   `json:"published"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Fail(ctx, errInvalidPayload)
			return
		}
		in = services.CreatePostInput{Title: req.Title, Content: req.Content, Published: req.Published}
	}

	post, err := p.posts.Create(ctx.Request.Context(), id, in)
	if err != nil {
		if in.ImageURL != nil {
			p.posts.ReleaseImage(ctx.Request.Context(), *in.ImageURL)
		}
		utils.Fail(ctx, err)
		return
	}

	if post.Published {
		p.cache.InvalidateByPrefix(cacheListPrefix)
	}
	utils.Created(ctx, gin.H{"post": post})
}

// ListPosts returns every published post, or one page of them when page or
// page_size is given.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize, paged, err := parsePagination(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	cacheKey := cacheListPrefix + "all"
	if paged {
		cacheKey = fmt.Sprintf("%spage=%d:size=%d", cacheListPrefix, page, pageSize)
	}
	if b, ok := p.cache.GetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var payload interface{}
	if paged {
		result, err := p.posts.Paginate(ctx.Request.Context(), page, pageSize)
		if err != nil {
			utils.Fail(ctx, err)
			return
		}
		payload = result
	} else {
		views, err := p.posts.List(ctx.Request.Context())
		if err != nil {
			utils.Fail(ctx, err)
			return
		}
		payload = gin.H{"posts": views}
	}

	p.cache.SetJSON(cacheKey, cachedEnvelope(payload), postCacheTTL)
	utils.Success(ctx, payload)
}

// GetPost returns a single post with its author, comments and counts.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, err := parseID(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if b, ok := p.cache.GetBytes(postCacheKey(postID)); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	view, err := p.posts.GetByID(ctx.Request.Context(), postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	payload := gin.H{"post": view}
	p.cache.SetJSON(postCacheKey(postID), cachedEnvelope(payload), postCacheTTL)
	utils.Success(ctx, payload)
}

// UpdatePost applies a partial update.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	postID, err := parseID(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	var in services.UpdatePostInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Fail(ctx, errInvalidPayload)
		return
	}

	post, err := p.posts.Update(ctx.Request.Context(), id, postID, in)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	invalidatePost(p.cache, postID)
	utils.Success(ctx, gin.H{"post": post})
}

// PublishPost makes a draft public.
func (p *PostController) PublishPost(ctx *gin.Context) {
	p.mutate(ctx, p.posts.Publish)
}

// DeletePost removes a post with its comments and likes.
func (p *PostController) DeletePost(ctx *gin.Context) {
	p.mutate(ctx, p.posts.Delete)
}

func (p *PostController) mutate(ctx *gin.Context, op func(context.Context, models.Identity, uint) (models.Post, error)) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	postID, err := parseID(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	post, err := op(ctx.Request.Context(), id, postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	invalidatePost(p.cache, postID)
	utils.Success(ctx, gin.H{"post": post})
}

// ListMyPosts returns the caller's posts split by state.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	owned, err := p.posts.ListByOwner(ctx.Request.Context(), id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, owned)
}
