package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/storage"
	"github.com/cppla/aiblog/utils"
)

// MaxPageSize bounds Paginate's page size.
const MaxPageSize = 100

// PostService implements the post lifecycle: draft, publish, update and delete.
type PostService struct {
	db     *gorm.DB
	images storage.ImageStore
}

// CreatePostInput carries the fields accepted when creating a post.
type CreatePostInput struct {
	Title     string
	Content   string
	Published bool
	ImageURL  *string
}

// UpdatePostInput is a partial update. Nil fields are left unchanged.
type UpdatePostInput struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

// OwnerPosts splits the caller's posts by state.
type OwnerPosts struct {
	Published   []models.Post `json:"published"`
	Unpublished []models.Post `json:"unpublished"`
}

// PostPage is one page of published posts.
type PostPage struct {
	Posts      []models.PostView `json:"posts"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// NewPostService creates a PostService. images may be nil, in which case
// deleted posts keep their stored image.
func NewPostService(db *gorm.DB, images storage.ImageStore) *PostService {
	return &PostService{db: db, images: images}
}

func cleanTitle(title string) string {
	return utils.SanitizePlain(title)
}

func cleanContent(content string) string {
	return utils.Sanitize(content)
}

// Create stores a new post authored by the caller.
func (s *PostService) Create(ctx context.Context, id models.Identity, in CreatePostInput) (models.Post, error) {
	title := cleanTitle(in.Title)
	if title == "" {
		return models.Post{}, ErrTitleRequired
	}
	content := cleanContent(in.Content)
	if content == "" {
		return models.Post{}, ErrContentRequired
	}
	id, err := currentIdentity(ctx, s.db, id)
	if err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		AuthorID:  id.UserID,
		Title:     title,
		Content:   content,
		Published: in.Published,
		ImageURL:  in.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return models.Post{}, utils.Internal(50021, "failed to create post", err)
	}
	return post, nil
}

// List returns every published post, newest first.
func (s *PostService) List(ctx context.Context) ([]models.PostView, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, utils.Internal(50022, "failed to list posts", err)
	}
	return s.views(ctx, posts)
}

// GetByID returns one post whatever its state.
func (s *PostService) GetByID(ctx context.Context, postID uint) (models.PostView, error) {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return models.PostView{}, err
	}
	views, err := s.views(ctx, []models.Post{post})
	if err != nil {
		return models.PostView{}, err
	}
	return views[0], nil
}

// authorize applies the ownership policy with the caller's stored role.
func (s *PostService) authorize(ctx context.Context, id models.Identity, post models.Post) error {
	live, err := currentIdentity(ctx, s.db, id)
	if err != nil {
		return err
	}
	return Authorize(live, post.AuthorID, ErrPostForbidden)
}

// Update applies a partial update after the ownership check.
func (s *PostService) Update(ctx context.Context, id models.Identity, postID uint, in UpdatePostInput) (models.Post, error) {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return post, err
	}
	if err := s.authorize(ctx, id, post); err != nil {
		return post, err
	}

	changes := map[string]interface{}{}
	if in.Title != nil {
		title := cleanTitle(*in.Title)
		if title == "" {
			return post, ErrTitleRequired
		}
		changes["title"] = title
	}
	if in.Content != nil {
		content := cleanContent(*in.Content)
		if content == "" {
			return post, ErrContentRequired
		}
		changes["content"] = content
	}
	if in.Published != nil {
		switch {
		case *in.Published && !post.Published:
			changes["published"] = true
		case !*in.Published && post.Published:
			return post, ErrUnpublish
		}
	}
	if len(changes) == 0 {
		return post, nil
	}

	if err := s.db.WithContext(ctx).Model(&post).Updates(changes).Error; err != nil {
		return post, utils.Internal(50023, "failed to update post", err)
	}
	return findPost(ctx, s.db, postID)
}

// Publish moves a draft to the published state. Publishing twice is a no-op.
func (s *PostService) Publish(ctx context.Context, id models.Identity, postID uint) (models.Post, error) {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return post, err
	}
	if err := s.authorize(ctx, id, post); err != nil {
		return post, err
	}
	if post.Published {
		return post, nil
	}
	if err := s.db.WithContext(ctx).Model(&post).Update("published", true).Error; err != nil {
		return post, utils.Internal(50024, "failed to publish post", err)
	}
	return findPost(ctx, s.db, postID)
}

// Delete removes the post together with its likes and comments.
func (s *PostService) Delete(ctx context.Context, id models.Identity, postID uint) (models.Post, error) {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return post, err
	}
	if err := s.authorize(ctx, id, post); err != nil {
		return post, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, post.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return post, err
		}
		return post, utils.Internal(50025, "failed to delete post", err)
	}

	s.releaseImage(ctx, post)
	return post, nil
}

// ReleaseImage removes a stored image that no post references, such as an
// upload whose post failed to save.
func (s *PostService) ReleaseImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	s.releaseImage(ctx, models.Post{ImageURL: &url})
}

func (s *PostService) releaseImage(ctx context.Context, post models.Post) {
	if s.images == nil || post.ImageURL == nil || *post.ImageURL == "" {
		return
	}
	if err := s.images.Delete(ctx, *post.ImageURL); err != nil {
		utils.Sugar.Warnf("failed to release image post=%d url=%s err=%v", post.ID, *post.ImageURL, err)
	}
}

// ListByOwner returns the caller's posts split into published and drafts, newest first.
func (s *PostService) ListByOwner(ctx context.Context, id models.Identity) (OwnerPosts, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("author_id = ?", id.UserID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return OwnerPosts{}, utils.Internal(50026, "failed to list user posts", err)
	}

	out := OwnerPosts{Published: []models.Post{}, Unpublished: []models.Post{}}
	for _, p := range posts {
		if p.Published {
			out.Published = append(out.Published, p)
		} else {
			out.Unpublished = append(out.Unpublished, p)
		}
	}
	return out, nil
}

// Paginate returns a 1-indexed page of published posts. Pages past the end are empty.
func (s *PostService) Paginate(ctx context.Context, page, pageSize int) (PostPage, error) {
	if page < 1 {
		return PostPage{}, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return PostPage{}, ErrInvalidPageSize
	}

	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("published = ?", true)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PostPage{}, utils.Internal(50027, "failed to count posts", err)
	}

	out := PostPage{
		Posts:      []models.PostView{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
	// Past the last page there is nothing to fetch, and the offset could overflow.
	if page > out.TotalPages {
		return out, nil
	}

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return PostPage{}, utils.Internal(50022, "failed to list posts", err)
	}
	if out.Posts, err = s.views(ctx, posts); err != nil {
		return PostPage{}, err
	}
	return out, nil
}

type postCount struct {
	PostID uint
	N      int64
}

// views attaches authors, comments and like counts to posts with one query per relation.
func (s *PostService) views(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	out := make([]models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	postIDs := make([]uint, 0, len(posts))
	authorSet := map[uint]struct{}{}
	authorIDs := []uint{}
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if _, ok := authorSet[p.AuthorID]; !ok {
			authorSet[p.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	db := s.db.WithContext(ctx)
	var users []models.User
	if err := db.Where("id IN ?", authorIDs).Find(&users).Error; err != nil {
		return nil, utils.Internal(50028, "failed to load authors", err)
	}
	authors := make(map[uint]models.Author, len(users))
	for _, u := range users {
		authors[u.ID] = models.Author{ID: u.ID, Email: u.Email}
	}

	var comments []models.Comment
	err := db.Where("post_id IN ?", postIDs).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, utils.Internal(50029, "failed to load comments", err)
	}
	byPost := make(map[uint][]models.Comment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}

	var likeRows []postCount
	err = db.Model(&models.Like{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&likeRows).Error
	if err != nil {
		return nil, utils.Internal(50046, "failed to count likes", err)
	}
	likes := make(map[uint]int64, len(likeRows))
	for _, r := range likeRows {
		likes[r.PostID] = r.N
	}

	for _, p := range posts {
		cs := byPost[p.ID]
		if cs == nil {
			cs = []models.Comment{}
		}
		author, ok := authors[p.AuthorID]
		if !ok {
			author = models.Author{ID: p.AuthorID}
		}
		out = append(out, models.PostView{
			Post:         p,
			Author:       author,
			Comments:     cs,
			LikeCount:    likes[p.ID],
			CommentCount: int64(len(cs)),
		})
	}
	return out, nil
}

// ParseBool reads the boolean spellings accepted in multipart forms.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on":
		return true
	}
	return false
}
