package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/aiblog/config"
	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := config.InitDatabase(config.AppConfig{DBDriver: "sqlite", DatabaseURI: dsn, LogLevel: "silent"}, models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() { config.CloseDatabase(db) })
	return db
}

type fixture struct {
	db       *gorm.DB
	auth     *AuthService
	posts    *PostService
	comments *CommentService
	likes    *LikeService
	tokens   *utils.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	tokens, err := utils.NewTokenManager("test-secret")
	require.NoError(t, err)
	cfg := config.AppConfig{AdminEmails: []string{"root@example.com"}}
	return &fixture{
		db:       db,
		auth:     NewAuthService(db, cfg, tokens, utils.NewTokenBlacklist(nil)),
		posts:    NewPostService(db, nil),
		comments: NewCommentService(db),
		likes:    NewLikeService(db),
		tokens:   tokens,
	}
}

// user registers an account and returns its identity.
func (f *fixture) user(t *testing.T, email string) models.Identity {
	t.Helper()
	u, err := f.auth.Register(context.Background(), email, "secret-pass")
	require.NoError(t, err)
	return models.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (f *fixture) post(t *testing.T, id models.Identity, title string, published bool) models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), id, CreatePostInput{Title: title, Content: "body of " + title, Published: published})
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
