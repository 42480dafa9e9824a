package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

// beforeLikeInsert runs fn right before gorm inserts a like, simulating a
// concurrent toggle that lands between the lookup and the insert.
func beforeLikeInsert(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB, like *models.Like)) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:before_like_insert", func(tx *gorm.DB) {
		like, ok := tx.Statement.Dest.(*models.Like)
		if !ok {
			return
		}
		fn(tx, like)
	})
	require.NoError(t, err)
}

func insertLikeRow(tx *gorm.DB, like *models.Like) error {
	_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
		"INSERT INTO likes (post_id, user_id, created_at) VALUES (?, ?, ?)", like.PostID, like.UserID, time.Now())
	return err
}

func TestToggleTwiceRestoresCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.post(t, alice, "likeable", true)

	before, err := f.likes.Count(ctx, p.ID)
	require.NoError(t, err)

	liked, err := f.likes.Toggle(ctx, bob, p.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	has, err := f.likes.HasLiked(ctx, bob, p.ID)
	require.NoError(t, err)
	assert.True(t, has)
	n, err := f.likes.Count(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, n)

	liked, err = f.likes.Toggle(ctx, bob, p.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	n, err = f.likes.Count(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before, n)
}

func TestToggleMissingPost(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	_, err := f.likes.Toggle(context.Background(), alice, 9999)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestConcurrentTogglesNeverDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.post(t, alice, "busy", true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.likes.Toggle(ctx, bob, p.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := f.likes.Count(ctx, p.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int64(1))
}

func TestToggleLostInsertRaceStillLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.post(t, alice, "contested", true)

	beforeLikeInsert(t, f.db, func(tx *gorm.DB, like *models.Like) {
		require.NoError(t, insertLikeRow(tx, like))
	})

	liked, err := f.likes.Toggle(ctx, bob, p.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	n, err := f.likes.Count(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestToggleUntranslatedConflictFallsBackToLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.post(t, alice, "contested", true)

	beforeLikeInsert(t, f.db, func(tx *gorm.DB, like *models.Like) {
		require.NoError(t, insertLikeRow(tx, like))
		tx.AddError(errors.New("UNIQUE constraint failed: likes.post_id, likes.user_id"))
	})

	liked, err := f.likes.Toggle(ctx, bob, p.ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestToggleInsertFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.post(t, alice, "broken", true)

	beforeLikeInsert(t, f.db, func(tx *gorm.DB, _ *models.Like) {
		tx.AddError(errors.New("disk I/O error"))
	})

	liked, err := f.likes.Toggle(ctx, bob, p.ID)
	assert.False(t, liked)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.KindInternal, appErr.Kind)
	assert.Equal(t, 50043, appErr.Code)
}
