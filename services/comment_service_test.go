package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob.smith@example.com")
	root := f.user(t, "root@example.com")
	p := f.post(t, alice, "hello", true)

	c, err := f.comments.Create(ctx, bob, p.ID, "great post")
	require.NoError(t, err)
	assert.Equal(t, "bob.smith", c.Username)
	assert.Equal(t, "bob.smith@example.com", c.Email)
	assert.Equal(t, bob.UserID, c.AuthorID)

	_, err = f.comments.Update(ctx, alice, c.ID, "edited by post author")
	assert.ErrorIs(t, err, ErrCommentForbidden, "post authors do not own other people's comments")

	c, err = f.comments.Update(ctx, bob, c.ID, "really great post")
	require.NoError(t, err)
	assert.Equal(t, "really great post", c.Content)

	_, err = f.comments.Update(ctx, bob, c.ID, " ")
	assert.ErrorIs(t, err, ErrCommentRequired)

	second, err := f.comments.Create(ctx, alice, p.ID, "thanks")
	require.NoError(t, err)

	list, err := f.comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	deleted, err := f.comments.Delete(ctx, root, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)

	_, err = f.comments.Delete(ctx, root, c.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestCommentOnMissingPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")

	_, err := f.comments.Create(ctx, alice, 9999, "hello?")
	assert.ErrorIs(t, err, ErrPostNotFound)

	list, err := f.comments.ListByPost(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "alice", usernameFromEmail("alice@example.com"))
	assert.Equal(t, "noat", usernameFromEmail("noat"))
}
