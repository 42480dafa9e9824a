package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.post(t, alice, "public", true)
	f.post(t, alice, "draft", false)
	_, err := f.comments.Create(ctx, bob, p.ID, "hi")
	require.NoError(t, err)
	_, err = f.likes.Toggle(ctx, bob, p.ID)
	require.NoError(t, err)

	st := NewStatsService(f.db).Get(ctx)
	assert.Equal(t, Stats{UserCount: 2, PostCount: 1, CommentCount: 1, LikeCount: 1}, st)
}
