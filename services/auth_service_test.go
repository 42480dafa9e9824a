package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, "  Alice@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	res, err := f.auth.Login(ctx, "ALICE@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLoginFailuresAreValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "bob@example.com")

	_, err := f.auth.Login(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.auth.Login(ctx, "nobody@example.com", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "carol@example.com")

	_, err := f.auth.Register(ctx, "CAROL@example.com", "another")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	_, err = f.auth.Register(ctx, " ", "x")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = f.auth.Register(ctx, "dave@example.com", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = f.auth.Register(ctx, "dave@example.com", strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestRegisterAdminEmail(t *testing.T) {
	f := newFixture(t)
	root := f.user(t, "Root@example.com")
	assert.Equal(t, models.RoleAdmin, root.Role)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.user(t, "erin@example.com")

	assert.ErrorIs(t, f.auth.ChangePassword(ctx, id, "nope", "new-pass"), ErrWrongPassword)
	require.NoError(t, f.auth.ChangePassword(ctx, id, "secret-pass", "new-pass"))

	_, err := f.auth.Login(ctx, "erin@example.com", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "erin@example.com", "new-pass")
	assert.NoError(t, err)
}

func TestChangePasswordEndsExistingSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.user(t, "erin@example.com")
	issuedEarlier := time.Now().Add(-time.Minute)

	assert.False(t, f.auth.blacklist.IsUserRevoked(id.UserID, issuedEarlier))
	require.NoError(t, f.auth.ChangePassword(ctx, id, "secret-pass", "new-pass"))
	assert.True(t, f.auth.blacklist.IsUserRevoked(id.UserID, issuedEarlier))
	assert.False(t, f.auth.blacklist.IsUserRevoked(id.UserID, time.Now().Add(time.Second)))
}

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.user(t, "root@example.com")
	frank := f.user(t, "frank@example.com")

	_, err := f.auth.SetRole(ctx, frank, root.UserID, models.RoleUser)
	assert.ErrorIs(t, err, ErrAdminOnly)

	_, err = f.auth.SetRole(ctx, root, frank.UserID, models.Role("OWNER"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.auth.SetRole(ctx, root, 9999, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)

	u, err := f.auth.SetRole(ctx, root, frank.UserID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	me, err := f.auth.Me(ctx, frank)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, me.Role)
}

func TestDemotedAdminLosesRightsWithOldToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.user(t, "root@example.com")
	frank := f.user(t, "frank@example.com")
	alice := f.user(t, "alice@example.com")
	post := f.post(t, alice, "alice's post", true)

	_, err := f.auth.SetRole(ctx, root, frank.UserID, models.RoleAdmin)
	require.NoError(t, err)
	res, err := f.auth.Login(ctx, "frank@example.com", "secret-pass")
	require.NoError(t, err)
	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	asAdmin := claims.Identity()
	require.True(t, asAdmin.IsAdmin())

	_, err = f.auth.SetRole(ctx, root, frank.UserID, models.RoleUser)
	require.NoError(t, err)

	_, err = f.posts.Delete(ctx, asAdmin, post.ID)
	assert.ErrorIs(t, err, ErrPostForbidden)
	_, err = f.posts.Update(ctx, asAdmin, post.ID, UpdatePostInput{Title: strPtr("taken over")})
	assert.ErrorIs(t, err, ErrPostForbidden)
	_, err = f.auth.SetRole(ctx, asAdmin, alice.UserID, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrAdminOnly)

	got, err := f.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice's post", got.Title)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "gina@example.com")

	res, err := f.auth.Login(ctx, "gina@example.com", "secret-pass")
	require.NoError(t, err)
	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(res.Token, claims))
	assert.True(t, f.auth.blacklist.IsRevoked(res.Token))
}
