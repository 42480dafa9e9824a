package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/aiblog/models"
)

func newTestTokenManager(t *testing.T, now *time.Time) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret")
	require.NoError(t, err)
	m.now = func() time.Time { return *now }
	return m
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := newTestTokenManager(t, &now)

	token, err := m.Issue(models.User{ID: 7, Email: "alice@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: 7, Email: "alice@example.com", Role: models.RoleAdmin}, claims.Identity())
	assert.Equal(t, now.Add(24*time.Hour), m.ExpiresAt(claims))
}

func TestVerifyExpiresAfterOneDay(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	now := issued
	m := newTestTokenManager(t, &now)

	token, err := m.Issue(models.User{ID: 1, Email: "a@b.c", Role: models.RoleUser})
	require.NoError(t, err)

	now = issued.Add(24*time.Hour - time.Second)
	_, err = m.Verify(token)
	assert.NoError(t, err, "token must still verify just before one day")

	now = issued.Add(24*time.Hour + time.Second)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	now := time.Now()
	m := newTestTokenManager(t, &now)

	token, err := m.Issue(models.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = m.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenManager("another-secret")
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	now := time.Now()
	m := newTestTokenManager(t, &now)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 3}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
