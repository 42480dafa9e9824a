package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cppla/aiblog/models"
)

func TestCanMutate(t *testing.T) {
	author := models.Identity{UserID: 1, Role: models.RoleUser}
	stranger := models.Identity{UserID: 2, Role: models.RoleUser}
	admin := models.Identity{UserID: 3, Role: models.RoleAdmin}

	assert.True(t, CanMutate(author, 1))
	assert.False(t, CanMutate(stranger, 1))
	assert.True(t, CanMutate(admin, 1), "admins may change resources they did not write")

	assert.NoError(t, Authorize(author, 1, ErrPostForbidden))
	assert.ErrorIs(t, Authorize(stranger, 1, ErrPostForbidden), ErrPostForbidden)
}
