package services

import "github.com/cppla/aiblog/models"

// CanMutate reports whether the caller may change a resource written by authorID.
// Authors may change their own resources and admins may change any.
func CanMutate(id models.Identity, authorID uint) bool {
	return authorID == id.UserID || id.IsAdmin()
}

// Authorize returns forbidden when CanMutate denies the caller.
func Authorize(id models.Identity, authorID uint, forbidden error) error {
	if !CanMutate(id, authorID) {
		return forbidden
	}
	return nil
}
