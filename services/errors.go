package services

import "github.com/cppla/aiblog/utils"

// Errors returned by the services. Codes are unique across the API.
var (
	ErrEmailRequired      = utils.NewValidation(40001, "email is required")
	ErrPasswordRequired   = utils.NewValidation(40002, "password is required")
	ErrInvalidCredentials = utils.NewValidation(40003, "invalid email or password")
	ErrPasswordTooLong    = utils.NewValidation(40004, "password must be at most 72 bytes")
	ErrWrongPassword      = utils.NewValidation(40005, "current password is incorrect")
	ErrInvalidRole        = utils.NewValidation(40006, "role must be USER or ADMIN")

	ErrTitleRequired    = utils.NewValidation(40020, "title cannot be empty")
	ErrContentRequired  = utils.NewValidation(40021, "content cannot be empty")
	ErrUnpublish        = utils.NewValidation(40022, "a published post cannot be unpublished")
	ErrInvalidPage      = utils.NewValidation(40023, "page must be at least 1")
	ErrInvalidPageSize  = utils.NewValidation(40024, "page_size must be between 1 and 100")
	ErrCommentRequired  = utils.NewValidation(40030, "comment cannot be empty")
	ErrAccountNotActive = utils.NewUnauthorized(40110, "account no longer exists")

	ErrPostForbidden    = utils.NewForbidden(40301, "you can only modify your own posts")
	ErrCommentForbidden = utils.NewForbidden(40302, "you can only modify your own comments")
	ErrAdminOnly        = utils.NewForbidden(40303, "admin role required")

	ErrPostNotFound    = utils.NewNotFound(40401, "post not found")
	ErrCommentNotFound = utils.NewNotFound(40402, "comment not found")
	ErrUserNotFound    = utils.NewNotFound(40403, "user not found")

	ErrEmailTaken = utils.NewConflict(40901, "email already registered")
)
