package error

import (
	"github.com/0xsj/overwatch-pkg/errors"
)

// Domain error codes
const (
	// Request errors
	CodeMissingField    errors.Code = "MISSING_FIELD"
	CodeInvalidUsername errors.Code = "INVALID_USERNAME"
	CodeUsernameTaken   errors.Code = "USERNAME_TAKEN"

	// Gate errors
	CodeRateLimited      errors.Code = "RATE_LIMITED"
	CodePermissionDenied errors.Code = "PERMISSION_DENIED"

	// Lookup errors
	CodeUserNotFound errors.Code = "USER_NOT_FOUND"

	// Aggregate errors
	CodeDisplayNameRequired errors.Code = "DISPLAY_NAME_REQUIRED"
	CodeInviteTokenRequired errors.Code = "INVITE_TOKEN_REQUIRED"
)

// Request errors
var (
	ErrMissingField = errors.New(errors.KindValidation, CodeMissingField, "user ID and username are required")

	ErrInvalidUsername = errors.New(errors.KindValidation, CodeInvalidUsername, "invalid username")

	ErrUsernameTaken = errors.New(errors.KindConflict, CodeUsernameTaken, "username not available")
)

// Gate errors
var (
	ErrRateLimited = errors.New(errors.KindDomain, CodeRateLimited, "too many username changes, try again later")

	ErrPermissionDenied = errors.New(errors.KindForbidden, CodePermissionDenied, "not allowed to edit other users' info")
)

// Lookup errors
var (
	// ErrUserNotFound reports the one lookup the workflow can fail on.
	// A missing invite is not an error: stale tokens are ignored.
	ErrUserNotFound = errors.New(errors.KindNotFound, CodeUserNotFound, "user not found")
)

// Aggregate errors
var (
	ErrDisplayNameRequired = errors.New(errors.KindValidation, CodeDisplayNameRequired, "display name is required")

	ErrInviteTokenRequired = errors.New(errors.KindValidation, CodeInviteTokenRequired, "invite token is required")
)
