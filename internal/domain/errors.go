package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns to a handler wraps exactly one of these.
var (
	ErrAuthenticationMissing = errors.New("not authenticated")
	ErrAuthenticationInvalid = errors.New("invalid authentication")
	ErrForbidden             = errors.New("no permission")
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrDeliveryFailed        = errors.New("delivery failed")
	ErrConflict              = errors.New("already exists")
)

var (
	ErrInvalidCredentials = fmt.Errorf("username or password is incorrect: %w", ErrAuthenticationInvalid)
	ErrInvalidToken       = fmt.Errorf("invalid or expired token: %w", ErrAuthenticationInvalid)

	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrPostNotFound    = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrCodeNotFound    = fmt.Errorf("code %w", ErrNotFound)
	ErrLikeNotFound    = fmt.Errorf("like %w", ErrNotFound)
	ErrSaveNotFound    = fmt.Errorf("saved post %w", ErrNotFound)

	ErrUsernameTaken = fmt.Errorf("username %w", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email %w", ErrConflict)
	ErrPhoneTaken    = fmt.Errorf("phone number %w", ErrConflict)
	ErrAlreadyLiked  = fmt.Errorf("like %w", ErrConflict)
	ErrAlreadySaved  = fmt.Errorf("saved post %w", ErrConflict)

	ErrUnknownLogin      = fmt.Errorf("login is not a username, phone number or email: %w", ErrValidation)
	ErrWrongPassword     = fmt.Errorf("password does not match: %w", ErrValidation)
	ErrNoDeliveryChannel = fmt.Errorf("no email or phone number on file: %w", ErrValidation)
)

// ValidationError wraps a lower-level cause as ErrValidation while keeping its message.
func ValidationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
