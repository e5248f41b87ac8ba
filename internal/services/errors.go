package services

import (
	"errors"
	"fmt"
)

// Not-found errors map to 404, everything else in this file to 400.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrFollowedNotFound = errors.New("followed not found")
	ErrFollowerNotFound = errors.New("follower not found")
)

var (
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrDuplicateUser    = errors.New("username or email already exists")
	ErrSelfFollow       = errors.New("user cannot follow itself")
	ErrAlreadyFollowing = errors.New("user already follows this user")
	ErrNotFollowing     = errors.New("user does not follow this user")
	ErrAlreadyLiked     = errors.New("user already liked this post")
	ErrNotLiked         = errors.New("user has not liked this post")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidBirthDate = errors.New("invalid birth_date, expected YYYY-MM-DD")
)

// MissingFieldError reports a required body field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("no %s provided", e.Field)
}

func missing(field string) error {
	return &MissingFieldError{Field: field}
}

// IsNotFound reports whether err should surface as 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrFollowedNotFound) ||
		errors.Is(err, ErrFollowerNotFound)
}

// IsInvalid reports whether err is a validation or state error (400).
func IsInvalid(err error) bool {
	var mf *MissingFieldError
	if errors.As(err, &mf) {
		return true
	}
	for _, target := range []error{
		ErrUsernameTaken, ErrEmailTaken, ErrDuplicateUser,
		ErrSelfFollow, ErrAlreadyFollowing, ErrNotFollowing,
		ErrAlreadyLiked, ErrNotLiked,
		ErrInvalidStatus, ErrInvalidBirthDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
