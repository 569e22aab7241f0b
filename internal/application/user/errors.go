package user

import "errors"

var (
	ErrUsernameInvalid = errors.New("Username is required and may contain only letters, digits and @/./+/-/_")
	ErrEmailInvalid    = errors.New("Invalid email format")
	ErrPasswordInvalid = errors.New("Password must be at least 8 characters and contain a letter, a number and a special character")
	ErrEmailTaken      = errors.New("Email already registered")
	ErrUsernameTaken   = errors.New("Username already registered")
	ErrUserNotFound    = errors.New("User not found")
)
