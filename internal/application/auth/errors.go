package auth

import "errors"

var (
	ErrCredentialsRequired = errors.New("Username or email and password are required")
	ErrUnknownUser         = errors.New("Invalid username or email")
	ErrIncorrectPassword   = errors.New("Incorrect Password")
	ErrNotAuthenticated    = errors.New("Not authenticated")
)
